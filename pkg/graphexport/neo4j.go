package graphexport

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/siege-spider/spider-backend/internal/models"
)

// ErrMissingURI indicates the graph URI is not provided.
var ErrMissingURI = errors.New("graph URI is required")

const batchSize = 500

const upsertEdgesCypher = `
UNWIND $edges AS edge
MERGE (a:Player {id: edge.a})
MERGE (b:Player {id: edge.b})
MERGE (a)-[r:PLAYED_WITH {team: edge.team}]-(b)
SET r.count = edge.count
`

// Options configures the Neo4j exporter.
type Options struct {
	URI      string
	Database string
	Username string
	Password string
}

// Neo4jExporter writes co-play edges as (:Player)-[:PLAYED_WITH]-(:Player) relationships.
type Neo4jExporter struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jExporter connects and verifies the Bolt endpoint.
func NewNeo4jExporter(ctx context.Context, opts Options) (*Neo4jExporter, error) {
	if opts.URI == "" {
		return nil, ErrMissingURI
	}

	auth := neo4j.NoAuth()
	if opts.Username != "" {
		auth = neo4j.BasicAuth(opts.Username, opts.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(opts.URI, auth)
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify graph connectivity: %w", err)
	}

	return &Neo4jExporter{driver: driver, database: opts.Database}, nil
}

// Export upserts edges in batches and returns the number written.
func (e *Neo4jExporter) Export(ctx context.Context, edges []models.CoPlayEdge) (int, error) {
	session := e.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: e.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	written := 0
	for start := 0; start < len(edges); start += batchSize {
		end := min(start+batchSize, len(edges))
		params := map[string]any{"edges": edgeParams(edges[start:end])}

		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, upsertEdgesCypher, params)
			if err != nil {
				return nil, err
			}
			return res.Consume(ctx)
		})
		if err != nil {
			return written, fmt.Errorf("write co-play edges: %w", err)
		}
		written = end
	}

	return written, nil
}

// Close releases the driver.
func (e *Neo4jExporter) Close(ctx context.Context) error {
	return e.driver.Close(ctx)
}

func edgeParams(edges []models.CoPlayEdge) []map[string]any {
	out := make([]map[string]any, 0, len(edges))
	for _, edge := range edges {
		out = append(out, map[string]any{
			"a":     edge.PlayerA,
			"b":     edge.PlayerB,
			"team":  edge.Team,
			"count": edge.Count,
		})
	}
	return out
}
