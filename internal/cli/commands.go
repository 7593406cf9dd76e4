package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/siege-spider/spider-backend/internal/models"
	"github.com/siege-spider/spider-backend/internal/repository"
	"github.com/siege-spider/spider-backend/internal/service"
	"github.com/siege-spider/spider-backend/pkg/graphexport"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "schema applied (%s)\n", db.Dialect())
		return nil
	},
}

var (
	signatureWindow int
	signatureAt     string
)

var signatureCmd = &cobra.Command{
	Use:   "signature <identifiers.json|->",
	Short: "Compute the dedup signature of a reported match",
	Long:  `Reads the "identifiers" list ([{"<player_id>": <team>}, ...] or {"identifiers": [...]}) and prints its signature.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		teams, err := parseIdentifiers(raw)
		if err != nil {
			return err
		}
		if err := service.ValidateIdentifiers(teams); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}

		at := time.Now().UTC()
		if signatureAt != "" {
			at, err = time.Parse(time.RFC3339, signatureAt)
			if err != nil {
				return fmt.Errorf("parse --at: %w", err)
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), service.ComputeSignature(teams, at, signatureWindow))
		return nil
	},
}

var groupsMin int

var groupsCmd = &cobra.Command{
	Use:   "groups <match-id>",
	Short: "Show recurring player groups for a match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		svc := service.NewGroupingService(repository.NewMatchRepository(db), cfg.GroupingMinMatches)
		result, err := svc.FindPlayerGroups(cmd.Context(), args[0], groupsMin)
		if err != nil {
			return fmt.Errorf("find groups: %w", err)
		}

		PrintGroups(cmd.OutOrStdout(), result)
		return nil
	},
}

var (
	historyPage  int
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history <player-id>",
	Short: "Show a player's match history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		svc := service.NewHistoryService(repository.NewMatchRepository(db))
		history, err := svc.GetPlayerHistory(cmd.Context(), args[0], historyPage, historyLimit)
		if err != nil {
			return fmt.Errorf("player history: %w", err)
		}

		PrintHistory(cmd.OutOrStdout(), history)
		return nil
	},
}

var exportGraphCmd = &cobra.Command{
	Use:   "export-graph",
	Short: "Export the co-play graph to Neo4j",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		edges, err := service.NewGroupingService(repository.NewMatchRepository(db), cfg.GroupingMinMatches).CoPlayEdges(cmd.Context())
		if err != nil {
			return err
		}

		exporter, err := graphexport.NewNeo4jExporter(cmd.Context(), graphexport.Options{
			URI:      cfg.Neo4jURI,
			Database: cfg.Neo4jDatabase,
			Username: cfg.Neo4jUsername,
			Password: cfg.Neo4jPassword,
		})
		if err != nil {
			return err
		}
		defer exporter.Close(cmd.Context())

		written, err := exporter.Export(cmd.Context(), edges)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "exported %d co-play edges\n", written)
		return nil
	},
}

var (
	userName     string
	userEmail    string
	userPassword string
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create an API user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		svc := service.NewUserService(repository.NewUserRepository(db))
		if err := svc.Register(cmd.Context(), userName, userEmail, userPassword); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created user %s\n", userName)
		return nil
	},
}

var setClientVersionCmd = &cobra.Command{
	Use:   "set-client-version <version> <download-url>",
	Short: "Publish the current client version",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		svc := service.NewClientService(repository.NewClientRepository(db))
		if err := svc.SetVersion(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "client version set to %s\n", args[0])
		return nil
	},
}

func init() {
	signatureCmd.Flags().IntVar(&signatureWindow, "window", service.DefaultSignatureWindowHours, "time bucket width in hours")
	signatureCmd.Flags().StringVar(&signatureAt, "at", "", "report time (RFC3339, default now)")

	groupsCmd.Flags().IntVar(&groupsMin, "min", 0, "minimum matches together (default GROUPING_MIN_MATCHES)")

	historyCmd.Flags().IntVar(&historyPage, "page", 1, "page number")
	historyCmd.Flags().IntVar(&historyLimit, "limit", service.DefaultHistoryLimit, "matches per page")

	createUserCmd.Flags().StringVar(&userName, "username", "", "username")
	createUserCmd.Flags().StringVar(&userEmail, "email", "", "email")
	createUserCmd.Flags().StringVar(&userPassword, "password", "", "password")
	_ = createUserCmd.MarkFlagRequired("username")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return raw, nil
}

// parseIdentifiers 리스트 자체 또는 수집 요청 바디 둘 다 받는다
func parseIdentifiers(raw []byte) (models.Teams, error) {
	var req models.IngestMatchRequest
	if err := json.Unmarshal(raw, &req); err == nil && len(req.Identifiers) > 0 {
		return req.Identifiers, nil
	}

	var teams models.Teams
	if err := json.Unmarshal(raw, &teams); err != nil {
		return nil, fmt.Errorf("parse identifiers: %w", err)
	}
	return teams, nil
}
