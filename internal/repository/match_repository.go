package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/siege-spider/spider-backend/internal/models"
	"github.com/siege-spider/spider-backend/pkg/database"
)

const matchColumns = `id, teams, signature, winning_team, created_at, created_by_host`

type MatchRepository struct {
	db *database.DB
	q  database.Querier
}

func NewMatchRepository(db *database.DB) *MatchRepository {
	return &MatchRepository{db: db, q: db}
}

// WithTx 트랜잭션에 묶인 리포지토리 반환
func (r *MatchRepository) WithTx(tx *sql.Tx) *MatchRepository {
	return &MatchRepository{db: r.db, q: tx}
}

// Create 새 매치 저장
func (r *MatchRepository) Create(ctx context.Context, match *models.Match) error {
	teams, err := match.Teams.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode teams: %w", err)
	}

	query := r.db.Rebind(`
		INSERT INTO matches (id, teams, signature, winning_team, created_at, created_by_host)
		VALUES (?, ?, ?, ?, ?, ?)
	`)

	_, err = r.q.ExecContext(ctx, query,
		match.ID,
		string(teams),
		match.Signature,
		match.WinningTeam,
		match.CreatedAt,
		match.CreatedByHost,
	)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}

	return nil
}

// FindByID ID로 매치 찾기. 없으면 nil, nil
func (r *MatchRepository) FindByID(ctx context.Context, id string) (*models.Match, error) {
	query := r.db.Rebind(`SELECT ` + matchColumns + ` FROM matches WHERE id = ?`)

	match, err := scanMatch(r.q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find match: %w", err)
	}

	return match, nil
}

// FindLatestBySignature since 이후 생성된 같은 시그니처 매치 중 가장 최근 것
func (r *MatchRepository) FindLatestBySignature(ctx context.Context, signature string, since time.Time) (*models.Match, error) {
	query := r.db.Rebind(`
		SELECT ` + matchColumns + `
		FROM matches
		WHERE signature = ? AND created_at >= ?
		ORDER BY created_at DESC, seq DESC
		LIMIT 1
	`)

	match, err := scanMatch(r.q.QueryRowContext(ctx, query, signature, since))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find match by signature: %w", err)
	}

	return match, nil
}

// ListAll 전체 매치 스캔 (최신순)
func (r *MatchRepository) ListAll(ctx context.Context) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches ORDER BY created_at DESC, seq DESC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate matches: %w", err)
	}

	return matches, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	var (
		match       models.Match
		teams       []byte
		signature   sql.NullString
		winningTeam sql.NullInt64
		createdAt   sql.NullTime
		host        sql.NullString
	)

	err := row.Scan(
		&match.ID,
		&teams,
		&signature,
		&winningTeam,
		&createdAt,
		&host,
	)
	if err != nil {
		return nil, err
	}

	match.Teams = models.ParseStoredTeams(teams)
	if signature.Valid {
		match.Signature = &signature.String
	}
	if winningTeam.Valid {
		team := int(winningTeam.Int64)
		match.WinningTeam = &team
	}
	if createdAt.Valid {
		match.CreatedAt = createdAt.Time
	}
	match.CreatedByHost = host.String

	return &match, nil
}
