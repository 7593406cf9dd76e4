package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/siege-spider/spider-backend/internal/models"
	"github.com/siege-spider/spider-backend/pkg/database"
)

type ClientRepository struct {
	db *database.DB
}

func NewClientRepository(db *database.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// Current 현재 배포 버전 (행이 없으면 nil)
func (r *ClientRepository) Current(ctx context.Context) (*models.ClientVersion, error) {
	var (
		version models.ClientVersion
		url     sql.NullString
	)

	err := r.db.QueryRowContext(ctx, `SELECT current_version, download_url FROM client LIMIT 1`).Scan(
		&version.CurrentVersion,
		&url,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client version: %w", err)
	}

	version.DownloadURL = url.String
	return &version, nil
}

// Set 배포 버전 교체. 테이블에는 항상 한 행만 남는다.
func (r *ClientRepository) Set(ctx context.Context, version models.ClientVersion) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM client`); err != nil {
			return fmt.Errorf("failed to clear client version: %w", err)
		}

		query := r.db.Rebind(`INSERT INTO client (current_version, download_url) VALUES (?, ?)`)
		if _, err := tx.ExecContext(ctx, query, version.CurrentVersion, version.DownloadURL); err != nil {
			return fmt.Errorf("failed to set client version: %w", err)
		}
		return nil
	})
}
