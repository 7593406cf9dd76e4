package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/siege-spider/spider-backend/internal/models"
	"github.com/siege-spider/spider-backend/pkg/database"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create 새 사용자 생성
func (r *UserRepository) Create(ctx context.Context, username, email, passwordHash string) error {
	query := r.db.Rebind(`
		INSERT INTO users (username, email, hashed_password)
		VALUES (?, ?, ?)
	`)

	if _, err := r.db.ExecContext(ctx, query, username, email, passwordHash); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindByEmail 이메일로 사용자 찾기
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := r.db.Rebind(`
		SELECT id, username, email, hashed_password
		FROM users
		WHERE email = ?
	`)

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}
