// Package testutil 테스트용 SQLite 인메모리 DB와 매치 픽스처
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/siege-spider/spider-backend/internal/models"
	"github.com/siege-spider/spider-backend/internal/repository"
	"github.com/siege-spider/spider-backend/pkg/database"
)

// NewTestDB 스키마가 적용된 인메모리 SQLite
func NewTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Connect("sqlite://:memory:", database.DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(context.Background()))
	return db
}

// Teams 팀 0, 팀 1 순서로 Teams 생성
func Teams(team0, team1 []string) models.Teams {
	out := make(models.Teams, 0, len(team0)+len(team1))
	for _, id := range team0 {
		out = append(out, models.TeamEntry{PlayerID: id, Team: 0})
	}
	for _, id := range team1 {
		out = append(out, models.TeamEntry{PlayerID: id, Team: 1})
	}
	return out
}

// Players prefix0 ~ prefix{n-1}
func Players(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return ids
}

// InsertMatch 검증 없이 매치를 직접 저장 (레거시 데이터 재현용)
func InsertMatch(t *testing.T, db *database.DB, teams models.Teams, createdAt time.Time) *models.Match {
	t.Helper()

	match := &models.Match{
		ID:        uuid.NewString(),
		Teams:     teams,
		CreatedAt: createdAt.UTC(),
	}
	require.NoError(t, repository.NewMatchRepository(db).Create(context.Background(), match))
	return match
}

// InsertRawTeams teams 컬럼에 임의의 JSON 을 저장
func InsertRawTeams(t *testing.T, db *database.DB, rawTeams string, createdAt time.Time) string {
	t.Helper()

	id := uuid.NewString()
	_, err := db.ExecContext(context.Background(),
		db.Rebind(`INSERT INTO matches (id, teams, created_at) VALUES (?, ?, ?)`),
		id, rawTeams, createdAt.UTC(),
	)
	require.NoError(t, err)
	return id
}
