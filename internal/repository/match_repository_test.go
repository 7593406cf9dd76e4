package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siege-spider/spider-backend/internal/models"
	"github.com/siege-spider/spider-backend/internal/repository"
	"github.com/siege-spider/spider-backend/internal/testutil"
)

func TestMatchRepository_CreateAndFind(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewMatchRepository(db)
	ctx := context.Background()

	sig := "abc123"
	win := 1
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	match := &models.Match{
		ID:            "m-1",
		Teams:         testutil.Teams(testutil.Players("a", 5), testutil.Players("b", 5)),
		Signature:     &sig,
		WinningTeam:   &win,
		CreatedAt:     created,
		CreatedByHost: "10.0.0.1",
	}
	require.NoError(t, repo.Create(ctx, match))

	got, err := repo.FindByID(ctx, "m-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, match.Teams, got.Teams)
	require.NotNil(t, got.Signature)
	assert.Equal(t, sig, *got.Signature)
	require.NotNil(t, got.WinningTeam)
	assert.Equal(t, 1, *got.WinningTeam)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Equal(t, "10.0.0.1", got.CreatedByHost)
}

func TestMatchRepository_FindByIDMissing(t *testing.T) {
	repo := repository.NewMatchRepository(testutil.NewTestDB(t))

	got, err := repo.FindByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMatchRepository_FindLatestBySignature(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewMatchRepository(db)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	teams := testutil.Teams(testutil.Players("a", 5), testutil.Players("b", 5))

	insert := func(id, sig string, at time.Time) {
		s := sig
		require.NoError(t, repo.Create(ctx, &models.Match{ID: id, Teams: teams, Signature: &s, CreatedAt: at}))
	}
	insert("old", "s1", base.Add(-3*time.Hour))
	insert("mid", "s1", base.Add(-30*time.Minute))
	insert("new", "s1", base.Add(-10*time.Minute))
	insert("other", "s2", base)

	got, err := repo.FindLatestBySignature(ctx, "s1", base.Add(-2*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "new", got.ID)

	got, err = repo.FindLatestBySignature(ctx, "s1", base.Add(-5*time.Minute))
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.FindLatestBySignature(ctx, "missing", base.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMatchRepository_FindLatestBySignatureTieBreaksOnInsertOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewMatchRepository(db)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	sig := "same"

	for _, id := range []string{"first", "second"} {
		require.NoError(t, repo.Create(ctx, &models.Match{ID: id, Teams: models.Teams{}, Signature: &sig, CreatedAt: at}))
	}

	got, err := repo.FindLatestBySignature(ctx, sig, at.Add(-time.Hour))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "second", got.ID)
}

func TestMatchRepository_ListAllNewestFirst(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewMatchRepository(db)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	older := testutil.InsertMatch(t, db, testutil.Teams([]string{"a"}, []string{"b"}), base)
	newer := testutil.InsertMatch(t, db, testutil.Teams([]string{"c"}, []string{"d"}), base.Add(time.Hour))

	matches, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, newer.ID, matches[0].ID)
	assert.Equal(t, older.ID, matches[1].ID)
}

func TestMatchRepository_ListAllTolerantOfLegacyTeams(t *testing.T) {
	db := testutil.NewTestDB(t)
	id := testutil.InsertRawTeams(t, db, `not json`, time.Now())

	matches, err := repository.NewMatchRepository(db).ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, id, matches[0].ID)
	assert.Empty(t, matches[0].Teams)
}

func TestMatchRepository_WithTxRollsBack(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewMatchRepository(db)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := repo.WithTx(tx).Create(ctx, &models.Match{ID: "tx", Teams: models.Teams{}, CreatedAt: time.Now()}); err != nil {
			return err
		}
		got, err := repo.WithTx(tx).FindByID(ctx, "tx")
		if err != nil {
			return err
		}
		assert.NotNil(t, got)
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := repo.FindByID(ctx, "tx")
	require.NoError(t, err)
	assert.Nil(t, got)
}
