package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siege-spider/spider-backend/internal/models"
	"github.com/siege-spider/spider-backend/internal/repository"
	"github.com/siege-spider/spider-backend/internal/testutil"
)

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := repository.NewUserRepository(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, "ops", "ops@example.com", "hash"))

	user, err := repo.FindByEmail(ctx, "ops@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "ops", user.Username)
	assert.Equal(t, "hash", user.PasswordHash)
	assert.NotZero(t, user.ID)

	missing, err := repo.FindByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := repository.NewUserRepository(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, "a", "same@example.com", "h"))
	assert.Error(t, repo.Create(ctx, "b", "same@example.com", "h"))
}

func TestClientRepository_SetReplaces(t *testing.T) {
	repo := repository.NewClientRepository(testutil.NewTestDB(t))
	ctx := context.Background()

	v, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, repo.Set(ctx, models.ClientVersion{CurrentVersion: "1.0.0", DownloadURL: "https://example.com/1"}))
	require.NoError(t, repo.Set(ctx, models.ClientVersion{CurrentVersion: "1.1.0"}))

	v, err = repo.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "1.1.0", v.CurrentVersion)
	assert.Empty(t, v.DownloadURL)
}
