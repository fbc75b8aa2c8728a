package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/task-api/internal/core/domain"
)

func TestUserRepository_CreateThenFind(t *testing.T) {
	r := NewUserRepository(setupDB(t))
	ctx := context.Background()
	now := time.Date(2025, 5, 17, 10, 0, 0, 0, time.UTC)

	created, err := r.Create(ctx, &domain.User{Username: "alice", PasswordHash: "$2a$hash", CreatedAt: now})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := r.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "$2a$hash", got.PasswordHash)
	assert.True(t, now.Equal(got.CreatedAt))
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	r := NewUserRepository(setupDB(t))
	ctx := context.Background()

	_, err := r.Create(ctx, &domain.User{Username: "bob", PasswordHash: "h1", CreatedAt: time.Now()})
	require.NoError(t, err)

	_, err = r.Create(ctx, &domain.User{Username: "bob", PasswordHash: "h2", CreatedAt: time.Now()})
	require.ErrorIs(t, err, domain.ErrUserExists)
}

func TestUserRepository_UsernameIsCaseSensitive(t *testing.T) {
	r := NewUserRepository(setupDB(t))
	ctx := context.Background()

	_, err := r.Create(ctx, &domain.User{Username: "Carol", PasswordHash: "h", CreatedAt: time.Now()})
	require.NoError(t, err)

	_, err = r.FindByUsername(ctx, "carol")
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = r.Create(ctx, &domain.User{Username: "carol", PasswordHash: "h", CreatedAt: time.Now()})
	require.NoError(t, err)
}

func TestUserRepository_FindMissing(t *testing.T) {
	r := NewUserRepository(setupDB(t))

	_, err := r.FindByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}
