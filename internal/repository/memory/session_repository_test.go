package memory

import (
	"context"
	"testing"
	"time"

	"subbridge-be/internal/repository/contract"
	"subbridge-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_RoundTrip(t *testing.T) {
	repo := NewSessionRepository(time.Hour)
	ctx := context.Background()

	session := &store.Session{
		Id:     "sess-1",
		UserId: "user-1",
		Email:  "u@example.com",
	}
	require.NoError(t, repo.Save(ctx, session))

	got, err := repo.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserId)
}

func TestSessionRepository_MissingSession(t *testing.T) {
	repo := NewSessionRepository(time.Hour)

	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, contract.ErrSessionNotFound)
}

func TestSessionRepository_Delete(t *testing.T) {
	repo := NewSessionRepository(time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &store.Session{Id: "sess-1"}))
	require.NoError(t, repo.Delete(ctx, "sess-1"))

	_, err := repo.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, contract.ErrSessionNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, repo.Delete(ctx, "sess-1"))
}

func TestSessionRepository_Expiry(t *testing.T) {
	repo := NewSessionRepository(50 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &store.Session{Id: "sess-1"}))

	time.Sleep(80 * time.Millisecond)

	_, err := repo.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, contract.ErrSessionNotFound)
}
