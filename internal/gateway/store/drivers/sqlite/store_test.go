package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/sessiongate/internal/gateway/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "nonces.db")
	s, err := NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestSaveAndConsume(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	n := store.Nonce{
		State:     "state-xyz",
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(10 * time.Minute),
	}
	require.NoError(t, s.Save(ctx, n))

	got, err := s.Consume(ctx, "state-xyz")
	require.NoError(t, err)
	require.Equal(t, "state-xyz", got.State)

	_, err = s.Consume(ctx, "state-xyz")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSaveOverwrites(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	first := store.Nonce{
		State:     "state-dup",
		CreatedAt: time.Now().UTC().Add(-time.Minute),
		ExpiresAt: time.Now().UTC().Add(-time.Second),
	}
	require.NoError(t, s.Save(ctx, first))

	second := first
	second.CreatedAt = time.Now().UTC()
	second.ExpiresAt = time.Now().UTC().Add(10 * time.Minute)
	require.NoError(t, s.Save(ctx, second))

	got, err := s.Consume(ctx, "state-dup")
	require.NoError(t, err)
	require.WithinDuration(t, second.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestConsumeExpiredNonce(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, store.Nonce{
		State:     "stale",
		CreatedAt: time.Now().UTC().Add(-time.Hour),
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}))

	_, err := s.Consume(ctx, "stale")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteExpiredSweep(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, store.Nonce{
		State:     "live",
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(10 * time.Minute),
	}))
	require.NoError(t, s.Save(ctx, store.Nonce{
		State:     "dead",
		CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}))

	removed, err := s.DeleteExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	_, err = s.Consume(ctx, "live")
	require.NoError(t, err)
}
