package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/sessiongate/internal/gateway/store"
)

func TestConsumeIsSingleUse(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()

	n := store.Nonce{
		State:     "state-abc",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
	require.NoError(t, s.Save(ctx, n))

	got, err := s.Consume(ctx, "state-abc")
	require.NoError(t, err)
	require.Equal(t, n.State, got.State)

	_, err = s.Consume(ctx, "state-abc")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestConsumeUnknownState(t *testing.T) {
	t.Parallel()

	s := NewStore()
	_, err := s.Consume(context.Background(), "never-saved")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestConsumeExpired(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, store.Nonce{
		State:     "stale",
		CreatedAt: time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	_, err := s.Consume(ctx, "stale")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteExpired(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, store.Nonce{
		State:     "live",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}))
	require.NoError(t, s.Save(ctx, store.Nonce{
		State:     "dead-1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}))
	require.NoError(t, s.Save(ctx, store.Nonce{
		State:     "dead-2",
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	removed, err := s.DeleteExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, removed)

	_, err = s.Consume(ctx, "live")
	require.NoError(t, err)
}
