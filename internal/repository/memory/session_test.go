package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/discount-generator/internal/service/campaign"
)

func TestSessionRepoRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepo()

	s := &campaign.Session{ID: "s1", Filename: "customers.csv"}
	require.NoError(t, repo.Save(ctx, s, time.Hour))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "customers.csv", got.Filename)

	got.Filename = "mutated"
	again, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "customers.csv", again.Filename)

	require.NoError(t, repo.Delete(ctx, "s1"))
	_, err = repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, campaign.ErrSessionNotFound)
}

func TestSessionRepoExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	repo := NewSessionRepo().WithClock(func() time.Time { return now })

	require.NoError(t, repo.Save(ctx, &campaign.Session{ID: "short"}, time.Minute))
	require.NoError(t, repo.Save(ctx, &campaign.Session{ID: "forever"}, 0))

	now = now.Add(2 * time.Minute)

	_, err := repo.Get(ctx, "short")
	assert.ErrorIs(t, err, campaign.ErrSessionNotFound)
	_, err = repo.Get(ctx, "forever")
	assert.NoError(t, err)
}

func TestSessionRepoSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	repo := NewSessionRepo().WithClock(func() time.Time { return now })

	require.NoError(t, repo.Save(ctx, &campaign.Session{ID: "a"}, time.Minute))
	require.NoError(t, repo.Save(ctx, &campaign.Session{ID: "b"}, time.Hour))

	now = now.Add(10 * time.Minute)
	assert.Equal(t, 1, repo.Sweep())
	assert.Equal(t, 1, repo.Len())
}
