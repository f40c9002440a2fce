package redisrepo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/discount-generator/internal/domain"
	"github.com/ignite/discount-generator/internal/service/campaign"
)

func setupRepo(t *testing.T) (*SessionRepo, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewSessionRepo(client, "test:"), mr
}

func TestSessionRepoSaveGet(t *testing.T) {
	repo, mr := setupRepo(t)
	ctx := context.Background()

	last := time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC)
	s := &campaign.Session{
		ID:       "abc",
		Filename: "customers.xlsx",
		Table: domain.Table{
			Fields: domain.RequiredFields,
			Records: []domain.CustomerRecord{
				{CustomerName: "Asha", TotalOrders: 3, TotalSpent: 1200, LastOrderDate: last},
			},
		},
	}
	require.NoError(t, repo.Save(ctx, s, time.Hour))
	assert.True(t, mr.Exists("test:abc"))
	assert.Equal(t, time.Hour, mr.TTL("test:abc"))

	got, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "customers.xlsx", got.Filename)
	require.Len(t, got.Table.Records, 1)
	assert.True(t, last.Equal(got.Table.Records[0].LastOrderDate))
	assert.True(t, got.Table.Has(domain.FieldTotalSpent))
}

func TestSessionRepoExpiry(t *testing.T) {
	repo, mr := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &campaign.Session{ID: "short"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := repo.Get(ctx, "short")
	assert.ErrorIs(t, err, campaign.ErrSessionNotFound)
}

func TestSessionRepoDelete(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &campaign.Session{ID: "gone"}, 0))
	require.NoError(t, repo.Delete(ctx, "gone"))

	_, err := repo.Get(ctx, "gone")
	assert.ErrorIs(t, err, campaign.ErrSessionNotFound)
}

func TestSessionRepoCorruptPayload(t *testing.T) {
	repo, mr := setupRepo(t)
	require.NoError(t, mr.Set("test:bad", "not json"))

	_, err := repo.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, campaign.ErrSessionNotFound)
}

func TestConnect(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	client.Close()

	client, err = Connect(context.Background(), mr.Addr())
	require.NoError(t, err)
	client.Close()
}
