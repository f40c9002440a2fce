// Package redisrepo stores dashboard sessions in Redis as JSON documents with a
// per-key expiry, so several server replicas can share uploads and results.
package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/discount-generator/internal/service/campaign"
)

// DefaultKeyPrefix namespaces session keys.
const DefaultKeyPrefix = "discountgen:session:"

// SessionRepo implements campaign.Repository against Redis.
type SessionRepo struct {
	client *redis.Client
	prefix string
}

// NewSessionRepo wraps an existing client. An empty prefix uses DefaultKeyPrefix.
func NewSessionRepo(client *redis.Client, prefix string) *SessionRepo {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &SessionRepo{client: client, prefix: prefix}
}

// Connect parses a redis:// URL, falling back to treating it as a bare
// address, and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	var client *redis.Client
	opts, err := redis.ParseURL(url)
	if err != nil {
		client = redis.NewClient(&redis.Options{Addr: url})
	} else {
		client = redis.NewClient(opts)
	}
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (r *SessionRepo) key(id string) string { return r.prefix + id }

func (r *SessionRepo) Get(ctx context.Context, id string) (*campaign.Session, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, campaign.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var s campaign.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

// Save writes s under its ID. A non-positive ttl keeps the key until deleted.
func (r *SessionRepo) Save(ctx context.Context, s *campaign.Session, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, r.key(s.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
