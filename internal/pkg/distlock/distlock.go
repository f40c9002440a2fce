// Package distlock provides short-lived mutual exclusion keyed by string,
// across replicas through Redis or within one process otherwise.
package distlock

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DistLock is the interface for distributed locking.
// Implementations must be safe for use from a single goroutine;
// concurrent use across goroutines requires separate lock instances.
type DistLock interface {
	// Acquire tries to acquire the lock without blocking. Returns true if successful.
	Acquire(ctx context.Context) (bool, error)
	// Release releases the lock if we still own it.
	Release(ctx context.Context) error
}

// Factory creates a lock for key.
type Factory func(key string) DistLock

// NewFactory returns a Factory backed by Redis when client is non-nil and by
// an in-process table otherwise. ttl bounds how long a crashed holder can
// keep a Redis lock.
func NewFactory(client *redis.Client, ttl time.Duration) Factory {
	if client != nil {
		return func(key string) DistLock { return NewRedisLock(client, key, ttl) }
	}
	return func(key string) DistLock { return NewLocalLock(key) }
}

// held is the set of keys currently locked by LocalLocks in this process.
var held = struct {
	sync.Mutex
	keys map[string]struct{}
}{keys: make(map[string]struct{})}

// LocalLock implements DistLock within a single process.
type LocalLock struct {
	key   string
	owned bool
}

// NewLocalLock creates an in-process lock for key.
func NewLocalLock(key string) *LocalLock {
	return &LocalLock{key: key}
}

func (l *LocalLock) Acquire(context.Context) (bool, error) {
	held.Lock()
	defer held.Unlock()
	if _, busy := held.keys[l.key]; busy {
		return false, nil
	}
	held.keys[l.key] = struct{}{}
	l.owned = true
	return true, nil
}

func (l *LocalLock) Release(context.Context) error {
	if !l.owned {
		return nil
	}
	held.Lock()
	delete(held.keys, l.key)
	held.Unlock()
	l.owned = false
	return nil
}
