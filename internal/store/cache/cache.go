// Package cache puts a redis read-through cache in front of a store.Store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/idilsaglam/issuetracker/internal/model"
	"github.com/idilsaglam/issuetracker/internal/store"
)

const keyPrefix = "issues:"

// Store caches whole lists per resource. Saves write through to the backing
// store first and only then refresh the cached copy; a failed save evicts it.
// A miss only fills an empty key, so a list read before a concurrent save
// never replaces the saved one.
type Store struct {
	next   store.Store
	rdb    *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
	logger *slog.Logger
}

var _ store.Store = (*Store)(nil)

func New(next store.Store, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func key(resourceID string) string { return keyPrefix + resourceID }

func (s *Store) get(ctx context.Context, resourceID string) ([]model.Issue, bool) {
	b, err := s.rdb.Get(ctx, key(resourceID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		s.logger.Warn("cache get failed", "resource", resourceID, "err", err)
		return nil, false
	}
	var issues []model.Issue
	if err := json.Unmarshal(b, &issues); err != nil {
		s.logger.Warn("cache entry unreadable", "resource", resourceID, "err", err)
		return nil, false
	}
	if issues == nil {
		issues = []model.Issue{}
	}
	return issues, true
}

func (s *Store) set(ctx context.Context, resourceID string, issues []model.Issue) {
	b, err := json.Marshal(issues)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key(resourceID), b, s.ttl).Err(); err != nil {
		s.logger.Warn("cache set failed", "resource", resourceID, "err", err)
	}
}

func (s *Store) fill(ctx context.Context, resourceID string, issues []model.Issue) {
	b, err := json.Marshal(issues)
	if err != nil {
		return
	}
	ok, err := s.rdb.SetNX(ctx, key(resourceID), b, s.ttl).Result()
	if err != nil {
		s.logger.Warn("cache fill failed", "resource", resourceID, "err", err)
		return
	}
	if !ok {
		s.logger.Debug("cache already refreshed, keeping it", "resource", resourceID)
	}
}

// Load serves from redis when possible. Concurrent misses for the same
// resource share one backing load, which is not cancelled with any single
// caller.
func (s *Store) Load(ctx context.Context, resourceID string) ([]model.Issue, error) {
	if issues, ok := s.get(ctx, resourceID); ok {
		return issues, nil
	}
	shared := context.WithoutCancel(ctx)
	ch := s.sf.DoChan(resourceID, func() (any, error) {
		issues, err := s.next.Load(shared, resourceID)
		if err != nil {
			return nil, err
		}
		s.fill(shared, resourceID, issues)
		return issues, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return model.Clone(res.Val.([]model.Issue)), nil
	}
}

func (s *Store) Save(ctx context.Context, resourceID string, issues []model.Issue) error {
	if err := s.next.Save(ctx, resourceID, issues); err != nil {
		if delErr := s.rdb.Del(ctx, key(resourceID)).Err(); delErr != nil {
			s.logger.Warn("cache evict failed", "resource", resourceID, "err", delErr)
		}
		return err
	}
	s.set(ctx, resourceID, issues)
	return nil
}

// Invalidate drops the cached list for a resource.
func (s *Store) Invalidate(ctx context.Context, resourceID string) error {
	if err := s.rdb.Del(ctx, key(resourceID)).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
