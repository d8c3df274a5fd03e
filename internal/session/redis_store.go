package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
)

const defaultKeyPrefix = "proposal-analyzer:session:"

// RedisStore keeps each session as a JSON string under prefix+id. The key
// TTL is refreshed on every Put.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: defaultKeyPrefix, ttl: ttl}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

func (r *RedisStore) Get(ctx context.Context, id string) (models.Session, error) {
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Session{}, ErrNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	var s models.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return models.Session{}, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return s, nil
}

func (r *RedisStore) Put(ctx context.Context, s models.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", s.ID, err)
	}
	if err := r.client.Set(ctx, r.key(s.ID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %s: %w", s.ID, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List walks the keyspace with SCAN. SCAN may repeat keys, and keys that
// expire mid-scan are skipped.
func (r *RedisStore) List(ctx context.Context) ([]models.Session, error) {
	var out []models.Session
	seen := make(map[string]struct{})
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		id := iter.Val()[len(r.prefix):]
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		s, err := r.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}

	if out == nil {
		out = []models.Session{}
	}
	sortSessions(out)
	return out, nil
}
