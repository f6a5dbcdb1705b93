package state

import (
	"context"
	"errors"
	"strings"

	"sjsage522/pagewatch/helpers"
	"sjsage522/pagewatch/internal/page"
	apperrors "sjsage522/pagewatch/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps state under a single redis key using the file format
type RedisStore struct {
	client *redis.Client
	key    string
	kind   page.Kind
}

// NewRedisStore creates a redis-backed store
func NewRedisStore(addr string, db int, key string, kind page.Kind) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisStore{
		client: client,
		key:    key,
		kind:   kind,
	}
}

// Load reads the state key; a missing key yields an empty representation
func (s *RedisStore) Load(ctx context.Context) (page.Representation, error) {
	value, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return page.FromRecords(s.kind, nil), nil
	}
	if err != nil {
		return page.Representation{}, apperrors.NewState(s.key, "failed to read state from redis", err)
	}
	return page.FromRecords(s.kind, helpers.SplitLines(value)), nil
}

// Save overwrites the state key in one SET
func (s *RedisStore) Save(ctx context.Context, rep page.Representation) error {
	value := strings.Join(rep.Records(), "\n")
	if err := s.client.Set(ctx, s.key, value, 0).Err(); err != nil {
		return apperrors.NewState(s.key, "failed to write state to redis", err)
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
