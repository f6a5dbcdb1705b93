package publisher

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"sjsage522/pagewatch/internal/page"
	apperrors "sjsage522/pagewatch/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher implements Publisher using a Redis stream
type RedisPublisher struct {
	client          *redis.Client
	stream          string
	streamMaxLength int64
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(addr string, db int, stream string, streamMaxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisPublisher{
		client:          client,
		stream:          stream,
		streamMaxLength: int64(streamMaxLength),
	}
}

// Publish appends the event to the stream as base64 encoded JSON.
// The stream is trimmed approximately to the configured length.
func (p *RedisPublisher) Publish(ctx context.Context, event page.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return apperrors.NewPublisher(p.stream, "failed to encode event", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			EventField: base64.StdEncoding.EncodeToString(payload),
		},
	}
	if p.streamMaxLength > 0 {
		args.MaxLen = p.streamMaxLength
		args.Approx = true
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return apperrors.NewPublisher(p.stream, "failed to publish event", err)
	}
	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
