package cache

import (
	"context"
	"time"

	"os_service_api/internal/usecase/interfaces"

	"github.com/redis/go-redis/v9"
)

const (
	defaultProcessedPrefix = "os:saga:processed:"
	DefaultProcessedTTL    = 24 * time.Hour
)

// ProcessedMessageRedisStore remembers handled saga replies so redeliveries
// can be acked without touching the order store. Entries expire after ttl;
// the aggregate stays idempotent on its own, this only saves round-trips.
type ProcessedMessageRedisStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

var _ interfaces.IProcessedMessageStore = (*ProcessedMessageRedisStore)(nil)

func NewProcessedMessageRedisStore(client redis.Cmdable, ttl time.Duration) *ProcessedMessageRedisStore {
	if ttl <= 0 {
		ttl = DefaultProcessedTTL
	}
	return &ProcessedMessageRedisStore{client: client, prefix: defaultProcessedPrefix, ttl: ttl}
}

func (s *ProcessedMessageRedisStore) WasProcessed(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *ProcessedMessageRedisStore) MarkProcessed(ctx context.Context, key string) error {
	return s.client.Set(ctx, s.prefix+key, "1", s.ttl).Err()
}
