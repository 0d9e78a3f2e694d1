package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

const redisOpTimeout = 2 * time.Second

// NewRedisClient connects to Redis and pings it with exponential backoff
func NewRedisClient(ctx context.Context, cfg *config.Config, log *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = 15 * time.Second

	ping := func() error { return client.Ping(ctx).Err() }
	if err := backoff.Retry(ping, backoff.WithContext(bo, ctx)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.GetRedisAddr(), err)
	}

	if log != nil {
		log.Info("✅ Redis connected", zap.String("addr", cfg.GetRedisAddr()))
	}
	return client, nil
}

// redisKV is the subset of the client RedisStore needs
type redisKV interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore shares run status between API replicas
type RedisStore struct {
	client redisKV
	prefix string
	logger *zap.Logger
}

func NewRedisStore(client redisKV, prefix string, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, logger: logger}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

// Set writes value with expiration. Errors are logged; status is best effort.
func (s *RedisStore) Set(key string, value string, expiration time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key(key), value, expiration).Err(); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Redis SET failed", zap.String("key", key), zap.Error(err))
	}
}

// Get returns the value and whether it exists
func (s *RedisStore) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && s.logger != nil {
			s.logger.Warn("⚠️ Redis GET failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return val, true
}

// Delete removes a key
func (s *RedisStore) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Redis DEL failed", zap.String("key", key), zap.Error(err))
	}
}

// redisPubSub is the subset of the client RedisPublisher needs
type redisPubSub interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher pushes pipeline events as JSON on a pub/sub channel
type RedisPublisher struct {
	client  redisPubSub
	channel string
}

func NewRedisPublisher(client redisPubSub, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// Publish encodes event and sends it to the configured channel
func (p *RedisPublisher) Publish(ctx context.Context, event *entities.PipelineEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}
	return nil
}
