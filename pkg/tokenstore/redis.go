package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zoomkit/zoomapi/pkg/model"
)

const redisKeyPrefix = "zoom:credentials:"

// RedisStore keeps credential sets as JSON values.
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis connects to addr and verifies the connection. ttl <= 0 stores keys without
// expiry.
func NewRedis(addr string, db int, password string, ttl time.Duration, logger *zap.Logger) (*RedisStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       db,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisFromClient(rdb, ttl, logger), nil
}

func NewRedisFromClient(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{redis: rdb, ttl: ttl, logger: logger}
}

func (s *RedisStore) Load(ctx context.Context, key string) (model.CredentialSet, error) {
	data, err := s.redis.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.CredentialSet{}, ErrNotFound
	} else if err != nil {
		return model.CredentialSet{}, fmt.Errorf("redis get %s: %w", key, err)
	}

	var creds model.CredentialSet
	if err := json.Unmarshal(data, &creds); err != nil {
		return model.CredentialSet{}, fmt.Errorf("decode credentials %s: %w", key, err)
	}
	return creds, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, creds model.CredentialSet) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, redisKeyPrefix+key, data, s.ttl).Err(); err != nil {
		s.logger.Error("tokenstore.redis.save_failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) HealthCheck(ctx context.Context) error {
	if s.redis == nil {
		return errors.New("redis not initialized")
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Close()
}
