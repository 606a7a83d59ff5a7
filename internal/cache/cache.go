package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Init dials Redis. The catalog endpoints treat a nil client as
// cache-disabled, so callers may log the error and continue without it.
func Init(addr, password string, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established")
	return rdb, nil
}

func productKey(slug string) string {
	return fmt.Sprintf("product:%s", slug)
}

func GetProduct(ctx context.Context, rdb *redis.Client, slug string) ([]byte, error) {
	return rdb.Get(ctx, productKey(slug)).Bytes()
}

func SetProduct(ctx context.Context, rdb *redis.Client, slug string, product interface{}, ttl time.Duration) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, productKey(slug), data, ttl).Err()
}

func DeleteProduct(ctx context.Context, rdb *redis.Client, slug string) error {
	return rdb.Del(ctx, productKey(slug)).Err()
}
