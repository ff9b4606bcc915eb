package lib

import (
	"cinco/src/config"
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// GetRedisClient returns nil when REDIS_HOST is unset; callers treat that as
// a cache miss.
func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := config.RedisHost()
	if redisHost == "" {
		return nil
	}
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

// CacheGetJSON decodes the cached value of key into dest. The bool reports a hit.
func CacheGetJSON(ctx context.Context, key string, dest any) (bool, error) {
	rdb := GetRedisClient()
	if rdb == nil {
		return false, nil
	}
	val, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func CacheSetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	rdb := GetRedisClient()
	if rdb == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

func CacheDelete(ctx context.Context, keys ...string) error {
	rdb := GetRedisClient()
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, keys...).Err()
}
