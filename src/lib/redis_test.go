package lib

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

type cachedStats struct {
	Total int `json:"total"`
}

func TestCacheJSON(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	NewRedisClient(rdb)
	defer NewRedisClient(nil)
	ctx := context.Background()

	mock.ExpectGet("stats").RedisNil()
	var miss cachedStats
	hit, err := CacheGetJSON(ctx, "stats", &miss)
	assert.NoError(t, err)
	assert.False(t, hit)

	mock.ExpectSet("stats", []byte(`{"total":3}`), 30*time.Second).SetVal("OK")
	assert.NoError(t, CacheSetJSON(ctx, "stats", &cachedStats{Total: 3}, 30*time.Second))

	mock.ExpectGet("stats").SetVal(`{"total":3}`)
	var got cachedStats
	hit, err = CacheGetJSON(ctx, "stats", &got)
	assert.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, got.Total)

	mock.ExpectDel("stats").SetVal(1)
	assert.NoError(t, CacheDelete(ctx, "stats"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheWithoutRedis(t *testing.T) {
	NewRedisClient(nil)
	t.Setenv("REDIS_HOST", "")

	var v cachedStats
	hit, err := CacheGetJSON(context.Background(), "stats", &v)
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, CacheSetJSON(context.Background(), "stats", &v, time.Second))
}
