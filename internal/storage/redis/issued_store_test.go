package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/qris-server/internal/coremodel"
)

// 使用测试用Redis客户端（需要真实Redis实例）
func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // 使用测试专用数据库
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skip("Redis not available, skipping test")
		return nil
	}

	client.FlushDB(ctx)
	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})
	return client
}

func TestIssuedStore_SaveGet(t *testing.T) {
	client := setupTestRedis(t)
	store := NewIssuedStore(client, "test:issued")
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	rec := &coremodel.IssuedPayload{
		ID:        "abc",
		Merchant:  "default",
		Amount:    10000,
		Payload:   "000201...",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, store.Save(ctx, rec, time.Hour))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, rec.Amount, got.Amount)
	assert.Equal(t, rec.Payload, got.Payload)
	assert.True(t, rec.ExpiresAt.Equal(got.ExpiresAt))

	ttl, err := client.TTL(ctx, "test:issued:abc").Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Hour)

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Get(ctx, "abc")
	assert.True(t, errors.Is(err, coremodel.ErrIssuedNotFound))
}

func TestIssuedStore_Validation(t *testing.T) {
	ctx := context.Background()

	var nilStore *IssuedStore
	assert.Error(t, nilStore.Save(ctx, &coremodel.IssuedPayload{ID: "x"}, time.Minute))
	_, err := nilStore.Get(ctx, "x")
	assert.Error(t, err)

	// 参数校验先于网络访问
	store := NewIssuedStore(redis.NewClient(&redis.Options{Addr: "localhost:0"}), "")
	assert.Equal(t, DefaultIssuedKeyPrefix+":id", store.buildKey("id"))
	assert.Error(t, store.Save(ctx, &coremodel.IssuedPayload{}, time.Minute))
	assert.Error(t, store.Save(ctx, &coremodel.IssuedPayload{ID: "x"}, 0))
}
