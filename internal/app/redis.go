package app

import (
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/qris-server/internal/config"
	"github.com/taoyao-code/qris-server/internal/health"
	"github.com/taoyao-code/qris-server/internal/service"
	"github.com/taoyao-code/qris-server/internal/storage/memory"
	redisstorage "github.com/taoyao-code/qris-server/internal/storage/redis"
)

// NewRedisClient 创建Redis客户端；未启用时返回 nil
func NewRedisClient(cfg cfgpkg.RedisConfig, logger *zap.Logger) (*redisstorage.Client, error) {
	if !cfg.Enabled {
		logger.Info("redis is disabled, using in-memory issued store")
		return nil, nil
	}

	client, err := redisstorage.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("redis client initialized",
		zap.String("addr", cfg.Addr),
		zap.Int("pool_size", cfg.PoolSize))

	return client, nil
}

// NewIssuedStore Redis 可用时使用 Redis，否则退回进程内存储
func NewIssuedStore(client *redisstorage.Client, keyPrefix string) service.IssuedStore {
	if client != nil {
		return redisstorage.NewIssuedStore(client.Client, keyPrefix)
	}
	return memory.NewIssuedStore(time.Now)
}

// AddRedisChecker 添加Redis检查器到聚合器
func AddRedisChecker(aggregator *health.Aggregator, redisClient *redisstorage.Client) {
	if redisClient != nil {
		aggregator.AddChecker(health.NewRedisChecker(redisClient))
	}
}
