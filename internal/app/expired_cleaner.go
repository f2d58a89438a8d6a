package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// sweeper 可清理过期记录的存储
type sweeper interface {
	Sweep() int
}

// ExpiredCleaner 定期清理进程内存储中已过期的签发记录
// Redis 依赖 TTL 自动过期，无需清理
type ExpiredCleaner struct {
	store         sweeper
	logger        *zap.Logger
	checkInterval time.Duration

	statsCleaned int64
}

// NewExpiredCleaner 创建清理器；interval<=0 时每分钟清理一次
func NewExpiredCleaner(store sweeper, interval time.Duration, logger *zap.Logger) *ExpiredCleaner {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpiredCleaner{
		store:         store,
		logger:        logger,
		checkInterval: interval,
	}
}

// Start 启动清理循环，ctx 取消后返回
func (c *ExpiredCleaner) Start(ctx context.Context) {
	c.logger.Info("expired issued cleaner started",
		zap.Duration("check_interval", c.checkInterval))

	ticker := time.NewTicker(c.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("expired issued cleaner stopped",
				zap.Int64("total_cleaned", c.statsCleaned))
			return
		case <-ticker.C:
			c.cleanOnce()
		}
	}
}

func (c *ExpiredCleaner) cleanOnce() int {
	n := c.store.Sweep()
	if n > 0 {
		c.statsCleaned += int64(n)
		c.logger.Debug("cleaned expired issued payloads",
			zap.Int("cleaned", n),
			zap.Int64("total_cleaned", c.statsCleaned))
	}
	return n
}
