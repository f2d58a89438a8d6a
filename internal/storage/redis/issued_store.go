package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taoyao-code/qris-server/internal/coremodel"
)

// DefaultIssuedKeyPrefix 已签发载荷Key前缀
const DefaultIssuedKeyPrefix = "qris:issued"

// IssuedStore 已签发载荷存储（基于Redis，TTL 即载荷有效期）
type IssuedStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewIssuedStore 创建存储
func NewIssuedStore(client redis.UniversalClient, prefix string) *IssuedStore {
	if prefix == "" {
		prefix = DefaultIssuedKeyPrefix
	}
	return &IssuedStore{redis: client, prefix: prefix}
}

// Save 保存签发记录，ttl<=0 时拒绝写入（永不过期的记录没有意义）
func (s *IssuedStore) Save(ctx context.Context, rec *coremodel.IssuedPayload, ttl time.Duration) error {
	if s == nil || s.redis == nil {
		return fmt.Errorf("issued store not initialized")
	}
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("issued payload id is empty")
	}
	if ttl <= 0 {
		return fmt.Errorf("issued payload %s already expired", rec.ID)
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal issued payload: %w", err)
	}
	if err := s.redis.Set(ctx, s.buildKey(rec.ID), b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Get 读取签发记录；不存在或已过期返回 coremodel.ErrIssuedNotFound
func (s *IssuedStore) Get(ctx context.Context, id coremodel.IssuedID) (*coremodel.IssuedPayload, error) {
	if s == nil || s.redis == nil {
		return nil, fmt.Errorf("issued store not initialized")
	}

	b, err := s.redis.Get(ctx, s.buildKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, coremodel.ErrIssuedNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var rec coremodel.IssuedPayload
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal issued payload: %w", err)
	}
	return &rec, nil
}

// Delete 删除签发记录（用于测试或手动撤销）
func (s *IssuedStore) Delete(ctx context.Context, id coremodel.IssuedID) error {
	if s == nil || s.redis == nil {
		return fmt.Errorf("issued store not initialized")
	}
	return s.redis.Del(ctx, s.buildKey(id)).Err()
}

func (s *IssuedStore) buildKey(id coremodel.IssuedID) string {
	return fmt.Sprintf("%s:%s", s.prefix, id)
}
