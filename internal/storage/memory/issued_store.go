package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/taoyao-code/qris-server/internal/coremodel"
)

// IssuedStore 进程内签发记录存储，Redis 未启用时使用
type IssuedStore struct {
	mu    sync.RWMutex
	items map[coremodel.IssuedID]coremodel.IssuedPayload
	now   func() time.Time
}

// NewIssuedStore 创建存储；now 为空时使用 time.Now
func NewIssuedStore(now func() time.Time) *IssuedStore {
	if now == nil {
		now = time.Now
	}
	return &IssuedStore{
		items: make(map[coremodel.IssuedID]coremodel.IssuedPayload),
		now:   now,
	}
}

// Save 保存记录，过期时间取 now+ttl
func (s *IssuedStore) Save(_ context.Context, rec *coremodel.IssuedPayload, ttl time.Duration) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("issued payload id is empty")
	}
	if ttl <= 0 {
		return fmt.Errorf("issued payload %s already expired", rec.ID)
	}

	cp := *rec
	cp.ExpiresAt = s.now().Add(ttl)

	s.mu.Lock()
	s.items[rec.ID] = cp
	s.mu.Unlock()
	return nil
}

// Get 读取未过期的记录；过期记录顺带删除
func (s *IssuedStore) Get(_ context.Context, id coremodel.IssuedID) (*coremodel.IssuedPayload, error) {
	s.mu.RLock()
	rec, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return nil, coremodel.ErrIssuedNotFound
	}
	if rec.Expired(s.now()) {
		s.mu.Lock()
		delete(s.items, id)
		s.mu.Unlock()
		return nil, coremodel.ErrIssuedNotFound
	}
	return &rec, nil
}

// Sweep 清理所有过期记录，返回删除数量
func (s *IssuedStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, rec := range s.items {
		if rec.Expired(now) {
			delete(s.items, id)
			n++
		}
	}
	return n
}

// Len 当前记录数（含尚未清理的过期记录）
func (s *IssuedStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
