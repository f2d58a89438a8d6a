package coremodel

import (
	"errors"
	"time"
)

// ErrIssuedNotFound 已签发载荷不存在或已过期
var ErrIssuedNotFound = errors.New("issued payload not found")

// IssuedID 已签发载荷ID
type IssuedID string

// IssuedPayload 一次动态 QRIS 签发记录
type IssuedPayload struct {
	ID        IssuedID  `json:"id"`
	Merchant  string    `json:"merchant"`
	Amount    int64     `json:"amount"`
	Payload   string    `json:"qris_string"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expiry"`
	Issuer    string    `json:"issuer,omitempty"` // 签发实例ID
}

// Expired 在 now 时刻是否已过期
func (p *IssuedPayload) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// TTL 距离过期的剩余时间，已过期返回 0
func (p *IssuedPayload) TTL(now time.Time) time.Duration {
	if d := p.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}
