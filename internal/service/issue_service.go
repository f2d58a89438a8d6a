package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taoyao-code/qris-server/internal/coremodel"
	"github.com/taoyao-code/qris-server/internal/merchant"
	"github.com/taoyao-code/qris-server/internal/metrics"
	"github.com/taoyao-code/qris-server/internal/protocol/qris"
)

// IssuedStore 已签发载荷存储（Redis 或进程内实现）
type IssuedStore interface {
	Save(ctx context.Context, rec *coremodel.IssuedPayload, ttl time.Duration) error
	Get(ctx context.Context, id coremodel.IssuedID) (*coremodel.IssuedPayload, error)
}

// IssueConfig 签发参数
type IssueConfig struct {
	DefaultAmount int64         // 金额为 0 时使用
	Expiry        time.Duration // 载荷有效期
	Issuer        string        // 签发实例ID，写入记录
}

// IssueService 动态 QRIS 签发服务
type IssueService struct {
	catalog *merchant.Catalog
	store   IssuedStore
	metrics *metrics.AppMetrics
	logger  *zap.Logger
	cfg     IssueConfig
	decode  []qris.DecodeOption

	now   func() time.Time
	newID func() string
}

// Option 服务可选项
type Option func(*IssueService)

// WithStore 设置签发记录存储；未设置时 Get 总是返回未找到
func WithStore(store IssuedStore) Option {
	return func(s *IssueService) { s.store = store }
}

// WithMetrics 设置业务指标
func WithMetrics(m *metrics.AppMetrics) Option {
	return func(s *IssueService) { s.metrics = m }
}

// WithLogger 设置日志器
func WithLogger(l *zap.Logger) Option {
	return func(s *IssueService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock 替换时钟（测试用）
func WithClock(now func() time.Time) Option {
	return func(s *IssueService) { s.now = now }
}

// WithIDGenerator 替换ID生成器（测试用）
func WithIDGenerator(gen func() string) Option {
	return func(s *IssueService) { s.newID = gen }
}

// WithDecodeOptions 解码载荷时使用的选项
func WithDecodeOptions(opts ...qris.DecodeOption) Option {
	return func(s *IssueService) { s.decode = opts }
}

// NewIssueService 创建签发服务
func NewIssueService(catalog *merchant.Catalog, cfg IssueConfig, opts ...Option) (*IssueService, error) {
	if catalog == nil {
		return nil, errors.New("merchant catalog is nil")
	}
	if cfg.Expiry <= 0 {
		return nil, fmt.Errorf("issue expiry must be positive, got %s", cfg.Expiry)
	}

	s := &IssueService{
		catalog: catalog,
		cfg:     cfg,
		logger:  zap.NewNop(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DefaultAmount 请求未给出金额时使用的金额
func (s *IssueService) DefaultAmount() int64 { return s.cfg.DefaultAmount }

// Catalog 商户目录
func (s *IssueService) Catalog() *merchant.Catalog { return s.catalog }

// Issue 为商户签发一个动态载荷
// amount 为 0 时使用默认金额；金额越界返回 *qris.AmountError
func (s *IssueService) Issue(ctx context.Context, merchantName string, amount int64) (*coremodel.IssuedPayload, error) {
	if amount == 0 {
		amount = s.cfg.DefaultAmount
	}

	gen, name, err := s.catalog.Lookup(merchantName)
	if err != nil {
		s.observeGenerate(name, metrics.ResultError)
		return nil, err
	}

	payload, err := gen.Generate(amount)
	if err != nil {
		result := metrics.ResultError
		var amountErr *qris.AmountError
		switch {
		case errors.As(err, &amountErr):
			result = metrics.ResultInvalidAmount
		case qris.IsTemplateError(err):
			result = metrics.ResultTemplate
			s.logger.Error("qris template rejected",
				zap.String("merchant", name), zap.Int64("amount", amount), zap.Error(err))
		}
		s.observeGenerate(name, result)
		return nil, err
	}

	now := s.now().UTC()
	rec := &coremodel.IssuedPayload{
		ID:        coremodel.IssuedID(s.newID()),
		Merchant:  name,
		Amount:    amount,
		Payload:   payload,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.Expiry),
		Issuer:    s.cfg.Issuer,
	}

	// 存储失败不影响签发结果，载荷本身自包含
	if s.store != nil {
		if err := s.store.Save(ctx, rec, s.cfg.Expiry); err != nil {
			s.observeStore("save", metrics.ResultError)
			s.logger.Warn("save issued payload failed",
				zap.String("id", string(rec.ID)), zap.Error(err))
		} else {
			s.observeStore("save", metrics.ResultOK)
		}
	}

	s.observeGenerate(name, metrics.ResultOK)
	if s.metrics != nil {
		s.metrics.Amount.Observe(float64(amount))
	}
	s.logger.Debug("qris issued",
		zap.String("id", string(rec.ID)), zap.String("merchant", name), zap.Int64("amount", amount))
	return rec, nil
}

// Get 查询已签发载荷
func (s *IssueService) Get(ctx context.Context, id coremodel.IssuedID) (*coremodel.IssuedPayload, error) {
	if s.store == nil {
		return nil, coremodel.ErrIssuedNotFound
	}
	rec, err := s.store.Get(ctx, id)
	switch {
	case errors.Is(err, coremodel.ErrIssuedNotFound):
		s.observeStore("get", "not_found")
		return nil, err
	case err != nil:
		s.observeStore("get", metrics.ResultError)
		return nil, err
	}
	s.observeStore("get", metrics.ResultOK)
	return rec, nil
}

// Decode 解析任意载荷；结构错误返回 error，CRC 结果见 ChecksumValid
func (s *IssueService) Decode(payload string) (*qris.Payload, error) {
	p, err := qris.Parse(payload, s.decode...)
	switch {
	case err != nil:
		s.observeDecode(metrics.ResultMalformed)
		return nil, err
	case !p.ChecksumValid:
		s.observeDecode(metrics.ResultBadChecksum)
	default:
		s.observeDecode(metrics.ResultOK)
	}
	return p, nil
}

func (s *IssueService) observeGenerate(merchantName, result string) {
	if s.metrics != nil {
		s.metrics.GenerateTotal.WithLabelValues(merchantName, result).Inc()
	}
}

func (s *IssueService) observeDecode(result string) {
	if s.metrics != nil {
		s.metrics.DecodeTotal.WithLabelValues(result).Inc()
	}
}

func (s *IssueService) observeStore(op, result string) {
	if s.metrics != nil {
		s.metrics.IssuedStoreTotal.WithLabelValues(op, result).Inc()
	}
}
