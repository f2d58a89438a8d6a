package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/qris-server/internal/config"
	"github.com/taoyao-code/qris-server/internal/merchant"
	"github.com/taoyao-code/qris-server/internal/metrics"
	"github.com/taoyao-code/qris-server/internal/protocol/qris"
	"github.com/taoyao-code/qris-server/internal/service"
)

// NewCatalog 编译商户目录；任一模板非法即启动失败
func NewCatalog(cfg cfgpkg.QRISConfig, logger *zap.Logger) (*merchant.Catalog, error) {
	catalog, err := merchant.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("merchant catalog loaded",
		zap.String("default", catalog.Default()),
		zap.Strings("merchants", catalog.Names()))
	return catalog, nil
}

// NewIssueService 创建签发服务
func NewIssueService(
	cfg cfgpkg.QRISConfig,
	catalog *merchant.Catalog,
	store service.IssuedStore,
	appm *metrics.AppMetrics,
	serverID string,
	logger *zap.Logger,
) (*service.IssueService, error) {
	opts := []service.Option{
		service.WithStore(store),
		service.WithMetrics(appm),
		service.WithLogger(logger),
	}
	if len(cfg.CompositeTags) > 0 {
		opts = append(opts, service.WithDecodeOptions(qris.WithCompositeTags(cfg.CompositeTags...)))
	}
	return service.NewIssueService(catalog, service.IssueConfig{
		DefaultAmount: cfg.DefaultAmount,
		Expiry:        cfg.Expiry,
		Issuer:        serverID,
	}, opts...)
}

// NewMetrics 初始化注册表与业务指标
func NewMetrics() (*prometheus.Registry, *metrics.AppMetrics) {
	reg := metrics.NewRegistry()
	return reg, metrics.NewAppMetrics(reg)
}
