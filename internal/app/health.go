package app

import (
	"github.com/gin-gonic/gin"

	"github.com/taoyao-code/qris-server/internal/health"
	"github.com/taoyao-code/qris-server/internal/merchant"
)

// NewReady 启动阶段就绪标记
func NewReady() *health.Readiness {
	return health.New()
}

// NewHealthAggregator 创建健康检查聚合器，初始只包含模板检查
func NewHealthAggregator(catalog *merchant.Catalog) *health.Aggregator {
	return health.NewAggregator(
		health.NewTemplateChecker(catalog),
	)
}

// RegisterHealthRoutes 注册健康检查HTTP路由
func RegisterHealthRoutes(r *gin.Engine, aggregator *health.Aggregator) {
	health.RegisterHTTPRoutes(r, aggregator)
}
