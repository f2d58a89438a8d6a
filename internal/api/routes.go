package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/qris-server/internal/service"
)

// RegisterQRISRoutes 注册 QRIS 路由
func RegisterQRISRoutes(r gin.IRouter, svc *service.IssueService, logger *zap.Logger) {
	if r == nil || svc == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	handler := NewQRISHandler(svc, logger)

	// 兼容旧入口：GET /?amount=N
	r.GET("/", handler.Generate)

	api := r.Group("/api/v1")
	api.GET("/qris", handler.Generate)
	api.GET("/qris/:id", handler.GetIssued)
	api.POST("/qris/decode", handler.Decode)
	api.GET("/merchants", handler.ListMerchants)

	logger.Info("qris routes registered", zap.Int("endpoints", 5))
}
