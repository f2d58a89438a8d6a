package app

import (
	"net/http"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/qris-server/internal/config"
	"github.com/taoyao-code/qris-server/internal/httpserver"
)

// NewHTTPServer 根据配置创建 HTTP 服务器
func NewHTTPServer(cfg cfgpkg.HTTPConfig, metricsPath string, metricsHandler http.Handler, readyFn func() bool, logger *zap.Logger) *httpserver.Server {
	return httpserver.New(cfg, metricsPath, metricsHandler, readyFn, logger)
}
