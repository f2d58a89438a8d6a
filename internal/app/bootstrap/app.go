package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/qris-server/internal/api"
	"github.com/taoyao-code/qris-server/internal/app"
	cfgpkg "github.com/taoyao-code/qris-server/internal/config"
	"github.com/taoyao-code/qris-server/internal/metrics"
	"github.com/taoyao-code/qris-server/internal/storage/memory"
)

// Version 构建版本，可通过 -ldflags 覆盖
var Version = "dev"

// Run 统一启动流程，阻塞直到收到退出信号
func Run(cfg *cfgpkg.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RunContext(ctx, cfg, log)
}

// RunContext 与 Run 相同，ctx 取消即开始优雅关闭
func RunContext(ctx context.Context, cfg *cfgpkg.Config, log *zap.Logger) error {
	log.Info("starting qris server", zap.String("version", Version))

	// ========== 阶段1: 初始化基础组件 ==========
	reg, appm := app.NewMetrics()
	metricsHandler := metrics.Handler(reg)
	ready := app.NewReady()
	serverID := app.GenerateServerID()
	log.Info("basic components initialized", zap.String("server_id", serverID))

	// ========== 阶段2: 编译商户目录（模板非法直接返回）==========
	catalog, err := app.NewCatalog(cfg.QRIS, log)
	if err != nil {
		log.Error("merchant catalog initialization failed", zap.Error(err))
		return err
	}
	ready.SetCatalogReady(true)

	// ========== 阶段3: 签发记录存储（Redis 可选）==========
	redisClient, err := app.NewRedisClient(cfg.Redis, log)
	if err != nil {
		log.Error("redis initialization failed", zap.Error(err))
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	store := app.NewIssuedStore(redisClient, cfg.Redis.KeyPrefix)

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()
	if mem, ok := store.(*memory.IssuedStore); ok {
		go app.NewExpiredCleaner(mem, time.Minute, log).Start(workerCtx)
	}

	svc, err := app.NewIssueService(cfg.QRIS, catalog, store, appm, serverID, log)
	if err != nil {
		log.Error("issue service initialization failed", zap.Error(err))
		return err
	}

	// ========== 阶段4: 健康检查与HTTP路由 ==========
	healthAgg := app.NewHealthAggregator(catalog)
	app.AddRedisChecker(healthAgg, redisClient)

	metricsPath := cfg.Metrics.Path
	if !cfg.Metrics.Enable {
		metricsHandler = nil
	}
	httpSrv := app.NewHTTPServer(cfg.HTTP, metricsPath, metricsHandler, ready.Ready, log)
	httpSrv.Register(func(r *gin.Engine) {
		app.RegisterHealthRoutes(r, healthAgg)
		api.RegisterQRISRoutes(r, svc, log)
	})

	// ========== 阶段5: 启动HTTP服务 ==========
	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	ready.SetHTTPReady(true)
	log.Info("http server started", zap.String("addr", cfg.HTTP.Addr))

	// ========== 阶段6: 等待关闭信号 ==========
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("received shutdown signal, gracefully shutting down...")
	case runErr = <-errCh:
		log.Error("http server error", zap.Error(runErr))
	}
	ready.SetHTTPReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http server shutdown error", zap.Error(err))
	}
	log.Info("shutdown complete")
	return runErr
}
