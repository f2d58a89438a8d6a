package main

import (
	"flag"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/taoyao-code/qris-server/internal/app/bootstrap"
	cfgpkg "github.com/taoyao-code/qris-server/internal/config"
	"github.com/taoyao-code/qris-server/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: $QRIS_CONFIG or configs/example.yaml)")
	flag.Parse()

	// 0) .env 可选，不存在时忽略
	_ = godotenv.Load()

	// 1) 加载配置
	cfg, err := cfgpkg.Load(*configPath)
	if err != nil {
		panic(err)
	}

	// 2) 初始化日志
	logger, err := logging.InitLogger(cfg.App, cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	// 3) 启动
	if err := bootstrap.Run(cfg, zap.L()); err != nil {
		zap.L().Fatal("qris server exited", zap.Error(err))
	}
}
