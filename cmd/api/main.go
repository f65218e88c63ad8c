package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"eventlink/internal/app"
	"eventlink/internal/core/config"
	"eventlink/internal/core/logger"
	"eventlink/internal/core/server"
	"eventlink/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		stdlog.Fatal(err)
	}
	log, cleanup := logger.New(logger.Options{
		Level:   cfg.Log.Level,
		JSON:    cfg.Log.JSON,
		Service: "api",
		File:    logger.FileRotate(cfg.Log.File),
	})
	defer cleanup()
	undo := logger.RedirectStdLog(log, zapcore.InfoLevel)
	defer undo()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, closeDeps, err := app.Build(ctx, cfg, log)
	defer closeDeps()
	if err != nil {
		log.Error("build app failed", zap.Error(err))
		return
	}

	errLog, _ := logger.ToStdLogger(log, zapcore.ErrorLevel)
	// 用户端
	srv := server.New(cfg.App.HTTP, router.NewAPIEngine(deps), errLog)
	if err := server.Serve(ctx, log, srv); err != nil {
		log.Error("api stopped with error", zap.Error(err))
		return
	}
	log.Info("api stopped gracefully")
}
