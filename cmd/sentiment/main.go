package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"secondchance/internal/core/config"
	"secondchance/internal/core/logger"
	"secondchance/internal/core/server"
	"secondchance/internal/feature/sentiment"
	"secondchance/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := router.NewSentimentEngine(log, sentiment.NewAnalyzer())
	addr := server.Addr(cfg.Sentiment.Host, cfg.Sentiment.Port)
	srv := server.BuildServer(addr, r, 5*time.Second, 10*time.Second, 60*time.Second)

	log.Info("sentiment service starting", zap.String("addr", addr))
	if err := server.Serve(ctx, srv, log, 10*time.Second); err != nil {
		log.Fatal("sentiment service FAILED", zap.Error(err))
	}
}
