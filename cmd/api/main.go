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
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"secondchance/internal/core/auth"
	"secondchance/internal/core/config"
	"secondchance/internal/core/database"
	"secondchance/internal/core/logger"
	"secondchance/internal/core/sequence"
	"secondchance/internal/core/server"
	"secondchance/internal/domain"
	"secondchance/internal/feature/item"
	"secondchance/internal/feature/user"
	"secondchance/internal/repo"
	"secondchance/internal/storage"
	"secondchance/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	log, cleanup := newLogger(cfg)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.WarnLevel)()
	gin.DefaultWriter = logger.ToWriter(log, zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log, zapcore.ErrorLevel)
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))
	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(repo.Models()...); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	seq, closeSeq := mustSequence(ctx, cfg, db, log)
	defer closeSeq()
	images := mustImageStore(cfg, log)

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		Leeway: time.Duration(cfg.JWT.LeewaySec) * time.Second,
	}
	users := user.NewService(repo.NewUserRepo(db), jwter, log.Named("auth"))
	items := item.NewService(repo.NewItemRepo(db), seq, images, log.Named("items"))

	if _, err := items.Seed(ctx, cfg.Seed.ItemsFile); err != nil {
		log.Fatal("seed items failed", zap.Error(err))
	}
	if err := items.SyncSequence(ctx); err != nil {
		log.Fatal("sync item sequence failed", zap.Error(err))
	}

	r := router.NewAPIEngine(log, router.APIDeps{
		Users:              users,
		Items:              items,
		Images:             images,
		MaxMultipartMemory: int64(cfg.Upload.MaxMemoryMB) << 20,
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("secondchance api starting",
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+"/api"),
		zap.String("sequence", cfg.Sequence.Backend),
		zap.String("upload", cfg.Upload.Backend),
	)

	if err := server.Serve(ctx, srv, log, 10*time.Second); err != nil {
		log.Fatal("secondchance api FAILED", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, func()) {
	f := cfg.Log.File
	if f.Filename == "" {
		return logger.New(cfg.Log.Level, cfg.Log.JSON)
	}
	return logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, f.Filename, f.MaxSizeMB, f.MaxBackups, f.MaxAgeDays, f.Compress)
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Name:               cfg.DB.Name,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}

// mustSequence 按配置选择 db 或 redis 作为商品 id 计数器
func mustSequence(ctx context.Context, cfg *config.Config, db *gorm.DB, l *zap.Logger) (domain.Sequence, func()) {
	if cfg.Sequence.Backend != "redis" {
		return repo.NewSequenceRepo(db), func() {}
	}
	rs := sequence.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rs.Ping(pctx); err != nil {
		l.Fatal("redis ping", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	return rs, func() { _ = rs.Close() }
}

func mustImageStore(cfg *config.Config, l *zap.Logger) storage.ImageStore {
	if cfg.Upload.Backend == "minio" {
		m := cfg.Upload.Minio
		s, err := storage.NewMinioStore(m.Endpoint, m.AccessKey, m.SecretKey, m.Bucket, m.UseSSL)
		if err != nil {
			l.Fatal("minio init", zap.String("endpoint", m.Endpoint), zap.Error(err))
		}
		return s
	}
	s, err := storage.NewLocalStore(cfg.Upload.Dir)
	if err != nil {
		l.Fatal("upload dir", zap.String("dir", cfg.Upload.Dir), zap.Error(err))
	}
	return s
}
