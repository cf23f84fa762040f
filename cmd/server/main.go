package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/d60-Lab/socialhub/config"
	"github.com/d60-Lab/socialhub/internal/api"
	"github.com/d60-Lab/socialhub/internal/api/handler"
	"github.com/d60-Lab/socialhub/internal/cache"
	"github.com/d60-Lab/socialhub/internal/chat"
	"github.com/d60-Lab/socialhub/internal/repository"
	"github.com/d60-Lab/socialhub/internal/service"
	"github.com/d60-Lab/socialhub/pkg/auth"
	"github.com/d60-Lab/socialhub/pkg/database"
	"github.com/d60-Lab/socialhub/pkg/events"
	"github.com/d60-Lab/socialhub/pkg/logger"
	"github.com/d60-Lab/socialhub/pkg/storage"
	"github.com/d60-Lab/socialhub/pkg/tracing"
)

// @title socialhub API
// @version 2.0
// @description 好友关系、帖子评论、点赞与聊天
// @BasePath /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// .env 可选
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	gin.SetMode(cfg.Server.Mode)

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)
	store := repository.NewStore(db)

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, author cache degrades to database", zap.Error(err))
		}
	} else {
		logger.Warn("redis not configured, chat disabled")
	}

	var objects storage.ObjectStore
	if cfg.Storage.Enabled {
		ms, err := storage.NewMinioStore(cfg.Storage)
		if err != nil {
			return err
		}
		if err := ms.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("ensure bucket: %w", err)
		}
		objects = ms
	}

	var sink events.Sink = events.LogSink{}
	if cfg.Kafka.Enabled {
		sink = events.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}
	defer sink.Close()

	authors := cache.NewAuthorCache(store.Users, rdb, cfg.Redis.CacheTTL)
	tokens := auth.NewJWTProvider(cfg.JWT.Secret, cfg.JWT.TTL)
	posts := service.NewPostService(store, authors, cfg.Feed.DefaultPageSize)
	h := handler.NewHandler(
		service.NewUserService(store, authors, objects),
		service.NewFriendshipService(store),
		posts,
		service.NewLikeService(store, posts),
		chat.NewHub(rdb),
		tokens,
		cfg.Storage.MaxBytes,
	)

	stopRelay := func(context.Context) error { return nil }
	if cfg.Outbox.Enabled {
		relay := service.NewOutboxRelay(store.Outbox, sink, cfg.Outbox.Workers, cfg.Outbox.BatchSize, cfg.Outbox.PollInterval, cfg.Outbox.Lease)
		stopRelay = relay.Start()
	}

	health := func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.NewRouter(cfg, h, tokens, health),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown", zap.Error(err))
		}
		if err := stopRelay(shutdownCtx); err != nil {
			logger.Error("outbox relay shutdown", zap.Error(err))
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("tracing shutdown", zap.Error(err))
		}
		return nil
	})
	return g.Wait()
}
