package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/auctionsync/internal/config"
	"github.com/MrSnakeDoc/auctionsync/internal/devbackend"
	"github.com/MrSnakeDoc/auctionsync/internal/httpserver"
	"github.com/MrSnakeDoc/auctionsync/internal/httpserver/deps"
	"github.com/MrSnakeDoc/auctionsync/internal/httpserver/mw"
	"github.com/MrSnakeDoc/auctionsync/internal/logger"
	"github.com/MrSnakeDoc/auctionsync/internal/redis"
	"github.com/MrSnakeDoc/auctionsync/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/auctionsync/internal/store/redis"
	"github.com/MrSnakeDoc/auctionsync/internal/version"
)

// DevBackend serves the stand-in auction site.
type DevBackend struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
}

func NewDevBackend() *DevBackend {
	cfg := config.LoadDev()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	var (
		store       devbackend.Store
		redisClient *goredis.Client
	)
	switch cfg.DevStore {
	case "redis":
		// Fail fast if Redis is unavailable
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.Connect(context.Background(), redis.OptionsFromConfig(cfg), loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		loggerClient.Info("Redis initialized successfully")
		redisClient = client
		store = redisstore.NewStore(client)
	default:
		loggerClient.Info("using in-memory store, data is lost on restart")
		store = memory.NewStore()
	}

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err := devbackend.Seed(seedCtx, store)
	cancel()
	if err != nil {
		loggerClient.Errorf("Failed to seed listings: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("listings seeded", logger.Int("count", len(devbackend.SeedListings)))

	limit := mw.RateLimitConfig{
		Burst:        cfg.EventBurst,
		RefillPerMin: cfg.EventRefillPerMin,
		TrustProxy:   cfg.TrustProxy,
	}
	handler := devbackend.New(devbackend.Options{
		Store:       store,
		DefaultUser: cfg.DevUser,
		Logger:      loggerClient.Named("devbackend"),
		RateLimit:   limit,
	})

	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Build:        version.Get(),
		Service:      "devbackend",
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		Ready:        store.Ping,
	}

	return &DevBackend{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.NewDevBackend(cfg.DevListenPort, requestTimeout, loggerClient, d, handler.Mount),
		redisClient: redisClient,
	}
}

func (a *DevBackend) Run() error {
	a.logger.Infof("🚀 Starting auctionsync dev backend %s on %s (store=%s)",
		version.Version, a.cfg.DevListenPort, a.cfg.DevStore)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ dev backend stopped cleanly")
	_ = a.logger.Sync()
	return nil
}
