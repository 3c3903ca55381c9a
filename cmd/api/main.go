// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelamos/gatekeeper/internal/access"
	"github.com/angelamos/gatekeeper/internal/account"
	"github.com/angelamos/gatekeeper/internal/admin"
	"github.com/angelamos/gatekeeper/internal/ban"
	"github.com/angelamos/gatekeeper/internal/catalog"
	"github.com/angelamos/gatekeeper/internal/config"
	"github.com/angelamos/gatekeeper/internal/core"
	"github.com/angelamos/gatekeeper/internal/directory"
	"github.com/angelamos/gatekeeper/internal/entitlement"
	"github.com/angelamos/gatekeeper/internal/health"
	"github.com/angelamos/gatekeeper/internal/metrics"
	"github.com/angelamos/gatekeeper/internal/middleware"
	"github.com/angelamos/gatekeeper/internal/reconcile"
	"github.com/angelamos/gatekeeper/internal/server"
	"github.com/angelamos/gatekeeper/internal/webhook"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	metrics.Init()

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	healthHandler := health.NewHandler(db, redis)

	var syncer directory.Syncer = directory.Nop{}
	if cfg.Directory.Enabled {
		ds, dsErr := directory.NewDiscordSyncer(cfg.Directory)
		if dsErr != nil {
			return dsErr
		}
		syncer = ds
		healthHandler.AddChecker("directory", ds)
		logger.Info("directory sync enabled", "guild_id", cfg.Directory.GuildID)
	} else {
		logger.Info("directory sync disabled")
	}

	locks := core.NewKeyedMutex()

	accountRepo := account.NewRepository(db.DB)
	entitlementRepo := entitlement.NewRepository(db.DB)
	catalogRepo := catalog.NewRepository(db.DB)

	accessSvc := access.NewService(accountRepo, entitlementRepo, syncer)

	drafts := catalog.NewRedisDraftStore(redis.Client, cfg.Webhook.DraftTTL)
	catalogSvc := catalog.NewService(catalogRepo, drafts)
	catalogHandler := catalog.NewHandler(catalogSvc)

	accountSvc := account.NewService(accountRepo, accessSvc)
	accountHandler := account.NewHandler(accountSvc)

	entitlementSvc := entitlement.NewService(
		entitlementRepo, accountRepo, catalogSvc, accessSvc, locks)
	entitlementHandler := entitlement.NewHandler(entitlementSvc)

	guard := webhook.NewRedisGuard(redis.Client, cfg.Webhook.EventRetention)
	webhookHandler := webhook.NewHandler(entitlementSvc, guard)

	banSvc := ban.NewService(accountRepo, accessSvc, locks)
	banHandler := ban.NewHandler(banSvc)

	sweeper := reconcile.NewSweeper(
		accountRepo, accessSvc, locks, cfg.Reconcile.Interval)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Sweeper:    sweeper,
		Resyncer:   accessSvc,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.SecurityHeaders)
	router.Use(middleware.Identity(accountSvc.RoleOf))
	router.Use(middleware.RoleTieredRateLimiter(
		redis.Client, middleware.DefaultRoleTiers))

	healthHandler.RegisterRoutes(router)
	router.Handle("/metrics", metrics.Handler())

	authenticator := middleware.ServiceToken(cfg.Admin.ServiceToken)

	router.Route("/v1", func(r chi.Router) {
		webhookHandler.RegisterRoutes(r)
		catalogHandler.RegisterRoutes(r)

		catalogHandler.RegisterAdminRoutes(r, authenticator)
		accountHandler.RegisterAdminRoutes(r, authenticator)
		entitlementHandler.RegisterAdminRoutes(r, authenticator)
		banHandler.RegisterAdminRoutes(r, authenticator)
		adminHandler.RegisterRoutes(r, authenticator)
	})

	// Sweep immediately at startup so roles that expired while the service
	// was down converge before traffic builds.
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go sweeper.Run(sweepCtx)

	if cfg.Directory.Enabled {
		go func() {
			if _, rsErr := accessSvc.ResyncAll(sweepCtx); rsErr != nil {
				logger.Error("startup directory resync failed", "error", rsErr)
			}
		}()
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
