// AngelaMos | 2026
// serve.go

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/membership-api/internal/admin"
	"github.com/carterperez-dev/templates/membership-api/internal/auth"
	"github.com/carterperez-dev/templates/membership-api/internal/config"
	"github.com/carterperez-dev/templates/membership-api/internal/core"
	"github.com/carterperez-dev/templates/membership-api/internal/eid"
	"github.com/carterperez-dev/templates/membership-api/internal/health"
	"github.com/carterperez-dev/templates/membership-api/internal/middleware"
	"github.com/carterperez-dev/templates/membership-api/internal/property"
	"github.com/carterperez-dev/templates/membership-api/internal/role"
	"github.com/carterperez-dev/templates/membership-api/internal/server"
	"github.com/carterperez-dev/templates/membership-api/internal/user"
)

const (
	drainDelay          = 5 * time.Second
	housekeepingEvery   = time.Hour
	credentialRateLimit = 10
	cardRenderRateLimit = 20
	cardVerifyRateLimit = 30
)

func serveCommand(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(
		cmd.Context(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return err
	}

	return run(ctx, cfg)
}

//nolint:funlen // bootstrap code is inherently verbose
func run(ctx context.Context, cfg *config.Config) error {
	logger := setupLogger(cfg.Log, cfg.IsDevelopment())
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

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoSchema {
		if err := ensureSchema(ctx, db.DB); err != nil {
			return err
		}
		logger.Info("schema ensured")
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("token manager initialized",
		"algorithm", "HS256",
		"access_ttl", cfg.JWT.AccessTokenExpire,
	)

	permissions := role.DefaultTable()

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, permissions)
	userHandler := user.NewHandler(userSvc)

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(
		authRepo,
		jwtManager,
		userSvc,
		auth.NewRedisBlacklist(redis.Client),
	)
	authHandler := auth.NewHandler(authSvc)

	cardSvc := eid.NewService(eid.NewRepository(db.DB), eid.NewRenderer(cfg.Card))
	cardHandler := eid.NewHandler(cardSvc, userSvc)

	propertySvc := property.NewService(property.NewRepository(db.DB))
	propertyHandler := property.NewHandler(propertySvc, userSvc)

	roleHandler := role.NewHandler(permissions)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		Members:    userSvc,
		Cards:      cardSvc,
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer)
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.Limit(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			BypassFunc: middleware.BypassPaths("/healthz", "/livez", "/readyz"),
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	limiter := func(
		prefix string,
		limit redis_rate.Limit,
		key func(*http.Request) string,
	) func(http.Handler) http.Handler {
		return middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit:   limit,
			KeyFunc: func(r *http.Request) string { return prefix + key(r) },
		}).Handler
	}

	routes{
		health:        healthHandler,
		auth:          authHandler,
		users:         userHandler,
		roles:         roleHandler,
		cards:         cardHandler,
		properties:    propertyHandler,
		admin:         adminHandler,
		permissions:   permissions,
		authenticator: middleware.Authenticator(jwtManager, authSvc),
		credentialLimiter: limiter("auth:",
			middleware.Limit(credentialRateLimit, credentialRateLimit, time.Minute),
			middleware.KeyByIP),
		cardLimits: eid.Limits{
			Render: limiter("eid:",
				middleware.Limit(cardRenderRateLimit, cardRenderRateLimit/2, time.Hour),
				middleware.KeyByUser),
			Verify: limiter("verify:",
				middleware.Limit(cardVerifyRateLimit, cardVerifyRateLimit, time.Minute),
				middleware.KeyByIP),
		},
	}.mount(router)

	go auth.RunHousekeeping(ctx, authRepo, housekeepingEvery, logger)

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

func setupLogger(cfg config.LogConfig, withSource bool) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level, AddSource: withSource}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
