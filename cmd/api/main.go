package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hbnb-dev/hbnb-backend/api/controllers"
	"github.com/hbnb-dev/hbnb-backend/api/routes"
	"github.com/hbnb-dev/hbnb-backend/internal/auth"
	"github.com/hbnb-dev/hbnb-backend/internal/facade"
	"github.com/hbnb-dev/hbnb-backend/pkg/auth/session"
	"github.com/hbnb-dev/hbnb-backend/pkg/config"
	"github.com/hbnb-dev/hbnb-backend/pkg/db"
	"github.com/hbnb-dev/hbnb-backend/pkg/env"
	"github.com/hbnb-dev/hbnb-backend/pkg/logger"
	"github.com/hbnb-dev/hbnb-backend/pkg/metrics"
	"github.com/hbnb-dev/hbnb-backend/pkg/migrate"
	"github.com/hbnb-dev/hbnb-backend/pkg/redis"
	"github.com/hbnb-dev/hbnb-backend/pkg/security"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Fields:      map[string]any{"env": cfg.App.Env},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	// Redis is optional. The interfaces below stay untyped nil without it so
	// the router and auth service can tell "absent" from "present".
	var (
		redisPinger    controllers.Pinger
		sessionChecker session.AccessSessionChecker
		authParams     = auth.ServiceParams{
			DB:        dbClient,
			Hasher:    security.NewArgon2Hasher(cfg.Password),
			JWTConfig: cfg.JWT,
			Logger:    logg,
		}
	)
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()

		sessionManager, err := session.NewManager(redisClient, cfg.JWT)
		if err != nil {
			logg.Error(ctx, "failed to create session manager", err)
			os.Exit(1)
		}
		redisPinger = redisClient
		sessionChecker = sessionManager
		authParams.SessionManager = sessionManager
	} else {
		logg.Warn(ctx, "redis not configured, sessions cannot be revoked")
	}

	authService, err := auth.NewService(authParams)
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app, err := facade.New(facade.Params{
		DB:      dbClient,
		Auth:    authService,
		Logger:  logg,
		Metrics: metrics.NewUseCaseMetrics(registry),
	})
	if err != nil {
		logg.Error(ctx, "failed to create facade", err)
		os.Exit(1)
	}

	if cfg.Admin.Enabled() {
		if _, err := authService.BootstrapAdmin(ctx, cfg.Admin); err != nil {
			logg.Error(ctx, "failed to bootstrap admin", err)
			os.Exit(1)
		}
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx = logg.WithFields(ctx, map[string]any{
		"addr":  addr,
		"redis": cfg.Redis.Enabled(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisPinger, sessionChecker, authService, app, registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}
}
