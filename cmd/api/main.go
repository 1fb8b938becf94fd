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

	"github.com/maajod/maajod-backend/api/routes"
	"github.com/maajod/maajod-backend/internal/access"
	"github.com/maajod/maajod-backend/internal/auth"
	"github.com/maajod/maajod-backend/internal/memberships"
	"github.com/maajod/maajod-backend/internal/stores"
	"github.com/maajod/maajod-backend/internal/summary"
	"github.com/maajod/maajod-backend/internal/transactions"
	"github.com/maajod/maajod-backend/internal/users"
	"github.com/maajod/maajod-backend/pkg/config"
	"github.com/maajod/maajod-backend/pkg/db"
	"github.com/maajod/maajod-backend/pkg/logger"
	"github.com/maajod/maajod-backend/pkg/metrics"
	"github.com/maajod/maajod-backend/pkg/migrate"
	"github.com/maajod/maajod-backend/pkg/redis"
)

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
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.Features, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	usersRepo := users.NewRepository(dbClient.DB())
	membershipsRepo := memberships.NewRepository(dbClient.DB())
	storesRepo := stores.NewRepository(dbClient.DB())
	txRepo := transactions.NewRepository(dbClient.DB())

	resolver, err := access.NewResolver(membershipsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create access resolver", err)
		os.Exit(1)
	}

	storeService, err := stores.NewService(storesRepo, membershipsRepo, usersRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create store service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		StoresService:  storeService,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	summaryCache, err := summary.NewCache(redisClient, cfg.Summary.CacheTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create summary cache", err)
		os.Exit(1)
	}

	txService, err := transactions.NewService(txRepo, summaryCache)
	if err != nil {
		logg.Error(context.Background(), "failed to create transaction service", err)
		os.Exit(1)
	}

	summaryService, err := summary.NewService(txRepo, summaryCache)
	if err != nil {
		logg.Error(context.Background(), "failed to create summary service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	handler := routes.NewRouter(routes.Dependencies{
		Config:       cfg,
		Logger:       logg,
		DBPinger:     dbClient,
		RedisPinger:  redisClient,
		Resolver:     resolver,
		AuthService:  authService,
		StoreService: storeService,
		TxService:    txService,
		Summaries:    summaryService,
		Registry:     registry,
		HTTPMetrics:  httpMetrics,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	logg.Info(ctx, "api server stopped")
}
