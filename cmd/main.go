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

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bakeshop/internal/backend"
	"bakeshop/internal/config"
	httpapi "bakeshop/internal/http"
	"bakeshop/internal/logging"
	"bakeshop/internal/repository"
	"bakeshop/internal/service"

	_ "bakeshop/docs"
)

// @title Bakeshop storefront API
// @version 1.0
// @BasePath /api/v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("storefront stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := backend.New(cfg.BackendURL,
		backend.WithLogger(logger),
		backend.WithHTTPClient(backend.DefaultHTTPClient(cfg.RequestTimeout)),
	)
	if err != nil {
		return err
	}
	hosted, err := service.NewHostedRedirect(cfg.HostedCheckoutURL)
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// Hand-offs older than this are treated as lost.
	stale := service.WithStaleAfter(3 * cfg.RequestTimeout)

	gin.SetMode(cfg.GinMode)
	srv, err := httpapi.NewServer(httpapi.Services{
		Reservation: service.NewReservationService(client, store, logger, stale),
		Checkout:    service.NewCheckoutService(client, hosted, store, logger, stale),
		Completion:  service.NewCompletionService(client, store, logger, stale),
		Account:     service.NewAccountService(client, store, logger, stale),
		Auth:        service.NewAuthService(client, store, logger),
	}, logger, httpapi.WithSecureCookies(cfg.CookieSecure))
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: cfg.RequestTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", httpServer.Addr), zap.String("backend", cfg.BackendURL))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStore builds the visit store. The in-memory store sweeps expired
// visits until ctx ends.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.VisitStore, func(), error) {
	switch cfg.Store {
	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		logger.Info("visit store", zap.String("kind", "redis"), zap.String("addr", cfg.RedisAddr))
		return repository.NewRedisStore(rdb, cfg.VisitTTL), func() { _ = rdb.Close() }, nil
	default:
		store := repository.NewMemoryStore(cfg.VisitTTL)
		go store.RunGC(ctx, time.Minute)
		logger.Info("visit store", zap.String("kind", "memory"))
		return store, func() {}, nil
	}
}
