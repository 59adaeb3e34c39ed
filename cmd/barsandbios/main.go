package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"barsandbios/internal/auth"
	"barsandbios/internal/config"
	"barsandbios/internal/logging"
	"barsandbios/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(logging.Config{}).Fatal(err, "failed to load configuration")
	}

	logger := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	logging.SetGlobalLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal(err, "failed to open store")
	}
	defer closeStore()

	tokens, err := auth.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	if err != nil {
		logger.Fatal(err, "failed to configure tokens")
	}

	app := newApplication(cfg, st, tokens, logger)

	if cfg.Store.SeedDemoData && !cfg.IsProduction() {
		if err := bootstrapDemoData(ctx, st, app, logger.Component("bootstrap")); err != nil {
			logger.Fatal(err, "failed to seed demo data")
		}
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           newHTTPHandler(cfg, app, st, tokens, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverLog := logger.Component("server")
	errCh := make(chan error, 1)
	go func() {
		serverLog.Info().
			Str("addr", srv.Addr).
			Str("env", cfg.Env).
			Str("store", cfg.Store.Driver).
			Msg("API server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal(err, "server error")
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, "graceful shutdown failed")
		return
	}
	logger.Info("server stopped")
}

func openStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (backend, func(), error) {
	if cfg.Store.Driver == config.DriverMemory {
		logger.Info("using in-memory store")
		return store.NewMemory(), func() {}, nil
	}

	db, err := openDatabase(ctx, cfg.Database.URL, logger.Component("database"))
	if err != nil {
		return nil, nil, err
	}
	return store.New(db), func() { _ = db.Close() }, nil
}
