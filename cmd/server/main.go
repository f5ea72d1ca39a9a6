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

	"github.com/Clark-Hu/movierank/internal/auth"
	"github.com/Clark-Hu/movierank/internal/config"
	httpserver "github.com/Clark-Hu/movierank/internal/http"
	"github.com/Clark-Hu/movierank/internal/logging"
	"github.com/Clark-Hu/movierank/internal/metrics"
	"github.com/Clark-Hu/movierank/internal/repository"
	"github.com/Clark-Hu/movierank/internal/service"
	"github.com/Clark-Hu/movierank/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	storeOpts := store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	}

	st, err := store.New(dbCtx, cfg.DBURL, storeOpts)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer st.Close()

	if err := st.Migrate(dbCtx); err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}

	m := metrics.New()
	m.ObservePool(st.Stats)
	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL)
	services := service.New(repository.New(st), service.Deps{
		Tokens:  tokens,
		Hasher:  auth.NewPasswordHasher(cfg.BcryptCost),
		IsAdmin: cfg.IsAdmin,
		Metrics: m,
		Logger:  logger,
	})
	server := httpserver.New(cfg, st, services, tokens, m, logger)

	logger.Info().Str("port", cfg.Port).Int("admins", len(cfg.AdminUsernames)).Msg("starting http server")

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("server error")
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
	logger.Info().Msg("server stopped")
}
