// Command esc-server starts the ranking HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/esc-ranker/internal/config"
	"github.com/and161185/esc-ranker/internal/migrate"
	"github.com/and161185/esc-ranker/internal/obs"
	"github.com/and161185/esc-ranker/internal/repository/postgres"
	"github.com/and161185/esc-ranker/internal/server/httpapi"
	"github.com/and161185/esc-ranker/internal/service"
	"github.com/and161185/esc-ranker/internal/token"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations, and starts the HTTP server.
// Configuration violations are fatal: the process refuses to start rather
// than run insecurely.
func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
	)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuration", zap.Error(err))
	}

	issuer, err := token.NewIssuer([]byte(cfg.SigningKey), cfg.TokenTTL, cfg.TokenIssuer, cfg.TokenAudience)
	if err != nil {
		logger.Fatal("token issuer", zap.Error(err))
	}

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DatabaseDSN); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres pool", zap.Error(err))
	}
	defer db.Close()

	// Repositories and services
	userRepo := postgres.NewUserRepo(db)
	rankingRepo := postgres.NewRankingRepo(db)

	authSvc := service.NewAuthService(userRepo, issuer)
	rankingSvc := service.NewRankingService(rankingRepo)

	obs.Init()
	api := httpapi.New(authSvc, rankingSvc, issuer, logger, db.Ping)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			_ = srv.Close()
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
