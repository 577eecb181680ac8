package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

const (
	shutdownTimeout    = 30 * time.Second
	sessionPurgePeriod = time.Hour
)

func main() {
	cfg, logger := cli.LoadConfig((*config.Config).Validate)
	logger.Info("Starting fintrack", log.FieldOperation, log.OpStartup, "env", cfg.AppEnv, "port", cfg.Port)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	authSvc := services.NewAuthService(repo, cfg.SessionTTL, cfg.RememberTTL)

	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, ledger events will not be published", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("Publishing ledger events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}
	ledger := services.NewLedgerService(repo, publisher)

	srv, err := apphttp.NewServer(cfg, authSvc, ledger, repo, logger)
	if err != nil {
		logger.Error("Failed to create HTTP server", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return purgeSessions(gctx, authSvc, logger)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

// purgeSessions removes expired sessions at startup and then hourly.
func purgeSessions(ctx context.Context, authSvc *services.AuthService, logger *log.Logger) error {
	ticker := time.NewTicker(sessionPurgePeriod)
	defer ticker.Stop()
	for {
		if _, err := authSvc.PurgeExpiredSessions(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("Session purge failed", log.FieldError, err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
