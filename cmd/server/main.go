package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/danisetya/transfer-service/internal/notify"
	"github.com/danisetya/transfer-service/internal/seed"
	"github.com/danisetya/transfer-service/internal/server"
	"github.com/danisetya/transfer-service/internal/service"
	"github.com/danisetya/transfer-service/internal/store/postgres"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		return errors.New("DB_URL is required")
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, dbURL)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("connected to postgres")

	if err := postgres.Initialize(ctx, db); err != nil {
		return err
	}

	accounts := postgres.NewAccountStore(db)
	ledger := postgres.NewLedgerStore(db)
	transfers := postgres.NewTransferLog(db)
	uow := postgres.NewUnitOfWork(db)

	if err := seed.NewSeeder(accounts, ledger, logger).Run(ctx); err != nil {
		return err
	}

	broker := notify.NewBroker(logger)
	defer broker.Close()

	svc := service.NewTransferService(accounts, ledger, transfers, uow, broker, logger)
	handler := server.NewHandler(svc, logger)

	// Idempotency caching is optional; without Redis the batch endpoint
	// still works, just without duplicate-submission protection.
	var idempotency func(http.Handler) http.Handler
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, idempotency caching disabled", zap.Error(err))
		} else {
			logger.Info("connected to redis")
			idempotency = server.Idempotency(rdb, logger)
		}
		defer rdb.Close()
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: server.NewRouter(handler, broker, idempotency),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
