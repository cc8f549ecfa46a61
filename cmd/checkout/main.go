// Package main запускает HTTP-сервер сервиса оформления заказа.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/checkout-system/internal/catalog"
	"github.com/mmeshcher/checkout-system/internal/config"
	"github.com/mmeshcher/checkout-system/internal/handler"
	"github.com/mmeshcher/checkout-system/internal/middleware"
	"github.com/mmeshcher/checkout-system/internal/model"
	"github.com/mmeshcher/checkout-system/internal/persistence"
	"github.com/mmeshcher/checkout-system/internal/transaction"
	"github.com/mmeshcher/checkout-system/internal/wizard"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	// Черновики живут в Redis, в Postgres или только в памяти,
	// в зависимости от того, что сконфигурировано.
	var storage persistence.Storage
	switch {
	case cfg.RedisAddress != "":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
		if err := client.Ping(context.Background()).Err(); err != nil {
			sugar.Fatalw("redis initialization error", "error", err.Error())
		}
		defer client.Close()
		storage = persistence.NewRedisStorage(client, cfg.SessionTTL)
	case cfg.DatabaseURI != "":
		pg, err := persistence.NewPostgresStorage(cfg.DatabaseURI)
		if err != nil {
			sugar.Fatalw("database initialization error", "error", err.Error())
		}
		defer pg.Close()
		storage = pg
	default:
		sugar.Warn("draft storage is not configured, drafts are kept in memory only")
	}

	var txClient *transaction.Client
	if cfg.TransactionAddress != "" {
		txClient = transaction.NewClient(cfg.TransactionAddress)
	}

	catalogClient := catalog.NewClient(cfg.CatalogAddress)

	manager := wizard.NewManager(storage, txClient, logger, cfg.SessionTTL)
	manager.SetOnSuccess(func(sessionID string, product model.Product) {
		sugar.Infow("checkout completed", "session", sessionID, "product", product.ID)
	})

	sessionMiddleware := middleware.NewSessionMiddleware(cfg.SessionSecret)
	h := handler.NewHandler(manager, catalogClient, logger, sessionMiddleware)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск фоновой очистки брошенных сессий
	manager.StartSweeper(ctx)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting checkout server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
