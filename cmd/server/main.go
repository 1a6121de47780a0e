package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"circulyte-backend/internal/config"
	"circulyte-backend/internal/logging"
	"circulyte-backend/internal/server"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("[FATAL] logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	st, err := server.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store unavailable", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}

	broker, err := server.OpenBroker(cfg, logger)
	if err != nil {
		logger.Fatal("broker unavailable", zap.Error(err))
	}

	app := server.NewApp(server.Deps{Config: cfg, Store: st, Broker: broker, Logger: logger})

	go func() {
		logger.Info("server listening", zap.String("port", cfg.HTTPPort), zap.String("store", cfg.StoreDriver))
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := broker.Close(); err != nil {
		logger.Warn("broker close", zap.Error(err))
	}

	closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := st.Close(closeCtx); err != nil {
		logger.Warn("store close", zap.Error(err))
	}
}
