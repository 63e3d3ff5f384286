package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"orderenricher/internal/commons"
	"orderenricher/internal/infrastructure/logger"
	"orderenricher/internal/infrastructure/metrics"
	"orderenricher/internal/infrastructure/mysql"
	"orderenricher/internal/order"
	"orderenricher/internal/server"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "internal/config/config.yaml"
	}

	cfg, err := commons.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	configErr := cfg.Validate()
	if configErr != nil {
		zapLogger.Error("invalid configuration, webhooks will be rejected", zap.Error(configErr))
	}

	var db *sql.DB
	if cfg.Database.Enabled {
		db, err = mysql.NewConnection(context.Background(), cfg.Database)
		if err != nil {
			zapLogger.Fatal("connecting to database", zap.Error(err))
		}
		defer db.Close()
		zapLogger.Info("database connected")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	orderModule := order.NewModule(cfg, configErr, db, m, zapLogger)

	router := server.NewRouter(orderModule.Webhook, orderModule.Events, metrics.Handler(reg), zapLogger)

	srv := server.New(cfg.Server, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
