package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hidalgo-logistics/tracking/internal/audit"
	"github.com/hidalgo-logistics/tracking/internal/config"
	"github.com/hidalgo-logistics/tracking/internal/engine"
	"github.com/hidalgo-logistics/tracking/internal/gateway"
	"github.com/hidalgo-logistics/tracking/internal/idgen"
	"github.com/hidalgo-logistics/tracking/internal/kafka"
	"github.com/hidalgo-logistics/tracking/internal/logger"
	"github.com/hidalgo-logistics/tracking/internal/ratelimit"
	"github.com/hidalgo-logistics/tracking/internal/server"
	"github.com/hidalgo-logistics/tracking/internal/storage"
)

func main() {
	log := logger.New()
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()

	persister, err := storage.NewFilePersister(cfg.DataDir)
	if err != nil {
		log.Fatal("Failed to initialize data directory", zap.Error(err))
	}

	ids := idgen.NewUUID()

	store := storage.NewStore(ids, log)
	if err := store.Restore(persister); err != nil {
		log.Fatal("Failed to restore shipments", zap.Error(err))
	}

	users := storage.NewUserDirectory(log)
	if err := users.Restore(persister); err != nil {
		log.Fatal("Failed to restore users", zap.Error(err))
	}

	auditLog := storage.NewAuditLog(ids, log)
	if err := auditLog.Restore(persister); err != nil {
		log.Fatal("Failed to restore audit log", zap.Error(err))
	}

	var producer kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewWriterProducer(cfg.KafkaBrokers, cfg.KafkaTopic, log)
	} else {
		log.Info("No Kafka brokers configured, audit entries go to the console")
		producer = kafka.NewConsoleProducer(log)
	}

	publisher := audit.NewPublisher(producer, cfg.AuditWorkers, 10, 2*time.Second, log)
	publisher.Start(ctx)
	auditLog.SetSink(publisher)

	eng := engine.New(store, users, log)
	gw := gateway.New(ratelimit.NewDefault(), store, auditLog, log)
	srv := server.New(gw, eng, store, users, auditLog, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, cfg.HTTPPort)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	publisher.Shutdown(shutdownCtx)
	if err := producer.Close(); err != nil {
		log.Error("Failed to close producer", zap.Error(err))
	}

	log.Info("Server gracefully stopped")
}
