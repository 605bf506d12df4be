package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-bookstore-reservations/internal/config"
	kafkax "github.com/ariefcatur/go-bookstore-reservations/internal/kafka"
	"github.com/ariefcatur/go-bookstore-reservations/internal/logging"
	"github.com/ariefcatur/go-bookstore-reservations/internal/redisx"
	"github.com/ariefcatur/go-bookstore-reservations/internal/relay"
	"github.com/ariefcatur/go-bookstore-reservations/internal/wiring"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.ServiceName+"-relay")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	transport, closeTransport, err := wiring.Notifier(ctx, cfg, cfg.RelayTransport, logger)
	if err != nil {
		logger.Fatal("transport", zap.String("transport", cfg.RelayTransport), zap.Error(err))
	}
	defer closeTransport()

	svc := &relay.Service{
		Redis:       rdb,
		Transport:   transport,
		Log:         logger,
		ServiceName: cfg.ServiceName + "-relay",
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.RelayGroup, cfg.KafkaNotifyTopic, cfg.RelayWorkers, logger)

	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info("relay consumer started",
			zap.String("group", cfg.RelayGroup),
			zap.String("topic", cfg.KafkaNotifyTopic),
			zap.Int("workers", cfg.RelayWorkers),
			zap.String("transport", cfg.RelayTransport),
		)
		if err := cons.Start(ctx, svc.HandleNotificationRequested); err != nil {
			logger.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logger.Info("shutting down consumer")
	cancel()
	<-done
}
