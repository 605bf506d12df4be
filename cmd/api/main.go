package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-bookstore-reservations/internal/config"
	"github.com/ariefcatur/go-bookstore-reservations/internal/httpx"
	"github.com/ariefcatur/go-bookstore-reservations/internal/logging"
	"github.com/ariefcatur/go-bookstore-reservations/internal/reservations"
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
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.ServiceName)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := wiring.Store(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer closeStore()

	notifier, closeNotifier, err := wiring.Notifier(ctx, cfg, cfg.Notifier, logger)
	if err != nil {
		logger.Fatal("notifier", zap.String("notifier", cfg.Notifier), zap.Error(err))
	}
	defer closeNotifier()

	svc := reservations.NewService(store, notifier,
		reservations.WithLogger(logger),
		reservations.WithStrictBooking(cfg.StrictBooking),
	)

	router := httpx.NewRouter(logger)
	rh := &httpx.ReservationsHandler{
		Service: svc,
		Timeout: cfg.RequestTimeout,
		Log:     logger,
	}
	rh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("HTTP listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("store", cfg.StoreBackend),
			zap.String("notifier", cfg.Notifier),
			zap.Bool("strict_booking", cfg.StrictBooking),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}
