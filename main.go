package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"restopos-order-service/internal/config"
	"restopos-order-service/internal/events"
	httpapi "restopos-order-service/internal/http"
	"restopos-order-service/internal/logger"
	"restopos-order-service/internal/queue"
	"restopos-order-service/internal/tenant"
	"restopos-order-service/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()
	registry, err := tenant.NewRegistry(ctx, cfg.DatabaseURL, cfg.TenantDatabaseURLs, log)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer registry.Close()
	log.Info("tenants connected", zap.Strings("tenants", registry.Names()))

	var queueClient *queue.Client
	if cfg.RabbitMQURL != "" {
		queueClient, err = queue.New(cfg.RabbitMQURL, log)
		if err != nil {
			if cfg.Env == "production" {
				log.Fatal("rabbitmq connection failed", zap.Error(err))
			}
			log.Warn("rabbitmq connection failed; continuing without events", zap.Error(err))
		} else {
			log.Info("rabbitmq enabled", zap.String("exchange", queue.Exchange))
			defer queueClient.Close()
			if err := queueClient.EnsureQueue("restopos.order-events", "order.#"); err != nil {
				log.Warn("order event queue binding failed", zap.Error(err))
			}
		}
	} else {
		log.Info("event publishing disabled (RABBITMQ_URL is empty)")
	}

	hub := ws.NewHub(log, cfg.WSSendBuffer, cfg.WSPingInterval)

	var sinks []events.Sink
	if queueClient != nil {
		sinks = append(sinks, queueClient)
	}
	sinks = append(sinks, hub)
	fanout := events.NewFanout(sinks...)

	apiServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(registry, log, cfg, fanout, hub),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info("order api ready", zap.String("base", "/api"))
		log.Info("order ws ready", zap.String("base", "/ws/orders"))
		log.Info("order service listening", zap.String("addr", cfg.HTTPAddr))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := apiServer.Shutdown(ctxShutdown); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
}
