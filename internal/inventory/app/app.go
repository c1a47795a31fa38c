package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	buskafka "github.com/shestoi/minimarket/internal/bus/kafka"
	httpapi "github.com/shestoi/minimarket/internal/inventory/api/http"
	"github.com/shestoi/minimarket/internal/inventory/config"
	"github.com/shestoi/minimarket/internal/inventory/repository/memory"
	"github.com/shestoi/minimarket/internal/inventory/service"
	platformkafka "github.com/shestoi/minimarket/platform/kafka"
	platformlogging "github.com/shestoi/minimarket/platform/logging"
	platformshutdown "github.com/shestoi/minimarket/platform/shutdown"
)

// App содержит все зависимости для запуска и корректного shutdown Inventory Service
type App struct {
	logger      *zap.Logger
	httpServer  *http.Server
	consumer    *buskafka.Consumer
	shutdownMgr *platformshutdown.Manager
	consumerCtx context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// Build создаёт и настраивает все зависимости Inventory Service
func Build(cfg config.Config) (*App, error) {
	const op = "app.Build"

	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "inventory",
		Env:         string(cfg.AppEnv),
		Level:       os.Getenv("LOG_LEVEL"),
		Format:      os.Getenv("LOG_FORMAT"),
	})
	if err != nil {
		return nil, err
	}

	logger = logger.With(zap.String("op", op))
	logger.Info("Building Inventory service", zap.String("http_addr", cfg.HTTPAddr))

	kafkaCfg := platformkafka.DefaultConfig()
	if err := platformkafka.LoadEnv(&kafkaCfg); err != nil {
		return nil, fmt.Errorf("load kafka config: %w", err)
	}
	backoffBase, err := time.ParseDuration(kafkaCfg.RetryBackoffBase)
	if err != nil {
		return nil, fmt.Errorf("invalid KAFKA_RETRY_BACKOFF_BASE: %w", err)
	}

	repo := memory.NewMemoryRepository()
	inventoryService := service.NewInventoryService(logger, repo)

	// Consumer платёжных исходов: одна группа на обе темы,
	// реплики inventory конкурируют за сообщения
	dlqPublisher := buskafka.NewDLQPublisher(logger, kafkaCfg.Brokers, cfg.ConsumerGroup+".dlq")
	consumer := buskafka.NewConsumer(logger, buskafka.ConsumerConfig{
		Brokers:     kafkaCfg.Brokers,
		GroupID:     cfg.ConsumerGroup,
		Topics:      []string{platformkafka.TopicPaymentSuccess, platformkafka.TopicPaymentFailure},
		MaxAttempts: kafkaCfg.RetryMaxAttempts,
		BackoffBase: backoffBase,
	}, inventoryService, dlqPublisher)

	handler := httpapi.NewHandler(logger, inventoryService)
	readiness := func() bool { return true }
	router := httpapi.NewRouter(handler, readiness)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	consumerCtx, cancel := context.WithCancel(context.Background())

	shutdownMgr := platformshutdown.New(cfg.ShutdownTimeout, logger)
	shutdownMgr.Add("dlq_publisher", func(ctx context.Context) error {
		return dlqPublisher.Close()
	})
	shutdownMgr.Add("kafka_consumer", func(ctx context.Context) error {
		cancel()
		return consumer.Close()
	})
	shutdownMgr.Add("http_server", platformshutdown.ShutdownHTTPServer(httpServer))

	return &App{
		logger:      logger,
		httpServer:  httpServer,
		consumer:    consumer,
		shutdownMgr: shutdownMgr,
		consumerCtx: consumerCtx,
		cancel:      cancel,
	}, nil
}

// Run запускает сервис и блокируется до получения сигнала shutdown
func (a *App) Run() error {
	defer platformlogging.Sync(a.logger)

	a.logger.Info("Starting Inventory service", zap.String("addr", a.httpServer.Addr))

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.consumer.Start(a.consumerCtx); err != nil {
			a.logger.Error("consumer error", zap.Error(err))
		}
	}()

	a.shutdownMgr.Wait()

	a.wg.Wait()
	a.logger.Info("Inventory service stopped")
	return nil
}
