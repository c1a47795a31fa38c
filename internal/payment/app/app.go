package app

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	buskafka "github.com/shestoi/minimarket/internal/bus/kafka"
	"github.com/shestoi/minimarket/internal/payment/config"
	"github.com/shestoi/minimarket/internal/payment/repository/memory"
	"github.com/shestoi/minimarket/internal/payment/service"
	platformkafka "github.com/shestoi/minimarket/platform/kafka"
	platformlogging "github.com/shestoi/minimarket/platform/logging"
	platformshutdown "github.com/shestoi/minimarket/platform/shutdown"
)

// App содержит все зависимости для запуска и корректного shutdown Payment Service.
// HTTP сервера здесь нет: сервис читает order.created и публикует исходы.
type App struct {
	logger      *zap.Logger
	consumer    *buskafka.Consumer
	shutdownMgr *platformshutdown.Manager
	consumerCtx context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// Build создаёт и настраивает все зависимости Payment Service
func Build(cfg config.Config) (*App, error) {
	const op = "app.Build"

	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "payment",
		Env:         string(cfg.AppEnv),
		Level:       os.Getenv("LOG_LEVEL"),
		Format:      os.Getenv("LOG_FORMAT"),
	})
	if err != nil {
		return nil, err
	}

	logger = logger.With(zap.String("op", op))
	logger.Info("Building Payment service")

	kafkaCfg := platformkafka.DefaultConfig()
	if err := platformkafka.LoadEnv(&kafkaCfg); err != nil {
		return nil, fmt.Errorf("load kafka config: %w", err)
	}
	backoffBase, err := time.ParseDuration(kafkaCfg.RetryBackoffBase)
	if err != nil {
		return nil, fmt.Errorf("invalid KAFKA_RETRY_BACKOFF_BASE: %w", err)
	}

	repo := memory.NewMemoryRepository()
	publisher := buskafka.NewPublisher(logger, kafkaCfg.Brokers, kafkaCfg.RetryMaxAttempts, backoffBase)
	paymentService := service.NewPaymentService(logger, repo, publisher)

	dlqPublisher := buskafka.NewDLQPublisher(logger, kafkaCfg.Brokers, cfg.ConsumerGroup+".dlq")
	consumer := buskafka.NewConsumer(logger, buskafka.ConsumerConfig{
		Brokers:     kafkaCfg.Brokers,
		GroupID:     cfg.ConsumerGroup,
		Topics:      []string{platformkafka.TopicOrderCreated},
		MaxAttempts: kafkaCfg.RetryMaxAttempts,
		BackoffBase: backoffBase,
	}, paymentService, dlqPublisher)

	consumerCtx, cancel := context.WithCancel(context.Background())

	shutdownMgr := platformshutdown.New(cfg.ShutdownTimeout, logger)
	shutdownMgr.Add("outcome_publisher", func(ctx context.Context) error {
		return publisher.Close()
	})
	shutdownMgr.Add("dlq_publisher", func(ctx context.Context) error {
		return dlqPublisher.Close()
	})
	shutdownMgr.Add("kafka_consumer", func(ctx context.Context) error {
		cancel()
		return consumer.Close()
	})

	return &App{
		logger:      logger,
		consumer:    consumer,
		shutdownMgr: shutdownMgr,
		consumerCtx: consumerCtx,
		cancel:      cancel,
	}, nil
}

// Run запускает сервис и блокируется до получения сигнала shutdown
func (a *App) Run() error {
	defer platformlogging.Sync(a.logger)

	a.logger.Info("Starting Payment service")

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.consumer.Start(a.consumerCtx); err != nil {
			a.logger.Error("consumer error", zap.Error(err))
		}
	}()

	a.shutdownMgr.Wait()

	a.wg.Wait()
	a.logger.Info("Payment service stopped")
	return nil
}
