package app

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	buskafka "github.com/shestoi/minimarket/internal/bus/kafka"
	"github.com/shestoi/minimarket/internal/notification/config"
	"github.com/shestoi/minimarket/internal/notification/mail"
	"github.com/shestoi/minimarket/internal/notification/service"
	"github.com/shestoi/minimarket/internal/notification/templates"
	platformkafka "github.com/shestoi/minimarket/platform/kafka"
	platformlogging "github.com/shestoi/minimarket/platform/logging"
	platformshutdown "github.com/shestoi/minimarket/platform/shutdown"
)

// App содержит все зависимости для запуска и корректного shutdown Notification Service
type App struct {
	logger      *zap.Logger
	consumer    *buskafka.Consumer
	shutdownMgr *platformshutdown.Manager
	consumerCtx context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// Build создаёт и настраивает все зависимости Notification Service
func Build(cfg config.Config) (*App, error) {
	const op = "app.Build"

	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "notification",
		Env:         string(cfg.AppEnv),
		Level:       os.Getenv("LOG_LEVEL"),
		Format:      os.Getenv("LOG_FORMAT"),
	})
	if err != nil {
		return nil, err
	}

	logger = logger.With(zap.String("op", op))
	logger.Info("Building Notification service")

	kafkaCfg := platformkafka.DefaultConfig()
	if err := platformkafka.LoadEnv(&kafkaCfg); err != nil {
		return nil, fmt.Errorf("load kafka config: %w", err)
	}
	backoffBase, err := time.ParseDuration(kafkaCfg.RetryBackoffBase)
	if err != nil {
		return nil, fmt.Errorf("invalid KAFKA_RETRY_BACKOFF_BASE: %w", err)
	}

	renderer, err := templates.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("build renderer: %w", err)
	}

	var sender mail.Sender
	if cfg.MailAPIKey != "" {
		sender = mail.NewHTTPSender(logger, cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailFromEmail)
	} else {
		logger.Warn("MAIL_API_KEY is not set, using no-op mail sender")
		sender = mail.NewNoOpSender(logger)
	}

	notificationService := service.NewNotificationService(logger, sender, renderer)

	dlqPublisher := buskafka.NewDLQPublisher(logger, kafkaCfg.Brokers, cfg.ConsumerGroup+".dlq")
	consumer := buskafka.NewConsumer(logger, buskafka.ConsumerConfig{
		Brokers: kafkaCfg.Brokers,
		GroupID: cfg.ConsumerGroup,
		Topics: []string{
			platformkafka.TopicOrderCreated,
			platformkafka.TopicPaymentSuccess,
			platformkafka.TopicPaymentFailure,
		},
		MaxAttempts: kafkaCfg.RetryMaxAttempts,
		BackoffBase: backoffBase,
	}, notificationService, dlqPublisher)

	consumerCtx, cancel := context.WithCancel(context.Background())

	shutdownMgr := platformshutdown.New(cfg.ShutdownTimeout, logger)
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

	a.logger.Info("Starting Notification service")

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.consumer.Start(a.consumerCtx); err != nil {
			a.logger.Error("consumer error", zap.Error(err))
		}
	}()

	a.shutdownMgr.Wait()

	a.wg.Wait()
	a.logger.Info("Notification service stopped")
	return nil
}
