package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	buskafka "github.com/shestoi/minimarket/internal/bus/kafka"
	httpapi "github.com/shestoi/minimarket/internal/order/api/http"
	"github.com/shestoi/minimarket/internal/order/client/rest"
	"github.com/shestoi/minimarket/internal/order/config"
	orderkafka "github.com/shestoi/minimarket/internal/order/event/kafka"
	"github.com/shestoi/minimarket/internal/order/repository"
	"github.com/shestoi/minimarket/internal/order/repository/memory"
	"github.com/shestoi/minimarket/internal/order/repository/postgres"
	"github.com/shestoi/minimarket/internal/order/service"
	platformkafka "github.com/shestoi/minimarket/platform/kafka"
	platformlogging "github.com/shestoi/minimarket/platform/logging"
	platformshutdown "github.com/shestoi/minimarket/platform/shutdown"
)

// App содержит все зависимости для запуска и корректного shutdown Order Service
type App struct {
	logger      *zap.Logger
	httpServer  *http.Server
	consumer    *buskafka.Consumer
	dispatcher  *orderkafka.OutboxDispatcher
	shutdownMgr *platformshutdown.Manager
	workerCtx   context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// Build создаёт и настраивает все зависимости Order Service
func Build(cfg config.Config) (*App, error) {
	const op = "app.Build"

	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "order",
		Env:         string(cfg.AppEnv),
		Level:       os.Getenv("LOG_LEVEL"),
		Format:      os.Getenv("LOG_FORMAT"),
	})
	if err != nil {
		return nil, err
	}

	logger = logger.With(zap.String("op", op))
	logger.Info("Building Order service", zap.String("http_addr", cfg.HTTPAddr))

	kafkaCfg := platformkafka.DefaultConfig()
	if err := platformkafka.LoadEnv(&kafkaCfg); err != nil {
		return nil, fmt.Errorf("load kafka config: %w", err)
	}
	backoffBase, err := time.ParseDuration(kafkaCfg.RetryBackoffBase)
	if err != nil {
		return nil, fmt.Errorf("invalid KAFKA_RETRY_BACKOFF_BASE: %w", err)
	}

	shutdownMgr := platformshutdown.New(cfg.ShutdownTimeout, logger)
	readiness := func() bool { return true }

	// Хранилище заказов: postgres при заданном DSN, иначе in-memory
	var orderRepo repository.OrderRepository
	if cfg.PostgresDSN != "" {
		logger.Info("Connecting to PostgreSQL")

		if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
			return nil, err
		}
		logger.Info("Database migrations applied successfully")

		pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := pool.Ping(context.Background()); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("PostgreSQL connection established")

		readiness = func() bool {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(ctx) == nil
		}

		orderRepo = postgres.NewRepository(pool)
		shutdownMgr.Add("postgres_pool", platformshutdown.ClosePool(pool))
	} else {
		logger.Info("Using in-memory order repository")
		orderRepo = memory.NewMemoryRepository()
	}

	merchantClient := rest.NewMerchantClient(cfg.MerchantBaseURL, cfg.LookupTimeout)
	buyerClient := rest.NewBuyerClient(cfg.BuyerBaseURL, cfg.LookupTimeout)
	inventoryClient := rest.NewInventoryClient(cfg.InventoryBaseURL, cfg.LookupTimeout)

	orderService := service.NewOrderService(logger, merchantClient, buyerClient, inventoryClient, orderRepo)

	dispatcher := orderkafka.NewOutboxDispatcher(
		logger,
		orderRepo,
		kafkaCfg.Brokers,
		cfg.OutboxBatchSize,
		cfg.OutboxInterval,
		kafkaCfg.RetryMaxAttempts,
		backoffBase,
	)

	// Consumer исходов оплаты двигает статус заказа
	dlqPublisher := buskafka.NewDLQPublisher(logger, kafkaCfg.Brokers, cfg.ConsumerGroup+".dlq")
	consumer := buskafka.NewConsumer(logger, buskafka.ConsumerConfig{
		Brokers:     kafkaCfg.Brokers,
		GroupID:     cfg.ConsumerGroup,
		Topics:      []string{platformkafka.TopicPaymentSuccess, platformkafka.TopicPaymentFailure},
		MaxAttempts: kafkaCfg.RetryMaxAttempts,
		BackoffBase: backoffBase,
	}, orderService, dlqPublisher)

	handler := httpapi.NewHandler(logger, orderService)
	router := httpapi.NewRouter(handler, readiness)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	workerCtx, cancel := context.WithCancel(context.Background())

	shutdownMgr.Add("dlq_publisher", func(ctx context.Context) error {
		return dlqPublisher.Close()
	})
	shutdownMgr.Add("outbox_dispatcher", func(ctx context.Context) error {
		cancel()
		return dispatcher.Close()
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
		dispatcher:  dispatcher,
		shutdownMgr: shutdownMgr,
		workerCtx:   workerCtx,
		cancel:      cancel,
	}, nil
}

// Run запускает сервис и блокируется до получения сигнала shutdown
func (a *App) Run() error {
	defer platformlogging.Sync(a.logger)

	a.logger.Info("Starting Order service", zap.String("addr", a.httpServer.Addr))

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
		if err := a.dispatcher.Start(a.workerCtx); err != nil {
			a.logger.Error("outbox dispatcher error", zap.Error(err))
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.consumer.Start(a.workerCtx); err != nil {
			a.logger.Error("consumer error", zap.Error(err))
		}
	}()

	a.shutdownMgr.Wait()

	a.wg.Wait()
	a.logger.Info("Order service stopped")
	return nil
}
