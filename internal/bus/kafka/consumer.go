package kafka

import (
	"context"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shestoi/minimarket/pkg/event"
)

// Handler обрабатывает одно декодированное событие саги.
// Возвращённая ошибка приводит к retry с backoff и затем к DLQ —
// handler НЕ должен возвращать ошибку для штатных бизнес-исходов
// (например, payment.failure — это нормальное событие, а не ошибка).
type Handler interface {
	HandleEvent(ctx context.Context, e event.Event) error
}

// ConsumerConfig содержит параметры подписки consumer-а
type ConsumerConfig struct {
	Brokers []string
	// GroupID — группа консьюмеров: реплики одной логической роли
	// делят одну группу и конкурируют за сообщения (competing consumers)
	GroupID string
	// Topics — список топиков; одна подписка может покрывать несколько
	// routing key (например, payment.success и payment.failure)
	Topics      []string
	MaxAttempts int
	BackoffBase time.Duration
}

// Consumer читает события саги из Kafka с at-least-once семантикой:
// FetchMessage + CommitMessages только после успешной обработки либо
// после отправки в DLQ. Необработанное сообщение будет доставлено снова.
type Consumer struct {
	logger       *zap.Logger
	reader       *kafka.Reader
	handler      Handler
	dlqPublisher *DLQPublisher
	maxAttempts  int
	backoffBase  time.Duration
}

// NewConsumer создаёт новый consumer для указанных топиков
func NewConsumer(logger *zap.Logger, cfg ConsumerConfig, handler Handler, dlqPublisher *DLQPublisher) *Consumer {
	// Safety defaults (на случай кривого env/config)
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	backoffBase := cfg.BackoffBase
	if backoffBase <= 0 {
		backoffBase = 1 * time.Second
	}

	readerConfig := kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	}
	// Reader с одним топиком и с несколькими настраиваются по-разному
	if len(cfg.Topics) == 1 {
		readerConfig.Topic = cfg.Topics[0]
	} else {
		readerConfig.GroupTopics = cfg.Topics
	}

	return &Consumer{
		logger:       logger,
		reader:       kafka.NewReader(readerConfig),
		handler:      handler,
		dlqPublisher: dlqPublisher,
		maxAttempts:  maxAttempts,
		backoffBase:  backoffBase,
	}
}

// Start запускает consumer и начинает обработку сообщений.
// Блокируется до отмены контекста.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("starting kafka consumer",
		zap.Strings("topics", c.reader.Config().GroupTopics),
		zap.String("topic", c.reader.Config().Topic),
		zap.String("group_id", c.reader.Config().GroupID),
		zap.Int("max_retry_attempts", c.maxAttempts),
		zap.Duration("retry_backoff_base", c.backoffBase),
	)

	for {
		// FetchMessage вместо ReadMessage для ручного контроля commit
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			// Если контекст отменён, выходим
			if ctx.Err() != nil {
				c.logger.Info("consumer context cancelled, stopping")
				return nil
			}
			c.logger.Error("failed to fetch message from kafka",
				zap.Error(err),
			)
			// Продолжаем обработку, не паникуем
			continue
		}

		shouldCommit := c.processMessage(ctx, m)

		// Коммитим offset только после успешной обработки или отправки в DLQ
		if shouldCommit {
			if err := c.reader.CommitMessages(ctx, m); err != nil {
				c.logger.Error("failed to commit message offset",
					zap.Error(err),
					zap.String("topic", m.Topic),
					zap.Int("partition", m.Partition),
					zap.Int64("offset", m.Offset),
				)
				continue
			}

			c.logger.Debug("message offset committed",
				zap.String("topic", m.Topic),
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
			)
		}
	}
}

// processMessage обрабатывает одно сообщение из Kafka
// Возвращает true, если нужно закоммитить offset (успешная обработка или DLQ)
func (c *Consumer) processMessage(ctx context.Context, m kafka.Message) bool {
	e, err := event.Decode(m.Value)
	if err != nil {
		c.logger.Error("failed to decode event - sending to DLQ",
			zap.Error(err),
			zap.String("topic", m.Topic),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
		)

		// Poison pill: в DLQ и коммитим, чтобы не зациклиться
		if dlqErr := c.dlqPublisher.Publish(ctx, m, err, "", "", ""); dlqErr != nil {
			c.logger.Error("failed to publish to DLQ, not committing",
				zap.Error(dlqErr),
			)
			return false
		}
		return true
	}

	eventID, orderID := eventMeta(e)

	c.logger.Info("received event",
		zap.String("event_type", e.Type()),
		zap.String("event_id", eventID),
		zap.String("order_id", orderID),
		zap.Int("partition", m.Partition),
		zap.Int64("offset", m.Offset),
	)

	success := c.handleWithRetry(ctx, e, orderID)

	if !success {
		// После исчерпания retry отправляем в DLQ и коммитим
		c.logger.Error("failed to handle event after all retries - sending to DLQ",
			zap.String("event_type", e.Type()),
			zap.String("order_id", orderID),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
		)

		dlqErr := &ProcessingError{
			Message: "failed after all retry attempts",
			OrderID: orderID,
		}
		if err := c.dlqPublisher.Publish(ctx, m, dlqErr, e.Type(), eventID, orderID); err != nil {
			c.logger.Error("failed to publish to DLQ, not committing",
				zap.Error(err),
			)
			return false
		}
		return true
	}

	c.logger.Info("event processed successfully",
		zap.String("event_type", e.Type()),
		zap.String("order_id", orderID),
		zap.Int("partition", m.Partition),
		zap.Int64("offset", m.Offset),
	)

	return true
}

// handleWithRetry обрабатывает событие с retry логикой
// Возвращает true при успешной обработке, false при исчерпании попыток
func (c *Consumer) handleWithRetry(ctx context.Context, e event.Event, orderID string) bool {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		// Backoff: base, base*2, base*4 (экспоненциально)
		if attempt > 1 {
			backoff := c.backoffBase * time.Duration(1<<uint(attempt-2))
			c.logger.Info("retrying event",
				zap.String("event_type", e.Type()),
				zap.String("order_id", orderID),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", c.maxAttempts),
				zap.Duration("backoff", backoff),
			)

			select {
			case <-ctx.Done():
				return false
			case <-time.After(backoff):
			}
		}

		err := c.handler.HandleEvent(ctx, e)
		if err == nil {
			if attempt > 1 {
				c.logger.Info("event processed successfully after retry",
					zap.String("event_type", e.Type()),
					zap.String("order_id", orderID),
					zap.Int("attempt", attempt),
				)
			}
			return true
		}

		lastErr = err
		c.logger.Warn("failed to handle event",
			zap.Error(err),
			zap.String("event_type", e.Type()),
			zap.String("order_id", orderID),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.maxAttempts),
		)
	}

	c.logger.Error("exhausted all retry attempts",
		zap.Error(lastErr),
		zap.String("event_type", e.Type()),
		zap.String("order_id", orderID),
		zap.Int("max_attempts", c.maxAttempts),
	)

	return false
}

// eventMeta извлекает event_id и order_id для логов и DLQ
func eventMeta(e event.Event) (eventID, orderID string) {
	switch ev := e.(type) {
	case event.OrderCreated:
		return ev.EventID, strconv.FormatInt(ev.OrderID, 10)
	case event.PaymentSuccess:
		return ev.EventID, strconv.FormatInt(ev.OrderID, 10)
	case event.PaymentFailure:
		return ev.EventID, strconv.FormatInt(ev.OrderID, 10)
	default:
		return "", ""
	}
}

// ProcessingError представляет ошибку обработки для DLQ
type ProcessingError struct {
	Message string
	OrderID string
}

func (e *ProcessingError) Error() string {
	return e.Message
}

// Close закрывает Kafka reader
func (c *Consumer) Close() error {
	c.logger.Info("closing kafka consumer")
	return c.reader.Close()
}
