package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shestoi/minimarket/internal/order/repository"
)

// OutboxDispatcher публикует строки outbox в Kafka.
// Строка остаётся pending до подтверждённой публикации, поэтому после
// рестарта неопубликованные order.created уходят заново: заказ в
// AwaitingPayment никогда не остаётся без события (reconciliation).
type OutboxDispatcher struct {
	logger      *zap.Logger
	repo        repository.OrderRepository
	writer      *kafka.Writer
	batchSize   int
	interval    time.Duration
	maxAttempts int
	backoffBase time.Duration
}

// NewOutboxDispatcher создаёт новый outbox dispatcher
func NewOutboxDispatcher(
	logger *zap.Logger,
	repo repository.OrderRepository,
	brokers []string,
	batchSize int,
	interval time.Duration,
	maxAttempts int,
	backoffBase time.Duration,
) *OutboxDispatcher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}

	return &OutboxDispatcher{
		logger:      logger,
		repo:        repo,
		writer:      writer,
		batchSize:   batchSize,
		interval:    interval,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
	}
}

// Start запускает dispatcher. Блокируется до отмены контекста.
func (d *OutboxDispatcher) Start(ctx context.Context) error {
	d.logger.Info("starting outbox dispatcher",
		zap.Int("batch_size", d.batchSize),
		zap.Duration("interval", d.interval),
		zap.Int("max_attempts", d.maxAttempts),
	)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	// Первый проход сразу: после рестарта pending строки не ждут тика
	if err := d.processBatch(ctx); err != nil && ctx.Err() == nil {
		d.logger.Error("failed to process initial batch", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("outbox dispatcher context cancelled, stopping")
			return nil
		case <-ticker.C:
			if err := d.processBatch(ctx); err != nil && ctx.Err() == nil {
				d.logger.Error("failed to process batch", zap.Error(err))
			}
		}
	}
}

// processBatch публикует очередной батч pending строк
func (d *OutboxDispatcher) processBatch(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	events, err := d.repo.GetPendingOutboxEvents(ctx, d.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending events: %w", err)
	}

	if len(events) == 0 {
		return nil
	}

	d.logger.Debug("processing outbox batch",
		zap.Int("count", len(events)),
	)

	for _, event := range events {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := d.processEvent(ctx, event); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.logger.Error("failed to process outbox event",
				zap.Error(err),
				zap.String("event_id", event.EventID),
				zap.String("topic", event.Topic),
			)
			// Строка остаётся pending и будет повторена следующим циклом
		}
	}

	return nil
}

// processEvent публикует одну строку с ограниченным количеством попыток
func (d *OutboxDispatcher) processEvent(ctx context.Context, event repository.OutboxEvent) error {
	msg := kafka.Message{
		Topic: event.Topic,
		Key:   []byte(event.Key),
		Value: event.Payload,
	}

	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if attempt > 1 {
			backoff := d.backoffBase * time.Duration(1<<uint(attempt-2))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := d.writer.WriteMessages(ctx, msg)
		if err == nil {
			if markErr := d.repo.MarkOutboxDispatched(ctx, event.EventID); markErr != nil {
				// Строка опубликована, но осталась pending: следующий цикл
				// опубликует её повторно. Дубликат допустим (at-least-once).
				d.logger.Error("failed to mark event as dispatched",
					zap.Error(markErr),
					zap.String("event_id", event.EventID),
				)
				return markErr
			}

			d.logger.Info("outbox event published",
				zap.String("event_id", event.EventID),
				zap.String("topic", event.Topic),
				zap.String("key", event.Key),
				zap.Int("attempt", attempt),
			)
			return nil
		}

		lastErr = err
		d.logger.Warn("failed to publish outbox event",
			zap.Error(err),
			zap.String("event_id", event.EventID),
			zap.String("topic", event.Topic),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", d.maxAttempts),
		)
	}

	return fmt.Errorf("failed to publish event after %d attempts: %w", d.maxAttempts, lastErr)
}

// Close закрывает Kafka writer
func (d *OutboxDispatcher) Close() error {
	d.logger.Info("closing outbox dispatcher")
	return d.writer.Close()
}
