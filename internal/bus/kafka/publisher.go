package kafka

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shestoi/minimarket/pkg/event"
)

// Publisher публикует события саги в Kafka.
// Топик выбирается по типу события: routing key == имя топика.
// Публикация ретраится с ограниченным экспоненциальным backoff —
// потерянное событие order.created означало бы осиротевший резерв.
type Publisher struct {
	logger      *zap.Logger
	writer      *kafka.Writer
	maxAttempts int
	backoffBase time.Duration
}

// NewPublisher создаёт новый publisher для событий саги
func NewPublisher(logger *zap.Logger, brokers []string, maxAttempts int, backoffBase time.Duration) *Publisher {
	// Safety defaults (на случай кривого env/config)
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if backoffBase <= 0 {
		backoffBase = 1 * time.Second
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}

	return &Publisher{
		logger:      logger,
		writer:      writer,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
	}
}

// Publish сериализует событие и отправляет его в топик, совпадающий
// с типом события. EventID генерируется, если вызывающий его не задал.
func (p *Publisher) Publish(ctx context.Context, e event.Event) error {
	valueBytes, err := event.Encode(e)
	if err != nil {
		p.logger.Error("failed to encode event",
			zap.Error(err),
			zap.String("event_type", e.Type()),
		)
		return err
	}

	message := kafka.Message{
		Topic: e.Type(),
		Key:   []byte(e.Key()),
		Value: valueBytes,
	}

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		// Backoff: base, base*2, base*4 (экспоненциально)
		if attempt > 1 {
			backoff := p.backoffBase * time.Duration(1<<uint(attempt-2))
			p.logger.Info("retrying event publish",
				zap.String("topic", e.Type()),
				zap.String("key", e.Key()),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", p.maxAttempts),
				zap.Duration("backoff", backoff),
			)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err = p.writer.WriteMessages(ctx, message)
		if err == nil {
			p.logger.Info("event published",
				zap.String("topic", e.Type()),
				zap.String("key", e.Key()),
			)
			return nil
		}

		lastErr = err
		p.logger.Warn("failed to publish event",
			zap.Error(err),
			zap.String("topic", e.Type()),
			zap.String("key", e.Key()),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.maxAttempts),
		)
	}

	p.logger.Error("exhausted all publish attempts",
		zap.Error(lastErr),
		zap.String("topic", e.Type()),
		zap.String("key", e.Key()),
		zap.Int("max_attempts", p.maxAttempts),
	)
	return lastErr
}

// Close закрывает Kafka writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// NewEventID возвращает уникальный идентификатор события
func NewEventID() string {
	return uuid.New().String()
}
