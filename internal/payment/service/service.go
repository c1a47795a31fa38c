package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shestoi/minimarket/internal/payment/repository"
	"github.com/shestoi/minimarket/pkg/event"
)

// OutcomePublisher публикует события исхода оплаты.
// Реализуется kafka publisher-ом, в тестах подменяется фейком.
type OutcomePublisher interface {
	Publish(ctx context.Context, e event.Event) error
}

// PaymentService проверяет платёжный инструмент из order.created,
// записывает исход и публикует payment.success либо payment.failure.
// Ошибка из HandleEvent означает nack: событие будет доставлено снова,
// поэтому запись исхода идемпотентна по orderID.
type PaymentService struct {
	logger    *zap.Logger
	repo      repository.PaymentRepository
	publisher OutcomePublisher
}

// NewPaymentService создаёт новый экземпляр PaymentService
func NewPaymentService(logger *zap.Logger, repo repository.PaymentRepository, publisher OutcomePublisher) *PaymentService {
	return &PaymentService{
		logger:    logger,
		repo:      repo,
		publisher: publisher,
	}
}

// HandleEvent обрабатывает order.created.
// При повторной доставке запись не дублируется, но исход публикуется
// заново из сохранённого статуса: предыдущая попытка могла упасть
// между записью и публикацией.
func (s *PaymentService) HandleEvent(ctx context.Context, e event.Event) error {
	created, ok := e.(event.OrderCreated)
	if !ok {
		s.logger.Warn("unexpected event type",
			zap.String("event_type", e.Type()),
		)
		return nil
	}

	status, err := s.resolveStatus(ctx, created)
	if err != nil {
		return err
	}

	outcome := event.PaymentOutcome{
		EventID:       uuid.New().String(),
		OccurredAt:    time.Now().UTC(),
		OrderID:       created.OrderID,
		ProductID:     created.ProductID,
		BuyerEmail:    created.BuyerEmail,
		MerchantEmail: created.MerchantEmail,
	}

	var outcomeEvent event.Event
	if status == repository.StatusSuccess {
		outcomeEvent = event.PaymentSuccess{PaymentOutcome: outcome}
	} else {
		outcomeEvent = event.PaymentFailure{PaymentOutcome: outcome}
	}

	if err := s.publisher.Publish(ctx, outcomeEvent); err != nil {
		return err
	}

	s.logger.Info("payment outcome published",
		zap.Int64("order_id", created.OrderID),
		zap.String("status", status),
	)
	return nil
}

// resolveStatus возвращает исход проверки: сохранённый для уже
// обработанного заказа, иначе результат валидации с записью в хранилище
func (s *PaymentService) resolveStatus(ctx context.Context, created event.OrderCreated) (string, error) {
	existing, err := s.repo.GetByOrderID(ctx, created.OrderID)
	if err == nil {
		s.logger.Info("order already processed, reusing recorded outcome",
			zap.Int64("order_id", created.OrderID),
			zap.String("status", existing.Status),
		)
		return existing.Status, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	status := repository.StatusFailure
	if ValidateCard(created.Card) {
		status = repository.StatusSuccess
	}

	record := repository.PaymentRecord{
		OrderID:     created.OrderID,
		Status:      status,
		ProcessedAt: time.Now().UTC(),
	}
	if err := s.repo.Save(ctx, record); err != nil {
		return "", err
	}

	s.logger.Info("payment validated",
		zap.Int64("order_id", created.OrderID),
		zap.String("status", status),
		zap.String("card", event.MaskCardNumber(created.Card.Number)),
	)
	return status, nil
}
