package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/minimarket/internal/payment/repository"
	"github.com/shestoi/minimarket/internal/payment/repository/memory"
	"github.com/shestoi/minimarket/pkg/event"
)

// capturingPublisher собирает опубликованные события
type capturingPublisher struct {
	events []event.Event
	err    error
}

func (p *capturingPublisher) Publish(ctx context.Context, e event.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func orderCreated(card event.Card) event.OrderCreated {
	return event.OrderCreated{
		EventID:       "evt-1",
		OrderID:       7,
		ProductID:     3,
		Card:          card,
		BuyerEmail:    "buyer@example.com",
		MerchantEmail: "merchant@example.com",
	}
}

func TestPaymentService_HandleEvent_ValidCard(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMemoryRepository()
	publisher := &capturingPublisher{}
	svc := NewPaymentService(zap.NewNop(), repo, publisher)

	err := svc.HandleEvent(ctx, orderCreated(validCard()))
	require.NoError(t, err)

	require.Len(t, publisher.events, 1)
	success, ok := publisher.events[0].(event.PaymentSuccess)
	require.True(t, ok, "expected PaymentSuccess, got %T", publisher.events[0])
	require.Equal(t, int64(7), success.OrderID)
	require.Equal(t, int64(3), success.ProductID)
	require.Equal(t, "buyer@example.com", success.BuyerEmail)
	require.NotEmpty(t, success.EventID)

	record, err := repo.GetByOrderID(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, repository.StatusSuccess, record.Status)
	require.False(t, record.ProcessedAt.IsZero())
}

func TestPaymentService_HandleEvent_InvalidCard(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMemoryRepository()
	publisher := &capturingPublisher{}
	svc := NewPaymentService(zap.NewNop(), repo, publisher)

	card := validCard()
	card.Number = "4539578763621487"

	err := svc.HandleEvent(ctx, orderCreated(card))
	require.NoError(t, err)

	require.Len(t, publisher.events, 1)
	_, ok := publisher.events[0].(event.PaymentFailure)
	require.True(t, ok, "expected PaymentFailure, got %T", publisher.events[0])

	record, err := repo.GetByOrderID(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, repository.StatusFailure, record.Status)
}

// Повторная доставка order.created: ровно одна запись, но исход
// публикуется заново из сохранённого статуса
func TestPaymentService_HandleEvent_Redelivery(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMemoryRepository()
	publisher := &capturingPublisher{}
	svc := NewPaymentService(zap.NewNop(), repo, publisher)

	created := orderCreated(validCard())

	require.NoError(t, svc.HandleEvent(ctx, created))

	first, err := repo.GetByOrderID(ctx, created.OrderID)
	require.NoError(t, err)

	require.NoError(t, svc.HandleEvent(ctx, created))

	second, err := repo.GetByOrderID(ctx, created.OrderID)
	require.NoError(t, err)
	require.Equal(t, first.ProcessedAt, second.ProcessedAt, "record must not be rewritten")

	require.Len(t, publisher.events, 2)
	for _, e := range publisher.events {
		_, ok := e.(event.PaymentSuccess)
		require.True(t, ok)
	}
}

// Ошибка публикации возвращается наружу: consumer сделает retry,
// а сохранённая запись гарантирует тот же исход
func TestPaymentService_HandleEvent_PublishFails(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMemoryRepository()
	publisher := &capturingPublisher{err: errors.New("broker unavailable")}
	svc := NewPaymentService(zap.NewNop(), repo, publisher)

	created := orderCreated(validCard())

	err := svc.HandleEvent(ctx, created)
	require.Error(t, err)

	// Запись уже есть; retry переиспользует её
	record, err := repo.GetByOrderID(ctx, created.OrderID)
	require.NoError(t, err)
	require.Equal(t, repository.StatusSuccess, record.Status)

	publisher.err = nil
	require.NoError(t, svc.HandleEvent(ctx, created))
	require.Len(t, publisher.events, 1)
}

func TestPaymentService_HandleEvent_IgnoresOutcomes(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMemoryRepository()
	publisher := &capturingPublisher{}
	svc := NewPaymentService(zap.NewNop(), repo, publisher)

	err := svc.HandleEvent(ctx, event.PaymentSuccess{
		PaymentOutcome: event.PaymentOutcome{OrderID: 1},
	})
	require.NoError(t, err)
	require.Empty(t, publisher.events)
}
