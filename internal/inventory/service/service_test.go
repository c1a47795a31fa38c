package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/minimarket/internal/inventory/repository"
	"github.com/shestoi/minimarket/internal/inventory/repository/memory"
	"github.com/shestoi/minimarket/pkg/event"
)

func newService(t *testing.T) (*InventoryService, *memory.MemoryRepository) {
	t.Helper()
	repo := memory.NewMemoryRepository()
	return NewInventoryService(zap.NewNop(), repo), repo
}

func TestInventoryService_HandleEvent_PaymentSuccess(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	productID, err := repo.CreateProduct(ctx, repository.Product{Quantity: 3})
	require.NoError(t, err)
	require.NoError(t, repo.Reserve(ctx, productID, 1))

	ev := event.PaymentSuccess{PaymentOutcome: event.PaymentOutcome{
		OrderID:   1,
		ProductID: productID,
	}}

	require.NoError(t, svc.HandleEvent(ctx, ev))

	p, err := repo.GetProduct(ctx, productID)
	require.NoError(t, err)
	require.Equal(t, int64(2), p.Quantity)
	require.Equal(t, int64(0), p.Reserved)

	// Повторная доставка того же события ничего не меняет
	require.NoError(t, svc.HandleEvent(ctx, ev))

	p, err = repo.GetProduct(ctx, productID)
	require.NoError(t, err)
	require.Equal(t, int64(2), p.Quantity)
}

func TestInventoryService_HandleEvent_PaymentFailure(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	productID, err := repo.CreateProduct(ctx, repository.Product{Quantity: 3})
	require.NoError(t, err)
	require.NoError(t, repo.Reserve(ctx, productID, 1))

	ev := event.PaymentFailure{PaymentOutcome: event.PaymentOutcome{
		OrderID:   1,
		ProductID: productID,
	}}

	require.NoError(t, svc.HandleEvent(ctx, ev))

	p, err := repo.GetProduct(ctx, productID)
	require.NoError(t, err)
	require.Equal(t, int64(3), p.Quantity)
	require.Equal(t, int64(0), p.Reserved)
}

// Событие для несуществующего товара ack-ается без ошибки:
// retry не превратит неизвестный id в известный
func TestInventoryService_HandleEvent_UnknownProduct(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	require.NoError(t, svc.HandleEvent(ctx, event.PaymentSuccess{
		PaymentOutcome: event.PaymentOutcome{OrderID: 1, ProductID: 999},
	}))
	require.NoError(t, svc.HandleEvent(ctx, event.PaymentFailure{
		PaymentOutcome: event.PaymentOutcome{OrderID: 1, ProductID: 999},
	}))
}

func TestInventoryService_HandleEvent_UnexpectedType(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	require.NoError(t, svc.HandleEvent(ctx, event.OrderCreated{OrderID: 1}))
}
