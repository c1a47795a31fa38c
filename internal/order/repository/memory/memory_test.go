package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shestoi/minimarket/internal/order/repository"
)

func makeEvent(topic string) func(orderID int64) (repository.OutboxEvent, error) {
	return func(orderID int64) (repository.OutboxEvent, error) {
		return repository.OutboxEvent{
			EventID: topic + "-evt",
			Topic:   topic,
			Key:     "1",
			Payload: []byte(`{}`),
		}, nil
	}
}

func TestMemoryRepository_Create_MonotonicIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	id1, err := repo.Create(ctx, repository.Order{ProductID: 1}, makeEvent("a"))
	require.NoError(t, err)
	id2, err := repo.Create(ctx, repository.Order{ProductID: 2}, makeEvent("b"))
	require.NoError(t, err)

	require.Equal(t, int64(1), id1)
	require.Equal(t, int64(2), id2)

	order, err := repo.GetByID(ctx, id1)
	require.NoError(t, err)
	require.Equal(t, repository.StatusAwaitingPayment, order.Status)
	require.False(t, order.CreatedAt.IsZero())
}

// Ошибка makeEvent не оставляет ни заказа, ни строки outbox
func TestMemoryRepository_Create_EventErrorRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.Create(ctx, repository.Order{}, func(orderID int64) (repository.OutboxEvent, error) {
		return repository.OutboxEvent{}, errors.New("encode failed")
	})
	require.Error(t, err)

	_, err = repo.GetByID(ctx, 1)
	require.ErrorIs(t, err, repository.ErrNotFound)

	pending, err := repo.GetPendingOutboxEvents(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, pending)

	// Следующий заказ получает id 1: неудачная попытка id не сжигает
	id, err := repo.Create(ctx, repository.Order{}, makeEvent("a"))
	require.NoError(t, err)
	require.Equal(t, int64(1), id)
}

func TestMemoryRepository_TransitionStatus_ExactlyOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	id, err := repo.Create(ctx, repository.Order{}, makeEvent("a"))
	require.NoError(t, err)

	moved, err := repo.TransitionStatus(ctx, id, repository.StatusConfirmed)
	require.NoError(t, err)
	require.True(t, moved)

	// Повторная доставка исхода не перезаписывает терминальный статус
	moved, err = repo.TransitionStatus(ctx, id, repository.StatusFailed)
	require.NoError(t, err)
	require.False(t, moved)

	order, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, repository.StatusConfirmed, order.Status)

	_, err = repo.TransitionStatus(ctx, 999, repository.StatusFailed)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMemoryRepository_Outbox(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.Create(ctx, repository.Order{}, makeEvent("a"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, repository.Order{}, makeEvent("b"))
	require.NoError(t, err)

	pending, err := repo.GetPendingOutboxEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, "a-evt", pending[0].EventID)

	require.NoError(t, repo.MarkOutboxDispatched(ctx, "a-evt"))

	pending, err = repo.GetPendingOutboxEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "b-evt", pending[0].EventID)

	require.NoError(t, repo.MarkOutboxDispatched(ctx, "b-evt"))

	pending, err = repo.GetPendingOutboxEvents(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, pending)
}
