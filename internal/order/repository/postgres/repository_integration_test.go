//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/shestoi/minimarket/internal/order/repository"
)

func TestRepository_Integration(t *testing.T) {
	ctx := context.Background()

	// Поднимаем PostgreSQL контейнер через testcontainers
	postgresContainer, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		postgres.WithDatabase("orders"),
		postgres.WithUsername("order_user"),
		postgres.WithPassword("order_password"),
	)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, postgresContainer.Terminate(ctx))
	}()

	dsn, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Ждём готовности БД через ping с retry
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	var pingErr error
	for i := 0; i < 10; i++ {
		pingErr = db.PingContext(ctx)
		if pingErr == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	db.Close()
	require.NoError(t, pingErr, "Failed to ping database after retries")

	// Накатываем встроенные миграции
	require.NoError(t, Migrate(dsn))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	repo := NewRepository(pool)

	t.Run("Create assigns monotonic ids and writes outbox", func(t *testing.T) {
		id1, err := repo.Create(ctx, repository.Order{
			ProductID:  1,
			MerchantID: 2,
			BuyerID:    3,
			MaskedCard: "************1486",
			TotalPrice: 90,
			Discount:   0.1,
		}, func(orderID int64) (repository.OutboxEvent, error) {
			return repository.OutboxEvent{
				EventID: "evt-1",
				Topic:   "order.created",
				Key:     "1",
				Payload: []byte(`{"type":"order.created"}`),
			}, nil
		})
		require.NoError(t, err)

		id2, err := repo.Create(ctx, repository.Order{ProductID: 4}, func(orderID int64) (repository.OutboxEvent, error) {
			return repository.OutboxEvent{
				EventID: "evt-2",
				Topic:   "order.created",
				Key:     "2",
				Payload: []byte(`{"type":"order.created"}`),
			}, nil
		})
		require.NoError(t, err)
		require.Greater(t, id2, id1)

		got, err := repo.GetByID(ctx, id1)
		require.NoError(t, err)
		require.Equal(t, repository.StatusAwaitingPayment, got.Status)
		require.Equal(t, "************1486", got.MaskedCard)
		require.Equal(t, 90.0, got.TotalPrice)

		pending, err := repo.GetPendingOutboxEvents(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 2)
		require.Equal(t, "evt-1", pending[0].EventID)

		require.NoError(t, repo.MarkOutboxDispatched(ctx, "evt-1"))

		pending, err = repo.GetPendingOutboxEvents(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		require.Equal(t, "evt-2", pending[0].EventID)
	})

	t.Run("Create rolls back order when event build fails", func(t *testing.T) {
		_, err := repo.Create(ctx, repository.Order{ProductID: 9}, func(orderID int64) (repository.OutboxEvent, error) {
			return repository.OutboxEvent{}, context.Canceled
		})
		require.Error(t, err)

		var count int
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT count(*) FROM orders WHERE product_id = 9`).Scan(&count))
		require.Zero(t, count)
	})

	t.Run("TransitionStatus exactly once", func(t *testing.T) {
		id, err := repo.Create(ctx, repository.Order{ProductID: 5}, func(orderID int64) (repository.OutboxEvent, error) {
			return repository.OutboxEvent{
				EventID: "evt-3",
				Topic:   "order.created",
				Key:     "3",
				Payload: []byte(`{}`),
			}, nil
		})
		require.NoError(t, err)

		moved, err := repo.TransitionStatus(ctx, id, repository.StatusConfirmed)
		require.NoError(t, err)
		require.True(t, moved)

		moved, err = repo.TransitionStatus(ctx, id, repository.StatusFailed)
		require.NoError(t, err)
		require.False(t, moved)

		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, repository.StatusConfirmed, got.Status)

		_, err = repo.TransitionStatus(ctx, 99999, repository.StatusFailed)
		require.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("GetByID not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 99999)
		require.ErrorIs(t, err, repository.ErrNotFound)
	})
}
