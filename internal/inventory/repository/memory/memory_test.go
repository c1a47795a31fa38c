package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shestoi/minimarket/internal/inventory/repository"
)

func TestMemoryRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	id1, err := repo.CreateProduct(ctx, repository.Product{
		MerchantID: 1,
		Name:       "keyboard",
		Price:      100,
		Quantity:   5,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), id1)

	id2, err := repo.CreateProduct(ctx, repository.Product{
		MerchantID: 1,
		Name:       "mouse",
		Price:      50,
		Quantity:   3,
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), id2)

	p, err := repo.GetProduct(ctx, id1)
	require.NoError(t, err)
	require.Equal(t, "keyboard", p.Name)
	require.Equal(t, int64(5), p.Quantity)
	require.Equal(t, int64(0), p.Reserved)

	_, err = repo.GetProduct(ctx, 999)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMemoryRepository_Reserve(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	id, err := repo.CreateProduct(ctx, repository.Product{Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, repo.Reserve(ctx, id, 1))
	require.NoError(t, repo.Reserve(ctx, id, 1))

	// Всё зарезервировано
	err = repo.Reserve(ctx, id, 1)
	require.ErrorIs(t, err, repository.ErrInsufficientStock)

	err = repo.Reserve(ctx, 999, 1)
	require.ErrorIs(t, err, repository.ErrNotFound)

	p, err := repo.GetProduct(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(2), p.Reserved)
	require.Equal(t, int64(2), p.Quantity)
}

// Конкурентные Reserve по одному товару никогда не резервируют
// больше, чем quantity - reserved на момент старта
func TestMemoryRepository_Reserve_Concurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	const quantity = 50
	const workers = 200

	id, err := repo.CreateProduct(ctx, repository.Product{Quantity: quantity})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Reserve(ctx, id, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, quantity, succeeded)

	p, err := repo.GetProduct(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(quantity), p.Reserved)
	require.LessOrEqual(t, p.Reserved, p.Quantity)
}

func TestMemoryRepository_CommitIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	id, err := repo.CreateProduct(ctx, repository.Product{Quantity: 3})
	require.NoError(t, err)
	require.NoError(t, repo.Reserve(ctx, id, 1))

	const orderID = int64(42)

	require.NoError(t, repo.Commit(ctx, orderID, id))

	p, err := repo.GetProduct(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(2), p.Quantity)
	require.Equal(t, int64(0), p.Reserved)

	// Повторная доставка того же заказа не уменьшает остаток ещё раз
	require.NoError(t, repo.Commit(ctx, orderID, id))
	require.NoError(t, repo.Release(ctx, orderID, id))

	p, err = repo.GetProduct(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(2), p.Quantity)
	require.Equal(t, int64(0), p.Reserved)
}

func TestMemoryRepository_ReleaseIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	id, err := repo.CreateProduct(ctx, repository.Product{Quantity: 3})
	require.NoError(t, err)
	require.NoError(t, repo.Reserve(ctx, id, 1))

	const orderID = int64(7)

	require.NoError(t, repo.Release(ctx, orderID, id))

	p, err := repo.GetProduct(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(3), p.Quantity)
	require.Equal(t, int64(0), p.Reserved)

	// Дубликат release и запоздавший commit того же заказа - no-op
	require.NoError(t, repo.Release(ctx, orderID, id))
	require.NoError(t, repo.Commit(ctx, orderID, id))

	p, err = repo.GetProduct(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(3), p.Quantity)
	require.Equal(t, int64(0), p.Reserved)
}

func TestMemoryRepository_CommitUnknownProduct(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	require.ErrorIs(t, repo.Commit(ctx, 1, 999), repository.ErrNotFound)
	require.ErrorIs(t, repo.Release(ctx, 1, 999), repository.ErrNotFound)
}
