package memory

import (
	"context"
	"sync"

	"github.com/shestoi/minimarket/internal/merchant/repository"
)

// MemoryRepository реализует MerchantRepository используя in-memory хранилище
type MemoryRepository struct {
	mu        sync.RWMutex
	merchants map[int64]repository.Merchant
	nextID    int64
}

// NewMemoryRepository создаёт новый in-memory репозиторий
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		merchants: make(map[int64]repository.Merchant),
	}
}

// Create сохраняет продавца и возвращает присвоенный id
func (r *MemoryRepository) Create(ctx context.Context, merchant repository.Merchant) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	merchant.ID = r.nextID
	r.merchants[merchant.ID] = merchant
	return merchant.ID, nil
}

// GetByID возвращает продавца по id
func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (repository.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	merchant, exists := r.merchants[id]
	if !exists {
		return repository.Merchant{}, repository.ErrNotFound
	}
	return merchant, nil
}
