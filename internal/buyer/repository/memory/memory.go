package memory

import (
	"context"
	"sync"

	"github.com/shestoi/minimarket/internal/buyer/repository"
)

// MemoryRepository реализует BuyerRepository используя in-memory хранилище
type MemoryRepository struct {
	mu     sync.RWMutex
	buyers map[int64]repository.Buyer
	nextID int64
}

// NewMemoryRepository создаёт новый in-memory репозиторий
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		buyers: make(map[int64]repository.Buyer),
	}
}

// Create сохраняет покупателя и возвращает присвоенный id
func (r *MemoryRepository) Create(ctx context.Context, buyer repository.Buyer) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	buyer.ID = r.nextID
	r.buyers[buyer.ID] = buyer
	return buyer.ID, nil
}

// GetByID возвращает покупателя по id
func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (repository.Buyer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	buyer, exists := r.buyers[id]
	if !exists {
		return repository.Buyer{}, repository.ErrNotFound
	}
	return buyer, nil
}
