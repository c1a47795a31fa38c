package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shestoi/minimarket/internal/payment/repository"
)

// MemoryRepository реализует PaymentRepository используя in-memory хранилище
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[int64]repository.PaymentRecord
}

// NewMemoryRepository создаёт новый in-memory репозиторий
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[int64]repository.PaymentRecord),
	}
}

// GetByOrderID возвращает запись по заказу
func (r *MemoryRepository) GetByOrderID(ctx context.Context, orderID int64) (repository.PaymentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.records[orderID]
	if !exists {
		return repository.PaymentRecord{}, repository.ErrNotFound
	}
	return record, nil
}

// Save сохраняет запись об исходе проверки
func (r *MemoryRepository) Save(ctx context.Context, record repository.PaymentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.ProcessedAt.IsZero() {
		record.ProcessedAt = time.Now().UTC()
	}
	r.records[record.OrderID] = record
	return nil
}
