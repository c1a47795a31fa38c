package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shestoi/minimarket/internal/order/repository"
)

// MemoryRepository реализует OrderRepository используя in-memory хранилище
// Используется для разработки и тестирования; в production заменяется
// на postgres реализацию с тем же контрактом
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[int64]repository.Order
	nextID int64

	// outbox pending строки в порядке создания; dispatched помечает
	// уже опубликованные event id
	pending    []repository.OutboxEvent
	dispatched map[string]bool
}

// NewMemoryRepository создаёт новый in-memory репозиторий
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		orders:     make(map[int64]repository.Order),
		dispatched: make(map[string]bool),
	}
}

// Create сохраняет заказ и строку outbox под одним локом.
// Ошибка makeEvent откатывает запись целиком: ни заказа, ни события.
func (r *MemoryRepository) Create(ctx context.Context, order repository.Order, makeEvent func(orderID int64) (repository.OutboxEvent, error)) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID + 1

	event, err := makeEvent(id)
	if err != nil {
		return 0, err
	}

	r.nextID = id
	order.ID = id
	order.Status = repository.StatusAwaitingPayment
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = order.CreatedAt
	}

	r.orders[id] = order
	r.pending = append(r.pending, event)

	return id, nil
}

// GetByID получает заказ по id из памяти
func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (repository.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, exists := r.orders[id]
	if !exists {
		return repository.Order{}, repository.ErrNotFound
	}
	return order, nil
}

// TransitionStatus переводит заказ из AwaitingPayment в to
func (r *MemoryRepository) TransitionStatus(ctx context.Context, id int64, to repository.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, exists := r.orders[id]
	if !exists {
		return false, repository.ErrNotFound
	}
	if order.Status != repository.StatusAwaitingPayment {
		return false, nil
	}

	order.Status = to
	r.orders[id] = order
	return true, nil
}

// GetPendingOutboxEvents возвращает первые limit неопубликованных строк
func (r *MemoryRepository) GetPendingOutboxEvents(ctx context.Context, limit int) ([]repository.OutboxEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]repository.OutboxEvent, 0, limit)
	for _, event := range r.pending {
		if r.dispatched[event.EventID] {
			continue
		}
		events = append(events, event)
		if len(events) == limit {
			break
		}
	}
	return events, nil
}

// MarkOutboxDispatched отмечает строку опубликованной и убирает её из pending
func (r *MemoryRepository) MarkOutboxDispatched(ctx context.Context, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dispatched[eventID] = true

	remaining := r.pending[:0]
	for _, event := range r.pending {
		if !r.dispatched[event.EventID] {
			remaining = append(remaining, event)
		}
	}
	r.pending = remaining
	return nil
}
