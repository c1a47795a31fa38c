package memory

import (
	"context"
	"sync"

	"github.com/shestoi/minimarket/internal/inventory/repository"
)

// product - запись хранилища с собственным мьютексом.
// Блокировка на уровне товара: конкурентные операции по разным товарам
// не конкурируют за один глобальный лок.
type product struct {
	mu sync.Mutex

	data repository.Product

	// processed хранит исход (committed/released) по orderID.
	// Используется для идемпотентности Commit/Release при повторной
	// доставке событий (at-least-once).
	processed map[int64]string
}

const (
	outcomeCommitted = "committed"
	outcomeReleased  = "released"
)

// MemoryRepository реализует InventoryRepository используя in-memory хранилище
type MemoryRepository struct {
	// mu защищает только карту товаров и счётчик id.
	// Состояние каждого товара защищено его собственным мьютексом.
	mu       sync.RWMutex
	products map[int64]*product
	nextID   int64
}

// NewMemoryRepository создаёт новый in-memory репозиторий
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		products: make(map[int64]*product),
	}
}

// CreateProduct сохраняет новый товар и присваивает монотонный id
func (r *MemoryRepository) CreateProduct(ctx context.Context, p repository.Product) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	p.ID = r.nextID
	p.Reserved = 0

	r.products[p.ID] = &product{
		data:      p,
		processed: make(map[int64]string),
	}

	return p.ID, nil
}

// GetProduct возвращает снимок товара
func (r *MemoryRepository) GetProduct(ctx context.Context, productID int64) (repository.Product, error) {
	p, err := r.lookup(productID)
	if err != nil {
		return repository.Product{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.data, nil
}

// Reserve резервирует amount единиц товара.
// Проверка доступности и инкремент reserved выполняются под одним мьютексом
func (r *MemoryRepository) Reserve(ctx context.Context, productID, amount int64) error {
	p, err := r.lookup(productID)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	available := p.data.Quantity - p.data.Reserved
	if available < amount {
		return repository.ErrInsufficientStock
	}

	p.data.Reserved += amount
	return nil
}

// Commit подтверждает резерв: quantity -= reserved; reserved = 0.
// Повторный Commit/Release для уже обработанного заказа - no-op
func (r *MemoryRepository) Commit(ctx context.Context, orderID, productID int64) error {
	p, err := r.lookup(productID)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, done := p.processed[orderID]; done {
		return nil
	}

	p.data.Quantity -= p.data.Reserved
	p.data.Reserved = 0
	p.processed[orderID] = outcomeCommitted
	return nil
}

// Release освобождает резерв: reserved = 0, quantity не меняется.
// Повторный Release/Commit для уже обработанного заказа - no-op
func (r *MemoryRepository) Release(ctx context.Context, orderID, productID int64) error {
	p, err := r.lookup(productID)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, done := p.processed[orderID]; done {
		return nil
	}

	p.data.Reserved = 0
	p.processed[orderID] = outcomeReleased
	return nil
}

// lookup находит запись товара под read-локом карты
func (r *MemoryRepository) lookup(productID int64) (*product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.products[productID]
	if !exists {
		return nil, repository.ErrNotFound
	}
	return p, nil
}
