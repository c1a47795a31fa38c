package repository

import (
	"context"
	"errors"
)

// Product представляет товар на складе.
// Инвариант: 0 <= Reserved <= Quantity. Доступно к резервированию
// Quantity - Reserved.
type Product struct {
	ID         int64
	MerchantID int64
	Name       string
	Price      float64
	Quantity   int64
	Reserved   int64
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=InventoryRepository --dir=. --output=./mocks --outpkg=mocks

// InventoryRepository определяет интерфейс для работы с хранилищем инвентаря
// Service слой зависит от этого интерфейса, а не от конкретной реализации
type InventoryRepository interface {
	// CreateProduct сохраняет новый товар и возвращает присвоенный id
	// Id присваиваются монотонно, начиная с 1
	CreateProduct(ctx context.Context, product Product) (int64, error)

	// GetProduct возвращает снимок товара
	// Возвращает ErrNotFound, если товар не найден
	GetProduct(ctx context.Context, productID int64) (Product, error)

	// Reserve атомарно проверяет quantity - reserved >= amount и
	// увеличивает reserved. Проверка и инкремент выполняются в одной
	// критической секции: конкурентные Reserve по одному товару никогда
	// не резервируют больше, чем есть в наличии.
	// Возвращает ErrNotFound или ErrInsufficientStock
	Reserve(ctx context.Context, productID, amount int64) error

	// Commit подтверждает резерв после успешной оплаты:
	// quantity -= reserved; reserved = 0.
	// Идемпотентен по orderID: повторная доставка того же заказа - no-op
	Commit(ctx context.Context, orderID, productID int64) error

	// Release освобождает резерв после неуспешной оплаты: reserved = 0,
	// quantity не меняется. Идемпотентен по orderID
	Release(ctx context.Context, orderID, productID int64) error
}

// ErrNotFound возвращается, когда товар не найден в хранилище
var ErrNotFound = errors.New("product not found")

// ErrInsufficientStock возвращается, когда доступного остатка не хватает
var ErrInsufficientStock = errors.New("insufficient stock")
