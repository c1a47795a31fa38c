package service

import (
	"context"
	"errors"
)

// Merchant - данные продавца, полученные из directory сервиса
type Merchant struct {
	Email          string
	AllowsDiscount bool
}

// Buyer - данные покупателя, полученные из directory сервиса
type Buyer struct {
	Email string
}

// Product - снимок товара, полученный из Inventory Service
type Product struct {
	MerchantID int64
	Price      float64
	Quantity   int64
	Reserved   int64
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=MerchantDirectory --dir=. --output=./mocks --outpkg=mocks
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=BuyerDirectory --dir=. --output=./mocks --outpkg=mocks
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=InventoryClient --dir=. --output=./mocks --outpkg=mocks

// MerchantDirectory определяет интерфейс lookup-а продавцов.
// Реализуется REST клиентом, в тестах подменяется моком.
type MerchantDirectory interface {
	// GetMerchant возвращает ErrUnknownMerchant для неизвестного id
	// и ErrUpstreamTimeout при недоступности сервиса
	GetMerchant(ctx context.Context, merchantID int64) (Merchant, error)
}

// BuyerDirectory определяет интерфейс lookup-а покупателей
type BuyerDirectory interface {
	// GetBuyer возвращает ErrUnknownBuyer для неизвестного id
	// и ErrUpstreamTimeout при недоступности сервиса
	GetBuyer(ctx context.Context, buyerID int64) (Buyer, error)
}

// InventoryClient определяет интерфейс работы с Inventory Service
type InventoryClient interface {
	// GetProduct возвращает ErrUnknownProduct для неизвестного id
	GetProduct(ctx context.Context, productID int64) (Product, error)

	// Reserve резервирует amount единиц товара.
	// Возвращает ErrInsufficientStock при нехватке остатка.
	Reserve(ctx context.Context, productID, amount int64) error
}

// Ошибки создания заказа. Handler отображает их в HTTP статусы:
// все кроме ErrUpstreamTimeout - это 400 с текстом причины.
var (
	ErrUnknownMerchant         = errors.New("Merchant does not exist")
	ErrUnknownBuyer            = errors.New("Buyer does not exist")
	ErrUnknownProduct          = errors.New("Product does not exist")
	ErrProductMerchantMismatch = errors.New("Product does not belong to merchant")
	ErrSoldOut                 = errors.New("Product is sold out")
	ErrDiscountNotAllowed      = errors.New("Merchant does not allow discount")
	ErrInsufficientStock       = errors.New("Not enough stock to reserve")
	ErrUpstreamTimeout         = errors.New("upstream service timed out")
)
