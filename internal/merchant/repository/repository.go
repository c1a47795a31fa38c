package repository

import (
	"context"
	"errors"
)

// Merchant представляет продавца
type Merchant struct {
	ID             int64
	Name           string
	SSN            string
	Email          string
	Phone          string
	AllowsDiscount bool
}

// ErrNotFound возвращается, когда продавец не найден
var ErrNotFound = errors.New("merchant not found")

// MerchantRepository определяет интерфейс хранилища продавцов
type MerchantRepository interface {
	Create(ctx context.Context, merchant Merchant) (int64, error)
	GetByID(ctx context.Context, id int64) (Merchant, error)
}
