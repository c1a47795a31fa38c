package repository

import (
	"context"
	"errors"
)

// Buyer представляет покупателя
type Buyer struct {
	ID    int64
	Name  string
	SSN   string
	Email string
	Phone string
}

// ErrNotFound возвращается, когда покупатель не найден
var ErrNotFound = errors.New("buyer not found")

// BuyerRepository определяет интерфейс хранилища покупателей
type BuyerRepository interface {
	Create(ctx context.Context, buyer Buyer) (int64, error)
	GetByID(ctx context.Context, id int64) (Buyer, error)
}
