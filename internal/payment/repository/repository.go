package repository

import (
	"context"
	"errors"
	"time"
)

// Исходы проверки платёжного инструмента
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// PaymentRecord представляет исход проверки платежа по заказу.
// На заказ существует не более одной записи: повторная доставка
// order.created не создаёт дубликат.
type PaymentRecord struct {
	OrderID     int64
	Status      string
	ProcessedAt time.Time
}

// PaymentRepository определяет интерфейс для работы с хранилищем платежей
type PaymentRepository interface {
	// GetByOrderID возвращает запись по заказу
	// Возвращает ErrNotFound, если записи нет
	GetByOrderID(ctx context.Context, orderID int64) (PaymentRecord, error)

	// Save сохраняет запись об исходе проверки
	Save(ctx context.Context, record PaymentRecord) error
}

// ErrNotFound возвращается, когда запись о платеже не найдена
var ErrNotFound = errors.New("payment record not found")
