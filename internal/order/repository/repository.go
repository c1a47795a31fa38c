package repository

import (
	"context"
	"errors"
	"time"
)

// Status представляет состояние заказа в саге.
// Переходы: Created -> AwaitingPayment -> Confirmed | Failed.
// Из AwaitingPayment заказ выходит ровно один раз.
type Status string

const (
	StatusCreated         Status = "created"
	StatusAwaitingPayment Status = "awaiting_payment"
	StatusConfirmed       Status = "confirmed"
	StatusFailed          Status = "failed"
)

// Order представляет доменную модель заказа.
// Хранится только маскированный номер карты; полный платёжный инструмент
// живёт лишь в payload события order.created.
type Order struct {
	ID         int64
	ProductID  int64
	MerchantID int64
	BuyerID    int64
	MaskedCard string
	TotalPrice float64
	Discount   float64
	Status     Status
	CreatedAt  time.Time
}

// OutboxEvent - строка transactional outbox: сериализованное событие,
// сохранённое атомарно с заказом и опубликованное позже dispatcher-ом.
// После рестарта pending строки публикуются заново - заказ в
// AwaitingPayment никогда не остаётся без события.
type OutboxEvent struct {
	EventID   string
	Topic     string
	Key       string
	Payload   []byte
	CreatedAt time.Time
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=OrderRepository --dir=. --output=./mocks --outpkg=mocks

// OrderRepository определяет интерфейс для работы с хранилищем заказов
// Service слой зависит от этого интерфейса, а не от конкретной реализации
type OrderRepository interface {
	// Create присваивает заказу монотонный id и атомарно сохраняет его
	// в статусе AwaitingPayment вместе со строкой outbox. makeEvent
	// вызывается с присвоенным id; его ошибка откатывает всю запись.
	Create(ctx context.Context, order Order, makeEvent func(orderID int64) (OutboxEvent, error)) (int64, error)

	// GetByID получает заказ по id
	// Возвращает ErrNotFound, если заказ не найден
	GetByID(ctx context.Context, id int64) (Order, error)

	// TransitionStatus переводит заказ из AwaitingPayment в to.
	// Возвращает false, если заказ уже покинул AwaitingPayment
	// (повторная доставка исхода оплаты), и ErrNotFound для неизвестного id.
	TransitionStatus(ctx context.Context, id int64, to Status) (bool, error)

	// GetPendingOutboxEvents возвращает неопубликованные строки outbox
	// в порядке создания, не более limit
	GetPendingOutboxEvents(ctx context.Context, limit int) ([]OutboxEvent, error)

	// MarkOutboxDispatched отмечает строку outbox опубликованной
	MarkOutboxDispatched(ctx context.Context, eventID string) error
}

// ErrNotFound возвращается, когда заказ не найден в хранилище
var ErrNotFound = errors.New("order not found")
