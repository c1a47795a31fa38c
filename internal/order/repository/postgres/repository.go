package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/minimarket/internal/order/repository"
)

// Repository реализует OrderRepository используя PostgreSQL.
// Заказ и строка outbox пишутся в одной транзакции: либо заказ
// существует вместе со своим событием, либо не существует вовсе.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository создаёт новый PostgreSQL репозиторий
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool: pool,
	}
}

// Create сохраняет заказ в статусе AwaitingPayment вместе со строкой outbox
func (r *Repository) Create(ctx context.Context, order repository.Order, makeEvent func(orderID int64) (repository.OutboxEvent, error)) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO orders (product_id, merchant_id, buyer_id, masked_card, total_price, discount, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		order.ProductID, order.MerchantID, order.BuyerID,
		order.MaskedCard, order.TotalPrice, order.Discount,
		repository.StatusAwaitingPayment).Scan(&id)
	if err != nil {
		return 0, err
	}

	event, err := makeEvent(id)
	if err != nil {
		return 0, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO order_outbox (event_id, topic, key, payload)
		 VALUES ($1, $2, $3, $4)`,
		event.EventID, event.Topic, event.Key, event.Payload)
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, err
	}

	return id, nil
}

// GetByID получает заказ по id из PostgreSQL
func (r *Repository) GetByID(ctx context.Context, id int64) (repository.Order, error) {
	var order repository.Order
	err := r.pool.QueryRow(ctx,
		`SELECT id, product_id, merchant_id, buyer_id, masked_card, total_price, discount, status, created_at
		 FROM orders
		 WHERE id = $1`,
		id).Scan(&order.ID, &order.ProductID, &order.MerchantID, &order.BuyerID,
		&order.MaskedCard, &order.TotalPrice, &order.Discount, &order.Status, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Order{}, repository.ErrNotFound
		}
		return repository.Order{}, err
	}

	return order, nil
}

// TransitionStatus переводит заказ из AwaitingPayment в to.
// Guard в WHERE делает переход exactly-once на уровне БД.
func (r *Repository) TransitionStatus(ctx context.Context, id int64, to repository.Status) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1 AND status = $3`,
		id, to, repository.StatusAwaitingPayment)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	// Отличаем уже переведённый заказ от несуществующего
	var exists bool
	err = r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, repository.ErrNotFound
	}
	return false, nil
}

// GetPendingOutboxEvents возвращает неопубликованные строки outbox
func (r *Repository) GetPendingOutboxEvents(ctx context.Context, limit int) ([]repository.OutboxEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT event_id, topic, key, payload, created_at
		 FROM order_outbox
		 WHERE dispatched_at IS NULL
		 ORDER BY created_at, event_id
		 LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]repository.OutboxEvent, 0)
	for rows.Next() {
		var event repository.OutboxEvent
		if err := rows.Scan(&event.EventID, &event.Topic, &event.Key, &event.Payload, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// MarkOutboxDispatched отмечает строку outbox опубликованной
func (r *Repository) MarkOutboxDispatched(ctx context.Context, eventID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE order_outbox SET dispatched_at = now() WHERE event_id = $1`,
		eventID)
	return err
}
