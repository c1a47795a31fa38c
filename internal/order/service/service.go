package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shestoi/minimarket/internal/order/repository"
	"github.com/shestoi/minimarket/pkg/event"
)

// lookupTimeout ограничивает каждый синхронный вызов внешнего сервиса.
// Таймаут до резервирования прерывает операцию без побочных эффектов.
const lookupTimeout = 3 * time.Second

// OrderService реализует синхронную часть саги оформления заказа:
// валидация ссылок, резервирование товара, атомарная запись заказа со
// строкой outbox. Асинхронную публикацию выполняет outbox dispatcher.
type OrderService struct {
	logger    *zap.Logger
	merchants MerchantDirectory
	buyers    BuyerDirectory
	inventory InventoryClient
	repo      repository.OrderRepository
}

// NewOrderService создаёт новый экземпляр OrderService
func NewOrderService(
	logger *zap.Logger,
	merchants MerchantDirectory,
	buyers BuyerDirectory,
	inventory InventoryClient,
	repo repository.OrderRepository,
) *OrderService {
	return &OrderService{
		logger:    logger,
		merchants: merchants,
		buyers:    buyers,
		inventory: inventory,
		repo:      repo,
	}
}

// CreateOrderInput - параметры создания заказа
type CreateOrderInput struct {
	ProductID  int64
	MerchantID int64
	BuyerID    int64
	Card       event.Card
	Discount   float64
}

// CreateOrder выполняет шаги создания заказа.
// До вызова Reserve ни одного побочного эффекта нет: любой отказ
// валидации оставляет систему нетронутой.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (int64, error) {
	merchant, err := s.lookupMerchant(ctx, input.MerchantID)
	if err != nil {
		return 0, err
	}

	buyer, err := s.lookupBuyer(ctx, input.BuyerID)
	if err != nil {
		return 0, err
	}

	product, err := s.lookupProduct(ctx, input.ProductID)
	if err != nil {
		return 0, err
	}

	if product.MerchantID != input.MerchantID {
		return 0, ErrProductMerchantMismatch
	}
	if product.Quantity <= product.Reserved {
		return 0, ErrSoldOut
	}
	if input.Discount != 0 && !merchant.AllowsDiscount {
		return 0, ErrDiscountNotAllowed
	}

	// Первый побочный эффект саги. Отказ здесь не оставляет
	// осиротевшего состояния - заказ ещё не записан.
	if err := s.inventory.Reserve(ctx, input.ProductID, 1); err != nil {
		return 0, err
	}

	totalPrice := product.Price * (1 - input.Discount)
	maskedCard := event.MaskCardNumber(input.Card.Number)

	order := repository.Order{
		ProductID:  input.ProductID,
		MerchantID: input.MerchantID,
		BuyerID:    input.BuyerID,
		MaskedCard: maskedCard,
		TotalPrice: totalPrice,
		Discount:   input.Discount,
	}

	// Заказ и order.created пишутся атомарно. Полный номер карты
	// попадает только в payload события.
	orderID, err := s.repo.Create(ctx, order, func(orderID int64) (repository.OutboxEvent, error) {
		e := event.OrderCreated{
			EventID:       uuid.New().String(),
			OccurredAt:    time.Now().UTC(),
			OrderID:       orderID,
			ProductID:     input.ProductID,
			MerchantID:    input.MerchantID,
			BuyerID:       input.BuyerID,
			Card:          input.Card,
			BuyerEmail:    buyer.Email,
			MerchantEmail: merchant.Email,
			Price:         product.Price,
			Discount:      input.Discount,
			TotalPrice:    totalPrice,
		}

		payload, err := event.Encode(e)
		if err != nil {
			return repository.OutboxEvent{}, fmt.Errorf("encode order.created: %w", err)
		}

		return repository.OutboxEvent{
			EventID: e.EventID,
			Topic:   e.Type(),
			Key:     e.Key(),
			Payload: payload,
		}, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to save order: %w", err)
	}

	s.logger.Info("order created",
		zap.Int64("order_id", orderID),
		zap.Int64("product_id", input.ProductID),
		zap.Int64("buyer_id", input.BuyerID),
		zap.Float64("total_price", totalPrice),
	)

	return orderID, nil
}

// GetOrder возвращает заказ по id
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (repository.Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

// HandleEvent обрабатывает исход оплаты: заказ переходит из
// AwaitingPayment в Confirmed либо Failed ровно один раз.
func (s *OrderService) HandleEvent(ctx context.Context, e event.Event) error {
	var (
		orderID int64
		to      repository.Status
	)

	switch ev := e.(type) {
	case event.PaymentSuccess:
		orderID, to = ev.OrderID, repository.StatusConfirmed
	case event.PaymentFailure:
		orderID, to = ev.OrderID, repository.StatusFailed
	default:
		s.logger.Warn("unexpected event type",
			zap.String("event_type", e.Type()),
		)
		return nil
	}

	moved, err := s.repo.TransitionStatus(ctx, orderID, to)
	if err != nil {
		// Retry не поможет неизвестному заказу; ack-аем с warning
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("payment outcome for unknown order",
				zap.Int64("order_id", orderID),
				zap.String("status", string(to)),
			)
			return nil
		}
		return err
	}

	if !moved {
		s.logger.Info("duplicate payment outcome ignored",
			zap.Int64("order_id", orderID),
			zap.String("status", string(to)),
		)
		return nil
	}

	s.logger.Info("order status updated",
		zap.Int64("order_id", orderID),
		zap.String("status", string(to)),
	)
	return nil
}

func (s *OrderService) lookupMerchant(ctx context.Context, merchantID int64) (Merchant, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()
	return s.merchants.GetMerchant(ctx, merchantID)
}

func (s *OrderService) lookupBuyer(ctx context.Context, buyerID int64) (Buyer, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()
	return s.buyers.GetBuyer(ctx, buyerID)
}

func (s *OrderService) lookupProduct(ctx context.Context, productID int64) (Product, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()
	return s.inventory.GetProduct(ctx, productID)
}
