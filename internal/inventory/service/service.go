package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/shestoi/minimarket/internal/inventory/repository"
	"github.com/shestoi/minimarket/pkg/event"
)

// InventoryService содержит бизнес-логику работы с инвентарём.
// Зависит от интерфейса InventoryRepository, а не от конкретной реализации.
// Один и тот же экземпляр обслуживает HTTP-запросы и consumer платёжных
// событий; всё разделяемое состояние сериализовано внутри репозитория.
type InventoryService struct {
	logger *zap.Logger
	repo   repository.InventoryRepository
}

// NewInventoryService создаёт новый экземпляр InventoryService
func NewInventoryService(logger *zap.Logger, repo repository.InventoryRepository) *InventoryService {
	return &InventoryService{
		logger: logger,
		repo:   repo,
	}
}

// CreateProduct регистрирует новый товар и возвращает его id
func (s *InventoryService) CreateProduct(ctx context.Context, product repository.Product) (int64, error) {
	id, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return 0, err
	}

	s.logger.Info("product created",
		zap.Int64("product_id", id),
		zap.Int64("merchant_id", product.MerchantID),
		zap.Int64("quantity", product.Quantity),
	)
	return id, nil
}

// GetProduct возвращает снимок товара
func (s *InventoryService) GetProduct(ctx context.Context, productID int64) (repository.Product, error) {
	return s.repo.GetProduct(ctx, productID)
}

// Reserve резервирует amount единиц товара
func (s *InventoryService) Reserve(ctx context.Context, productID, amount int64) error {
	err := s.repo.Reserve(ctx, productID, amount)
	if err != nil {
		s.logger.Info("reserve rejected",
			zap.Error(err),
			zap.Int64("product_id", productID),
			zap.Int64("amount", amount),
		)
		return err
	}

	s.logger.Info("stock reserved",
		zap.Int64("product_id", productID),
		zap.Int64("amount", amount),
	)
	return nil
}

// HandleEvent обрабатывает события исхода оплаты:
// payment.success подтверждает резерв, payment.failure освобождает его
// (компенсирующее действие). Неизвестный товар логируется и ack-ается:
// retry здесь не поможет, а дубликаты блокировать нельзя.
func (s *InventoryService) HandleEvent(ctx context.Context, e event.Event) error {
	switch ev := e.(type) {
	case event.PaymentSuccess:
		err := s.repo.Commit(ctx, ev.OrderID, ev.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("payment.success for unknown product",
				zap.Int64("order_id", ev.OrderID),
				zap.Int64("product_id", ev.ProductID),
			)
			return nil
		}
		if err != nil {
			return err
		}

		s.logger.Info("reservation committed",
			zap.Int64("order_id", ev.OrderID),
			zap.Int64("product_id", ev.ProductID),
		)
		return nil

	case event.PaymentFailure:
		err := s.repo.Release(ctx, ev.OrderID, ev.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("payment.failure for unknown product",
				zap.Int64("order_id", ev.OrderID),
				zap.Int64("product_id", ev.ProductID),
			)
			return nil
		}
		if err != nil {
			return err
		}

		s.logger.Info("reservation released",
			zap.Int64("order_id", ev.OrderID),
			zap.Int64("product_id", ev.ProductID),
		)
		return nil

	default:
		// Подписка покрывает только payment.*; всё прочее игнорируем
		s.logger.Warn("unexpected event type",
			zap.String("event_type", e.Type()),
		)
		return nil
	}
}
