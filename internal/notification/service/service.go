package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/shestoi/minimarket/internal/notification/mail"
	"github.com/shestoi/minimarket/internal/notification/templates"
	"github.com/shestoi/minimarket/pkg/event"
)

// NotificationService превращает события саги в письма покупателю
// и продавцу. Сервис терминальный: ошибки отправки логируются,
// но не возвращаются, чтобы недоступность почты не зацикливала
// повторную доставку уже обработанных событий.
type NotificationService struct {
	logger   *zap.Logger
	sender   mail.Sender
	renderer *templates.Renderer
}

// NewNotificationService создаёт новый экземпляр NotificationService
func NewNotificationService(logger *zap.Logger, sender mail.Sender, renderer *templates.Renderer) *NotificationService {
	return &NotificationService{
		logger:   logger,
		sender:   sender,
		renderer: renderer,
	}
}

// HandleEvent рендерит письмо по типу события и рассылает его
// обоим участникам заказа
func (s *NotificationService) HandleEvent(ctx context.Context, e event.Event) error {
	var (
		message       templates.Message
		err           error
		buyerEmail    string
		merchantEmail string
		orderID       int64
	)

	switch ev := e.(type) {
	case event.OrderCreated:
		message, err = s.renderer.RenderOrderCreated(ev)
		buyerEmail, merchantEmail, orderID = ev.BuyerEmail, ev.MerchantEmail, ev.OrderID
	case event.PaymentSuccess:
		message, err = s.renderer.RenderPaymentSuccess(ev)
		buyerEmail, merchantEmail, orderID = ev.BuyerEmail, ev.MerchantEmail, ev.OrderID
	case event.PaymentFailure:
		message, err = s.renderer.RenderPaymentFailure(ev)
		buyerEmail, merchantEmail, orderID = ev.BuyerEmail, ev.MerchantEmail, ev.OrderID
	default:
		s.logger.Warn("unexpected event type",
			zap.String("event_type", e.Type()),
		)
		return nil
	}

	if err != nil {
		s.logger.Error("failed to render notification",
			zap.Error(err),
			zap.String("event_type", e.Type()),
			zap.Int64("order_id", orderID),
		)
		return nil
	}

	s.notify(ctx, buyerEmail, message, orderID)
	s.notify(ctx, merchantEmail, message, orderID)
	return nil
}

// notify отправляет письмо одному адресату, ошибку только логирует
func (s *NotificationService) notify(ctx context.Context, to string, message templates.Message, orderID int64) {
	if to == "" {
		s.logger.Warn("skipping notification without recipient",
			zap.Int64("order_id", orderID),
			zap.String("subject", message.Subject),
		)
		return
	}

	if err := s.sender.Send(ctx, to, message.Subject, message.Body); err != nil {
		s.logger.Error("failed to send notification",
			zap.Error(err),
			zap.String("to", to),
			zap.Int64("order_id", orderID),
			zap.String("subject", message.Subject),
		)
		return
	}

	s.logger.Info("notification sent",
		zap.String("to", to),
		zap.Int64("order_id", orderID),
		zap.String("subject", message.Subject),
	)
}
