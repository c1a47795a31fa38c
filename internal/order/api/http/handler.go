package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shestoi/minimarket/internal/order/repository"
	"github.com/shestoi/minimarket/internal/order/service"
	"github.com/shestoi/minimarket/pkg/event"
)

// Handler содержит HTTP-обработчики Order Service
type Handler struct {
	logger       *zap.Logger
	orderService *service.OrderService
}

// NewHandler создаёт новый HTTP handler
func NewHandler(logger *zap.Logger, orderService *service.OrderService) *Handler {
	return &Handler{
		logger:       logger,
		orderService: orderService,
	}
}

// CreditCard представляет платёжный инструмент в HTTP запросе
type CreditCard struct {
	CardNumber      *string `json:"cardNumber"`
	ExpirationMonth *int    `json:"expirationMonth"`
	ExpirationYear  *int    `json:"expirationYear"`
	CVC             *int    `json:"cvc"`
}

// OrderRequest представляет HTTP запрос на создание заказа
type OrderRequest struct {
	ProductID  *int64      `json:"productId"`
	MerchantID *int64      `json:"merchantId"`
	BuyerID    *int64      `json:"buyerId"`
	CreditCard *CreditCard `json:"creditCard"`
	Discount   float64     `json:"discount"`
}

// OrderResponse представляет заказ в HTTP ответе (без id)
type OrderResponse struct {
	ProductID  int64   `json:"productId"`
	MerchantID int64   `json:"merchantId"`
	BuyerID    int64   `json:"buyerId"`
	CardNumber string  `json:"cardNumber"`
	TotalPrice float64 `json:"totalPrice"`
	Discount   float64 `json:"discount"`
	Status     string  `json:"status"`
}

// PostOrders обрабатывает POST /orders - создание заказа
func (h *Handler) PostOrders(w http.ResponseWriter, r *http.Request) {
	var reqBody OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if reqBody.ProductID == nil || reqBody.MerchantID == nil || reqBody.BuyerID == nil || reqBody.CreditCard == nil {
		writeError(w, http.StatusBadRequest, "productId, merchantId, buyerId and creditCard are required")
		return
	}
	card := reqBody.CreditCard
	if card.CardNumber == nil || card.ExpirationMonth == nil || card.ExpirationYear == nil || card.CVC == nil {
		writeError(w, http.StatusBadRequest, "creditCard must contain cardNumber, expirationMonth, expirationYear and cvc")
		return
	}
	if reqBody.Discount < 0 || reqBody.Discount >= 1 {
		writeError(w, http.StatusBadRequest, "discount must be in [0, 1)")
		return
	}

	orderID, err := h.orderService.CreateOrder(r.Context(), service.CreateOrderInput{
		ProductID:  *reqBody.ProductID,
		MerchantID: *reqBody.MerchantID,
		BuyerID:    *reqBody.BuyerID,
		Card: event.Card{
			Number:          *card.CardNumber,
			ExpirationMonth: *card.ExpirationMonth,
			ExpirationYear:  *card.ExpirationYear,
			CVC:             *card.CVC,
		},
		Discount: reqBody.Discount,
	})
	if err != nil {
		h.writeCreateOrderError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"orderId": orderID})
}

// GetOrder обрабатывает GET /orders/{id}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Order does not exist")
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Order does not exist")
			return
		}
		h.logger.Error("failed to get order", zap.Error(err), zap.Int64("order_id", id))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, OrderResponse{
		ProductID:  order.ProductID,
		MerchantID: order.MerchantID,
		BuyerID:    order.BuyerID,
		CardNumber: order.MaskedCard,
		TotalPrice: order.TotalPrice,
		Discount:   order.Discount,
		Status:     string(order.Status),
	})
}

// writeCreateOrderError отображает ошибки создания заказа в HTTP статусы:
// причины отказа валидации и нехватка остатка - 400 с текстом причины,
// таймаут upstream-а - 504
func (h *Handler) writeCreateOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownMerchant),
		errors.Is(err, service.ErrUnknownBuyer),
		errors.Is(err, service.ErrUnknownProduct),
		errors.Is(err, service.ErrProductMerchantMismatch),
		errors.Is(err, service.ErrSoldOut),
		errors.Is(err, service.ErrDiscountNotAllowed),
		errors.Is(err, service.ErrInsufficientStock):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUpstreamTimeout):
		writeError(w, http.StatusGatewayTimeout, "upstream service timed out")
	default:
		h.logger.Error("order creation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, map[string]string{"error": reason})
}
