package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shestoi/minimarket/internal/inventory/repository"
	"github.com/shestoi/minimarket/internal/inventory/service"
)

// Handler содержит HTTP-обработчики Inventory Service
type Handler struct {
	logger           *zap.Logger
	inventoryService *service.InventoryService
}

// NewHandler создаёт новый HTTP handler
func NewHandler(logger *zap.Logger, inventoryService *service.InventoryService) *Handler {
	return &Handler{
		logger:           logger,
		inventoryService: inventoryService,
	}
}

// ProductRequest представляет запрос на создание товара
type ProductRequest struct {
	MerchantID  *int64   `json:"merchantId"`
	ProductName *string  `json:"productName"`
	Price       *float64 `json:"price"`
	Quantity    *int64   `json:"quantity"`
}

// ProductResponse представляет товар в HTTP ответе (без id)
type ProductResponse struct {
	MerchantID  int64   `json:"merchantId"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Quantity    int64   `json:"quantity"`
	Reserved    int64   `json:"reserved"`
}

// ReserveRequest представляет запрос на резервирование товара
type ReserveRequest struct {
	Amount *int64 `json:"amount"`
}

// PostProducts обрабатывает POST /products - регистрацию товара
func (h *Handler) PostProducts(w http.ResponseWriter, r *http.Request) {
	var reqBody ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if reqBody.MerchantID == nil || reqBody.ProductName == nil || reqBody.Price == nil || reqBody.Quantity == nil {
		writeError(w, http.StatusBadRequest, "merchantId, productName, price and quantity are required")
		return
	}
	if *reqBody.Quantity < 0 || *reqBody.Price < 0 {
		writeError(w, http.StatusBadRequest, "price and quantity must be non-negative")
		return
	}

	id, err := h.inventoryService.CreateProduct(r.Context(), repository.Product{
		MerchantID: *reqBody.MerchantID,
		Name:       *reqBody.ProductName,
		Price:      *reqBody.Price,
		Quantity:   *reqBody.Quantity,
	})
	if err != nil {
		h.logger.Error("failed to create product", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"productId": id})
}

// GetProduct обрабатывает GET /products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	product, err := h.inventoryService.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product does not exist")
			return
		}
		h.logger.Error("failed to get product", zap.Error(err), zap.Int64("product_id", id))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, ProductResponse{
		MerchantID:  product.MerchantID,
		ProductName: product.Name,
		Price:       product.Price,
		Quantity:    product.Quantity,
		Reserved:    product.Reserved,
	})
}

// PostReserve обрабатывает POST /products/{id}/reserve
func (h *Handler) PostReserve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var reqBody ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if reqBody.Amount == nil || *reqBody.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be > 0")
		return
	}

	err := h.inventoryService.Reserve(r.Context(), id, *reqBody.Amount)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "Product does not exist")
		case errors.Is(err, repository.ErrInsufficientStock):
			writeError(w, http.StatusBadRequest, "Not enough stock to reserve")
		default:
			h.logger.Error("failed to reserve product", zap.Error(err), zap.Int64("product_id", id))
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Reserved %d item(s) of product %d", *reqBody.Amount, id),
	})
}

// pathID разбирает {id} из пути; при ошибке пишет 404 и возвращает false
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Product does not exist")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, map[string]string{"error": reason})
}
