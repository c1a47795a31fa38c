package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shestoi/minimarket/internal/merchant/repository"
)

// Handler содержит HTTP-обработчики Merchant Service.
// Сервис - плоский справочник, поэтому обработчики работают
// с репозиторием напрямую, без сервисного слоя.
type Handler struct {
	logger *zap.Logger
	repo   repository.MerchantRepository
}

// NewHandler создаёт новый HTTP handler
func NewHandler(logger *zap.Logger, repo repository.MerchantRepository) *Handler {
	return &Handler{
		logger: logger,
		repo:   repo,
	}
}

// MerchantRequest представляет запрос на регистрацию продавца
type MerchantRequest struct {
	Name           *string `json:"name"`
	SSN            *string `json:"ssn"`
	Email          *string `json:"email"`
	Phone          *string `json:"phoneNumber"`
	AllowsDiscount *bool   `json:"allowsDiscount"`
}

// MerchantResponse представляет продавца в HTTP ответе (без id)
type MerchantResponse struct {
	Name           string `json:"name"`
	SSN            string `json:"ssn"`
	Email          string `json:"email"`
	Phone          string `json:"phoneNumber"`
	AllowsDiscount bool   `json:"allowsDiscount"`
}

// PostMerchants обрабатывает POST /merchants - регистрацию продавца
func (h *Handler) PostMerchants(w http.ResponseWriter, r *http.Request) {
	var reqBody MerchantRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if reqBody.Name == nil || reqBody.SSN == nil || reqBody.Email == nil || reqBody.Phone == nil || reqBody.AllowsDiscount == nil {
		writeError(w, http.StatusBadRequest, "name, ssn, email, phoneNumber and allowsDiscount are required")
		return
	}

	id, err := h.repo.Create(r.Context(), repository.Merchant{
		Name:           *reqBody.Name,
		SSN:            *reqBody.SSN,
		Email:          *reqBody.Email,
		Phone:          *reqBody.Phone,
		AllowsDiscount: *reqBody.AllowsDiscount,
	})
	if err != nil {
		h.logger.Error("failed to create merchant", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("merchant created", zap.Int64("merchant_id", id))
	writeJSON(w, http.StatusCreated, map[string]int64{"merchantId": id})
}

// GetMerchant обрабатывает GET /merchants/{id}
func (h *Handler) GetMerchant(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Merchant does not exist")
		return
	}

	merchant, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Merchant does not exist")
			return
		}
		h.logger.Error("failed to get merchant", zap.Error(err), zap.Int64("merchant_id", id))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MerchantResponse{
		Name:           merchant.Name,
		SSN:            merchant.SSN,
		Email:          merchant.Email,
		Phone:          merchant.Phone,
		AllowsDiscount: merchant.AllowsDiscount,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, map[string]string{"error": reason})
}
