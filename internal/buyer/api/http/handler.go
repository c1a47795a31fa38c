package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shestoi/minimarket/internal/buyer/repository"
)

// Handler содержит HTTP-обработчики Buyer Service.
// Сервис - плоский справочник, поэтому обработчики работают
// с репозиторием напрямую, без сервисного слоя.
type Handler struct {
	logger *zap.Logger
	repo   repository.BuyerRepository
}

// NewHandler создаёт новый HTTP handler
func NewHandler(logger *zap.Logger, repo repository.BuyerRepository) *Handler {
	return &Handler{
		logger: logger,
		repo:   repo,
	}
}

// BuyerRequest представляет запрос на регистрацию покупателя
type BuyerRequest struct {
	Name  *string `json:"name"`
	SSN   *string `json:"ssn"`
	Email *string `json:"email"`
	Phone *string `json:"phoneNumber"`
}

// BuyerResponse представляет покупателя в HTTP ответе (без id)
type BuyerResponse struct {
	Name  string `json:"name"`
	SSN   string `json:"ssn"`
	Email string `json:"email"`
	Phone string `json:"phoneNumber"`
}

// PostBuyers обрабатывает POST /buyers - регистрацию покупателя
func (h *Handler) PostBuyers(w http.ResponseWriter, r *http.Request) {
	var reqBody BuyerRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if reqBody.Name == nil || reqBody.SSN == nil || reqBody.Email == nil || reqBody.Phone == nil {
		writeError(w, http.StatusBadRequest, "name, ssn, email and phoneNumber are required")
		return
	}

	id, err := h.repo.Create(r.Context(), repository.Buyer{
		Name:  *reqBody.Name,
		SSN:   *reqBody.SSN,
		Email: *reqBody.Email,
		Phone: *reqBody.Phone,
	})
	if err != nil {
		h.logger.Error("failed to create buyer", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("buyer created", zap.Int64("buyer_id", id))
	writeJSON(w, http.StatusCreated, map[string]int64{"buyerId": id})
}

// GetBuyer обрабатывает GET /buyers/{id}
func (h *Handler) GetBuyer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Buyer does not exist")
		return
	}

	buyer, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Buyer does not exist")
			return
		}
		h.logger.Error("failed to get buyer", zap.Error(err), zap.Int64("buyer_id", id))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, BuyerResponse{
		Name:  buyer.Name,
		SSN:   buyer.SSN,
		Email: buyer.Email,
		Phone: buyer.Phone,
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
