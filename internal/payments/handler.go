package payments

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"storefront-backend/internal/web"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type processRequest struct {
	OrderID   string `json:"order_id"`
	CardToken string `json:"card_token"`
}

func (h *Handler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		web.WriteError(w, h.logger, http.StatusBadRequest, "missing userId parameter")
		return
	}

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrderID == "" || req.CardToken == "" {
		web.WriteError(w, h.logger, http.StatusBadRequest, "order_id and card_token are required")
		return
	}

	payment, err := h.service.Process(r.Context(), req.OrderID, req.CardToken, userID)
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, payment)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		web.WriteError(w, h.logger, http.StatusBadRequest, "missing userId parameter")
		return
	}

	payment, err := h.service.GetByID(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, payment)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		web.WriteError(w, h.logger, http.StatusBadRequest, "missing userId parameter")
		return
	}

	payments, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, payments)
}

func (h *Handler) HandleListPaged(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		web.WriteError(w, h.logger, http.StatusBadRequest, "missing userId parameter")
		return
	}

	page, size := web.ParsePageParams(r)
	result, err := h.service.ListByUserPaged(r.Context(), userID, page, size)
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, result)
}
