package orders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/messaging"
	"storefront-backend/internal/web"
)

type Store interface {
	Create(ctx context.Context, userID string, cart map[string]int, shipping domain.ShippingInfo) (*domain.Order, error)
	GetByID(ctx context.Context, orderID, userID string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListByUserPaged(ctx context.Context, userID string, page, size int) (domain.Page[domain.Order], error)
}

type Handler struct {
	store    Store
	producer *messaging.Producer
	logger   *slog.Logger
}

func NewHandler(store Store, producer *messaging.Producer, logger *slog.Logger) *Handler {
	return &Handler{
		store:    store,
		producer: producer,
		logger:   logger,
	}
}

type createOrderRequest struct {
	UserID    string         `json:"user_id"`
	CartItems map[string]int `json:"cart_items"`
	domain.ShippingInfo
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.store.Create(r.Context(), req.UserID, req.CartItems, req.ShippingInfo)
	if err != nil {
		h.logger.Error("failed to create order", "error", err, "user_id", req.UserID)
		web.WriteDomainError(w, h.logger, err)
		return
	}

	if h.producer != nil {
		event := domain.OrderCreatedEvent{
			OrderID:    order.ID,
			UserID:     order.UserID,
			Items:      order.Items,
			TotalCents: order.TotalCents,
			Timestamp:  order.CreatedAt,
		}
		if err := h.producer.Publish(r.Context(), order.ID, event); err != nil {
			h.logger.Error("failed to publish order created event", "error", err, "order_id", order.ID)
		}
	}

	h.logger.Info("order created", "order_id", order.ID, "user_id", order.UserID, "total_cents", order.TotalCents)
	web.WriteJSON(w, h.logger, http.StatusOK, order)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("id")
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		web.WriteError(w, h.logger, http.StatusBadRequest, "missing userId parameter")
		return
	}

	order, err := h.store.GetByID(r.Context(), orderID, userID)
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, order)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("id")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	order, err := h.store.UpdateStatus(r.Context(), orderID, status)
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("order status updated", "order_id", order.ID, "status", order.Status)
	web.WriteJSON(w, h.logger, http.StatusOK, order)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		web.WriteError(w, h.logger, http.StatusBadRequest, "missing userId parameter")
		return
	}

	orders, err := h.store.ListByUser(r.Context(), userID)
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, orders)
}

func (h *Handler) HandleListPaged(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		web.WriteError(w, h.logger, http.StatusBadRequest, "missing userId parameter")
		return
	}

	page, size := web.ParsePageParams(r)
	result, err := h.store.ListByUserPaged(r.Context(), userID, page, size)
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, result)
}
