package questions

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/web"
)

type Store interface {
	Ask(ctx context.Context, question *domain.Question) error
	GetByID(ctx context.Context, id string) (*domain.Question, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Question, error)
	ListByProductPaged(ctx context.Context, productID string, page, size int) (domain.Page[domain.Question], error)
	ListByUser(ctx context.Context, userID string) ([]domain.Question, error)
	Answer(ctx context.Context, questionID, adminID, text string) (*domain.Question, error)
	UpdateAnswer(ctx context.Context, questionID, adminID, text string) (*domain.Question, error)
	Delete(ctx context.Context, questionID, userID string) error
}

type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

type askRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	question := &domain.Question{
		ProductID: r.PathValue("productId"),
		UserID:    req.UserID,
		Text:      req.Text,
	}
	if err := h.store.Ask(r.Context(), question); err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusCreated, question)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	question, err := h.store.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, question)
}

func (h *Handler) HandleListByProduct(w http.ResponseWriter, r *http.Request) {
	questions, err := h.store.ListByProduct(r.Context(), r.PathValue("productId"))
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, questions)
}

func (h *Handler) HandleListByProductPaged(w http.ResponseWriter, r *http.Request) {
	page, size := web.ParsePageParams(r)

	result, err := h.store.ListByProductPaged(r.Context(), r.PathValue("productId"), page, size)
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, result)
}

func (h *Handler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	questions, err := h.store.ListByUser(r.Context(), r.PathValue("userId"))
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, questions)
}

type answerRequest struct {
	AdminID string `json:"admin_id"`
	Text    string `json:"text"`
}

func (h *Handler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	question, err := h.store.Answer(r.Context(), r.PathValue("id"), req.AdminID, req.Text)
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusCreated, question)
}

func (h *Handler) HandleUpdateAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	question, err := h.store.UpdateAnswer(r.Context(), r.PathValue("id"), req.AdminID, req.Text)
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, question)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		web.WriteError(w, h.logger, http.StatusBadRequest, "missing userId parameter")
		return
	}

	if err := h.store.Delete(r.Context(), r.PathValue("id"), userID); err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
