package qa

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/web"
)

type Store interface {
	Ask(ctx context.Context, question *domain.ProductQuestion) error
	GetByID(ctx context.Context, id string) (*domain.ProductQuestion, error)
	ListPublicByProduct(ctx context.Context, productID string, page, size int) (domain.Page[domain.ProductQuestion], error)
	ListMostHelpful(ctx context.Context, productID string, page, size int) (domain.Page[domain.ProductQuestion], error)
	ListByUser(ctx context.Context, userID string) ([]domain.ProductQuestion, error)
	ListUnanswered(ctx context.Context, productID string) ([]domain.ProductQuestion, error)
	Answer(ctx context.Context, questionID, answererID, text string) (*domain.ProductQuestion, error)
	VoteHelpful(ctx context.Context, questionID string) (*domain.ProductQuestion, error)
	Report(ctx context.Context, questionID string) (*domain.ProductQuestion, error)
	Delete(ctx context.Context, questionID string) error
}

type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

type askRequest struct {
	UserID   string `json:"user_id"`
	Question string `json:"question"`
}

func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	question := &domain.ProductQuestion{
		ProductID: r.PathValue("productId"),
		UserID:    req.UserID,
		Question:  req.Question,
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
	page, size := web.ParsePageParams(r)
	productID := r.PathValue("productId")

	var (
		result domain.Page[domain.ProductQuestion]
		err    error
	)
	if r.URL.Query().Get("sort") == "helpful" {
		result, err = h.store.ListMostHelpful(r.Context(), productID, page, size)
	} else {
		result, err = h.store.ListPublicByProduct(r.Context(), productID, page, size)
	}
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

func (h *Handler) HandleListUnanswered(w http.ResponseWriter, r *http.Request) {
	questions, err := h.store.ListUnanswered(r.Context(), r.PathValue("productId"))
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, questions)
}

type answerRequest struct {
	UserID string `json:"user_id"`
	Answer string `json:"answer"`
}

func (h *Handler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	question, err := h.store.Answer(r.Context(), r.PathValue("id"), req.UserID, req.Answer)
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, question)
}

func (h *Handler) HandleVoteHelpful(w http.ResponseWriter, r *http.Request) {
	question, err := h.store.VoteHelpful(r.Context(), r.PathValue("id"))
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, question)
}

func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	question, err := h.store.Report(r.Context(), r.PathValue("id"))
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, question)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
