package comments

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/web"
)

type Store interface {
	Add(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	ListByProduct(ctx context.Context, productID string, page, size int) (domain.Page[domain.Comment], error)
	ListStarred(ctx context.Context, productID string, page, size int) (domain.Page[domain.Comment], error)
	Update(ctx context.Context, comment *domain.Comment) error
	ToggleStarred(ctx context.Context, id string) (*domain.Comment, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

type commentRequest struct {
	Text        string `json:"text"`
	Rating      int    `json:"rating"`
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
	Starred     bool   `json:"starred"`
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	comment := &domain.Comment{
		ProductID:   r.PathValue("productId"),
		Text:        req.Text,
		Rating:      req.Rating,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		Starred:     req.Starred,
	}
	if err := h.store.Add(r.Context(), comment); err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusCreated, comment)
}

func (h *Handler) HandleListByProduct(w http.ResponseWriter, r *http.Request) {
	page, size := web.ParsePageParams(r)

	result, err := h.store.ListByProduct(r.Context(), r.PathValue("productId"), page, size)
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, result)
}

func (h *Handler) HandleListStarred(w http.ResponseWriter, r *http.Request) {
	page, size := web.ParsePageParams(r)

	result, err := h.store.ListStarred(r.Context(), r.PathValue("productId"), page, size)
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, result)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	comment, err := h.store.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, comment)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := h.store.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	comment.Text = req.Text
	comment.Rating = req.Rating
	comment.Starred = req.Starred
	if err := h.store.Update(r.Context(), comment); err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, comment)
}

func (h *Handler) HandleToggleStarred(w http.ResponseWriter, r *http.Request) {
	comment, err := h.store.ToggleStarred(r.Context(), r.PathValue("id"))
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, comment)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
