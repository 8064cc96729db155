package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/web"
)

type Store interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, q Query, page, size int) (domain.Page[domain.Product], error)
	Delete(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, category *domain.Category) error
}

type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// HandleList serves GET /products with optional name, categoryId and
// featured filters.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, size := web.ParsePageParams(r)
	q := Query{
		Name:         r.URL.Query().Get("name"),
		CategoryID:   r.URL.Query().Get("categoryId"),
		FeaturedOnly: r.URL.Query().Get("featured") == "true",
	}

	result, err := h.store.List(r.Context(), q, page, size)
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, result)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	product, err := h.store.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, h.logger, http.StatusOK, product)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		web.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.Create(r.Context(), &product); err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("product created", "product_id", product.ID, "name", product.Name)
	web.WriteJSON(w, h.logger, http.StatusCreated, product)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		web.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	product.ID = r.PathValue("id")

	if err := h.store.Update(r.Context(), &product); err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("product updated", "product_id", product.ID)
	web.WriteJSON(w, h.logger, http.StatusOK, product)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("product deleted", "product_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, h.logger, http.StatusOK, categories)
}

func (h *Handler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var category domain.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		web.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.CreateCategory(r.Context(), &category); err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusCreated, category)
}
