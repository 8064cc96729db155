package users

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/web"
)

// Store is what the handler needs from the user repository.
type Store interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}

type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

type registerRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	FullName     string `json:"full_name"`
	Admin        bool   `json:"admin"`
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		FullName:     req.FullName,
		Admin:        req.Admin,
	}

	if err := h.store.Create(r.Context(), user); err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	web.WriteJSON(w, h.logger, http.StatusCreated, user)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, h.logger, http.StatusOK, user)
}

func (h *Handler) HandleGetByUsername(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.FindByUsername(r.Context(), r.PathValue("username"))
	if err != nil {
		web.WriteDomainError(w, h.logger, err)
		return
	}
	web.WriteJSON(w, h.logger, http.StatusOK, user)
}
