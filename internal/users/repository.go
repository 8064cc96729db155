package users

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storefront-backend/internal/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, user *domain.User) error {
	if user.Username == "" || user.Email == "" {
		return fmt.Errorf("%w: username and email are required", domain.ErrValidation)
	}

	taken, err := r.ExistsByUsername(ctx, user.Username)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: username %q is already taken", domain.ErrValidation, user.Username)
	}

	taken, err = r.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: email %q is already registered", domain.ErrValidation, user.Email)
	}

	user.ID = uuid.New().String()
	user.CreatedAt = time.Now().UTC()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, full_name, admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, user.ID, user.Username, user.Email, user.PasswordHash, user.FullName, user.Admin, user.CreatedAt)
	return err
}

func (r *Repository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "id", id)
}

func (r *Repository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, "username", username)
}

func (r *Repository) findOne(ctx context.Context, column, value string) (*domain.User, error) {
	user := &domain.User{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, full_name, admin, created_at
		FROM users
		WHERE `+column+` = $1
	`, value).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.FullName, &user.Admin, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, value)
		}
		return nil, err
	}

	return user, nil
}

func (r *Repository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username", username)
}

func (r *Repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", email)
}

func (r *Repository) exists(ctx context.Context, column, value string) (bool, error) {
	var found bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE `+column+` = $1)`, value,
	).Scan(&found)
	return found, err
}
