package payments

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

func (r *Repository) Create(ctx context.Context, payment *domain.Payment) error {
	payment.ID = uuid.New().String()
	payment.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (id, user_id, amount_cents, status, payment_method,
			masked_card_number, transaction_reference, created_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, payment.ID, payment.UserID, payment.AmountCents, payment.Status, payment.Method,
		payment.MaskedCardNumber, payment.TransactionReference, payment.CreatedAt, payment.ProcessedAt)
	return err
}

// GetByID enforces ownership: the caller-supplied user id must match.
func (r *Repository) GetByID(ctx context.Context, paymentID, userID string) (*domain.Payment, error) {
	payment := &domain.Payment{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, amount_cents, status, payment_method,
			masked_card_number, transaction_reference, created_at, processed_at
		FROM payments
		WHERE id = $1
	`, paymentID).Scan(&payment.ID, &payment.UserID, &payment.AmountCents, &payment.Status,
		&payment.Method, &payment.MaskedCardNumber, &payment.TransactionReference,
		&payment.CreatedAt, &payment.ProcessedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: payment %s", domain.ErrNotFound, paymentID)
		}
		return nil, err
	}

	if payment.UserID != userID {
		return nil, fmt.Errorf("%w: payment %s does not belong to user %s", domain.ErrUnauthorized, paymentID, userID)
	}

	return payment, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.Payment, error) {
	return r.listByUser(ctx, userID, -1, -1)
}

func (r *Repository) ListByUserPaged(ctx context.Context, userID string, page, size int) (domain.Page[domain.Payment], error) {
	var zero domain.Page[domain.Payment]

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payments WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return zero, err
	}

	payments, err := r.listByUser(ctx, userID, size, page*size)
	if err != nil {
		return zero, err
	}

	return domain.NewPage(payments, page, size, total), nil
}

func (r *Repository) listByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Payment, error) {
	query := `
		SELECT id, user_id, amount_cents, status, payment_method,
			masked_card_number, transaction_reference, created_at, processed_at
		FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	args := []any{userID}
	if limit >= 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	payments := []domain.Payment{}
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.UserID, &p.AmountCents, &p.Status, &p.Method,
			&p.MaskedCardNumber, &p.TransactionReference, &p.CreatedAt, &p.ProcessedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}

	return payments, rows.Err()
}
