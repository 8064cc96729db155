package comments

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

func (r *Repository) Add(ctx context.Context, comment *domain.Comment) error {
	if comment.Text == "" {
		return fmt.Errorf("%w: comment text is required", domain.ErrValidation)
	}
	if comment.Rating < 1 || comment.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, comment.ProductID,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: product %s", domain.ErrNotFound, comment.ProductID)
	}

	comment.ID = uuid.New().String()
	comment.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO comments (id, product_id, text, rating, author_name, author_email, starred, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, comment.ID, comment.ProductID, comment.Text, comment.Rating,
		comment.AuthorName, comment.AuthorEmail, comment.Starred, comment.CreatedAt)
	return err
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	comment := &domain.Comment{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, product_id, text, rating, author_name, author_email, starred, created_at
		FROM comments
		WHERE id = $1
	`, id).Scan(&comment.ID, &comment.ProductID, &comment.Text, &comment.Rating,
		&comment.AuthorName, &comment.AuthorEmail, &comment.Starred, &comment.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: comment %s", domain.ErrNotFound, id)
		}
		return nil, err
	}

	return comment, nil
}

func (r *Repository) ListByProduct(ctx context.Context, productID string, page, size int) (domain.Page[domain.Comment], error) {
	return r.list(ctx, productID, false, page, size)
}

func (r *Repository) ListStarred(ctx context.Context, productID string, page, size int) (domain.Page[domain.Comment], error) {
	return r.list(ctx, productID, true, page, size)
}

func (r *Repository) list(ctx context.Context, productID string, starredOnly bool, page, size int) (domain.Page[domain.Comment], error) {
	var zero domain.Page[domain.Comment]

	where := `WHERE product_id = $1`
	if starredOnly {
		where += ` AND starred = TRUE`
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments `+where, productID,
	).Scan(&total); err != nil {
		return zero, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, text, rating, author_name, author_email, starred, created_at
		FROM comments
		`+where+`
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, productID, size, page*size)
	if err != nil {
		return zero, err
	}
	defer func() { _ = rows.Close() }()

	comments := []domain.Comment{}
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.ProductID, &c.Text, &c.Rating,
			&c.AuthorName, &c.AuthorEmail, &c.Starred, &c.CreatedAt); err != nil {
			return zero, err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return zero, err
	}

	return domain.NewPage(comments, page, size, total), nil
}

func (r *Repository) Update(ctx context.Context, comment *domain.Comment) error {
	if comment.Rating < 1 || comment.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE comments
		SET text = $2, rating = $3, starred = $4
		WHERE id = $1
	`, comment.ID, comment.Text, comment.Rating, comment.Starred)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: comment %s", domain.ErrNotFound, comment.ID)
	}
	return nil
}

// ToggleStarred flips the star and returns the updated comment.
func (r *Repository) ToggleStarred(ctx context.Context, id string) (*domain.Comment, error) {
	comment, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	comment.ToggleStarred()
	_, err = r.db.ExecContext(ctx,
		`UPDATE comments SET starred = $2 WHERE id = $1`, id, comment.Starred)
	if err != nil {
		return nil, err
	}

	return comment, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: comment %s", domain.ErrNotFound, id)
	}
	return nil
}
