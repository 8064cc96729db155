package questions

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

func (r *Repository) Ask(ctx context.Context, question *domain.Question) error {
	if question.Text == "" {
		return fmt.Errorf("%w: question text is required", domain.ErrValidation)
	}

	if err := r.requireExists(ctx, "users", question.UserID, "user"); err != nil {
		return err
	}
	if err := r.requireExists(ctx, "products", question.ProductID, "product"); err != nil {
		return err
	}

	question.ID = uuid.New().String()
	question.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO questions (id, product_id, user_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, question.ID, question.ProductID, question.UserID, question.Text, question.CreatedAt)
	return err
}

func (r *Repository) requireExists(ctx context.Context, table, id, label string) error {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, label, id)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Question, error) {
	question := &domain.Question{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, product_id, user_id, text, created_at
		FROM questions
		WHERE id = $1
	`, id).Scan(&question.ID, &question.ProductID, &question.UserID,
		&question.Text, &question.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: question %s", domain.ErrNotFound, id)
		}
		return nil, err
	}

	answer, err := r.findAnswer(ctx, id)
	if err != nil {
		return nil, err
	}
	question.Answer = answer

	return question, nil
}

func (r *Repository) findAnswer(ctx context.Context, questionID string) (*domain.Answer, error) {
	answer := &domain.Answer{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, question_id, admin_id, text, created_at, updated_at
		FROM answers
		WHERE question_id = $1
	`, questionID).Scan(&answer.ID, &answer.QuestionID, &answer.AdminID,
		&answer.Text, &answer.CreatedAt, &answer.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return answer, nil
}

func (r *Repository) ListByProduct(ctx context.Context, productID string) ([]domain.Question, error) {
	return r.list(ctx, `WHERE product_id = $1`, productID, -1, -1)
}

func (r *Repository) ListByProductPaged(ctx context.Context, productID string, page, size int) (domain.Page[domain.Question], error) {
	var zero domain.Page[domain.Question]

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM questions WHERE product_id = $1`, productID,
	).Scan(&total); err != nil {
		return zero, err
	}

	questions, err := r.list(ctx, `WHERE product_id = $1`, productID, size, page*size)
	if err != nil {
		return zero, err
	}

	return domain.NewPage(questions, page, size, total), nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.Question, error) {
	return r.list(ctx, `WHERE user_id = $1`, userID, -1, -1)
}

func (r *Repository) list(ctx context.Context, where, arg string, limit, offset int) ([]domain.Question, error) {
	query := `
		SELECT id, product_id, user_id, text, created_at
		FROM questions
		` + where + `
		ORDER BY created_at DESC
	`
	args := []any{arg}
	if limit >= 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	questions := []domain.Question{}
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.ProductID, &q.UserID, &q.Text, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range questions {
		answer, err := r.findAnswer(ctx, questions[i].ID)
		if err != nil {
			return nil, err
		}
		questions[i].Answer = answer
	}

	return questions, nil
}

// Answer records the single admin answer for a question. A second answer
// is rejected.
func (r *Repository) Answer(ctx context.Context, questionID, adminID, text string) (*domain.Question, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: answer text is required", domain.ErrValidation)
	}

	admin, err := r.findUser(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if !admin.Admin {
		return nil, fmt.Errorf("%w: user %s is not an admin", domain.ErrUnauthorized, adminID)
	}

	question, err := r.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if question.Answer != nil {
		return nil, fmt.Errorf("%w: question %s is already answered", domain.ErrValidation, questionID)
	}

	now := time.Now().UTC()
	answer := &domain.Answer{
		ID:         uuid.New().String(),
		QuestionID: questionID,
		AdminID:    adminID,
		Text:       text,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO answers (id, question_id, admin_id, text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, answer.ID, answer.QuestionID, answer.AdminID, answer.Text, answer.CreatedAt, answer.UpdatedAt)
	if err != nil {
		return nil, err
	}

	question.Answer = answer
	return question, nil
}

func (r *Repository) UpdateAnswer(ctx context.Context, questionID, adminID, text string) (*domain.Question, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: answer text is required", domain.ErrValidation)
	}

	admin, err := r.findUser(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if !admin.Admin {
		return nil, fmt.Errorf("%w: user %s is not an admin", domain.ErrUnauthorized, adminID)
	}

	question, err := r.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if question.Answer == nil {
		return nil, fmt.Errorf("%w: question %s has no answer", domain.ErrNotFound, questionID)
	}

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
		UPDATE answers SET text = $2, updated_at = $3 WHERE id = $1
	`, question.Answer.ID, text, now)
	if err != nil {
		return nil, err
	}

	question.Answer.Text = text
	question.Answer.UpdatedAt = now
	return question, nil
}

// Delete removes a question and its answer. Only the author or an admin
// may delete.
func (r *Repository) Delete(ctx context.Context, questionID, userID string) error {
	question, err := r.GetByID(ctx, questionID)
	if err != nil {
		return err
	}

	if question.UserID != userID {
		user, err := r.findUser(ctx, userID)
		if err != nil {
			return err
		}
		if !user.Admin {
			return fmt.Errorf("%w: question %s does not belong to user %s", domain.ErrUnauthorized, questionID, userID)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM answers WHERE question_id = $1`, questionID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, questionID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) findUser(ctx context.Context, id string) (*domain.User, error) {
	user := &domain.User{}

	err := r.db.QueryRowContext(ctx,
		`SELECT id, admin FROM users WHERE id = $1`, id,
	).Scan(&user.ID, &user.Admin)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
		}
		return nil, err
	}

	return user, nil
}
