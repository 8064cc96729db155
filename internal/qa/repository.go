package qa

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storefront-backend/internal/domain"
)

const selectColumns = `
	id, product_id, user_id, question, answer, answered_by,
	asked_at, answered_at, answered, public_question,
	helpful_votes, report_count, active
`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Ask(ctx context.Context, question *domain.ProductQuestion) error {
	if question.Question == "" {
		return fmt.Errorf("%w: question text is required", domain.ErrValidation)
	}

	if err := r.requireExists(ctx, "users", question.UserID, "user"); err != nil {
		return err
	}
	if err := r.requireExists(ctx, "products", question.ProductID, "product"); err != nil {
		return err
	}

	question.ID = uuid.New().String()
	question.AskedAt = time.Now().UTC()
	question.Active = true
	// New questions are always public; reports may hide them later.
	question.PublicQuestion = true

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO product_questions (id, product_id, user_id, question, answer, answered_by,
			asked_at, answered_at, answered, public_question, helpful_votes, report_count, active)
		VALUES ($1, $2, $3, $4, '', NULL, $5, NULL, FALSE, TRUE, 0, 0, TRUE)
	`, question.ID, question.ProductID, question.UserID, question.Question, question.AskedAt)
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

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.ProductQuestion, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM product_questions WHERE id = $1 AND active = TRUE`, id)

	question, err := scanQuestion(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: product question %s", domain.ErrNotFound, id)
		}
		return nil, err
	}

	return question, nil
}

// ListPublicByProduct returns active, publicly visible questions, newest
// first.
func (r *Repository) ListPublicByProduct(ctx context.Context, productID string, page, size int) (domain.Page[domain.ProductQuestion], error) {
	where := `WHERE product_id = $1 AND active = TRUE AND public_question = TRUE`
	return r.listPaged(ctx, where, `ORDER BY asked_at DESC`, productID, page, size)
}

// ListMostHelpful orders public questions by helpful votes.
func (r *Repository) ListMostHelpful(ctx context.Context, productID string, page, size int) (domain.Page[domain.ProductQuestion], error) {
	where := `WHERE product_id = $1 AND active = TRUE AND public_question = TRUE`
	return r.listPaged(ctx, where, `ORDER BY helpful_votes DESC, asked_at DESC`, productID, page, size)
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.ProductQuestion, error) {
	return r.list(ctx,
		`WHERE user_id = $1 AND active = TRUE`, `ORDER BY asked_at DESC`, userID)
}

func (r *Repository) ListUnanswered(ctx context.Context, productID string) ([]domain.ProductQuestion, error) {
	return r.list(ctx,
		`WHERE product_id = $1 AND active = TRUE AND answered = FALSE`, `ORDER BY asked_at DESC`, productID)
}

func (r *Repository) listPaged(ctx context.Context, where, order, arg string, page, size int) (domain.Page[domain.ProductQuestion], error) {
	var zero domain.Page[domain.ProductQuestion]

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM product_questions `+where, arg,
	).Scan(&total); err != nil {
		return zero, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM product_questions `+where+` `+order+` LIMIT $2 OFFSET $3`,
		arg, size, page*size)
	if err != nil {
		return zero, err
	}
	questions, err := collectQuestions(rows)
	if err != nil {
		return zero, err
	}

	return domain.NewPage(questions, page, size, total), nil
}

func (r *Repository) list(ctx context.Context, where, order, arg string) ([]domain.ProductQuestion, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM product_questions `+where+` `+order, arg)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

// Answer fills the inline answer fields. Any user may answer.
func (r *Repository) Answer(ctx context.Context, questionID, answererID, text string) (*domain.ProductQuestion, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: answer text is required", domain.ErrValidation)
	}

	if err := r.requireExists(ctx, "users", answererID, "user"); err != nil {
		return nil, err
	}

	question, err := r.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	question.MarkAnswered(answererID, text, time.Now().UTC())

	_, err = r.db.ExecContext(ctx, `
		UPDATE product_questions
		SET answer = $2, answered_by = $3, answered_at = $4, answered = TRUE
		WHERE id = $1
	`, questionID, question.Answer, question.AnsweredBy, question.AnsweredAt)
	if err != nil {
		return nil, err
	}

	return question, nil
}

func (r *Repository) VoteHelpful(ctx context.Context, questionID string) (*domain.ProductQuestion, error) {
	question, err := r.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	question.VoteHelpful()
	_, err = r.db.ExecContext(ctx,
		`UPDATE product_questions SET helpful_votes = $2 WHERE id = $1`,
		questionID, question.HelpfulVotes)
	if err != nil {
		return nil, err
	}

	return question, nil
}

// Report counts one report; once the threshold is reached the question
// drops out of public listings.
func (r *Repository) Report(ctx context.Context, questionID string) (*domain.ProductQuestion, error) {
	question, err := r.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	question.Report()
	_, err = r.db.ExecContext(ctx,
		`UPDATE product_questions SET report_count = $2, public_question = $3 WHERE id = $1`,
		questionID, question.ReportCount, question.PublicQuestion)
	if err != nil {
		return nil, err
	}

	return question, nil
}

// Delete is a soft delete: the row stays, active flips to false.
func (r *Repository) Delete(ctx context.Context, questionID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE product_questions SET active = FALSE WHERE id = $1 AND active = TRUE`, questionID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: product question %s", domain.ErrNotFound, questionID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (*domain.ProductQuestion, error) {
	q := &domain.ProductQuestion{}
	err := row.Scan(&q.ID, &q.ProductID, &q.UserID, &q.Question, &q.Answer, &q.AnsweredBy,
		&q.AskedAt, &q.AnsweredAt, &q.Answered, &q.PublicQuestion,
		&q.HelpfulVotes, &q.ReportCount, &q.Active)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func collectQuestions(rows *sql.Rows) ([]domain.ProductQuestion, error) {
	defer func() { _ = rows.Close() }()

	questions := []domain.ProductQuestion{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}

	return questions, rows.Err()
}
