package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront-backend/internal/domain"
)

type fakeStore struct {
	questions map[string]*domain.Question
	admins    map[string]bool
}

func (f *fakeStore) Ask(_ context.Context, q *domain.Question) error {
	if q.Text == "" {
		return fmt.Errorf("%w: question text is required", domain.ErrValidation)
	}
	q.ID = "question-1"
	f.questions[q.ID] = q
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*domain.Question, error) {
	q, ok := f.questions[id]
	if !ok {
		return nil, fmt.Errorf("%w: question %s", domain.ErrNotFound, id)
	}
	return q, nil
}

func (f *fakeStore) ListByProduct(_ context.Context, productID string) ([]domain.Question, error) {
	var out []domain.Question
	for _, q := range f.questions {
		if q.ProductID == productID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByProductPaged(_ context.Context, productID string, page, size int) (domain.Page[domain.Question], error) {
	questions, _ := f.ListByProduct(context.Background(), productID)
	return domain.NewPage(questions, page, size, int64(len(questions))), nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID string) ([]domain.Question, error) {
	var out []domain.Question
	for _, q := range f.questions {
		if q.UserID == userID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeStore) Answer(_ context.Context, questionID, adminID, text string) (*domain.Question, error) {
	if !f.admins[adminID] {
		return nil, fmt.Errorf("%w: user %s is not an admin", domain.ErrUnauthorized, adminID)
	}
	q, ok := f.questions[questionID]
	if !ok {
		return nil, fmt.Errorf("%w: question %s", domain.ErrNotFound, questionID)
	}
	if q.Answer != nil {
		return nil, fmt.Errorf("%w: question %s is already answered", domain.ErrValidation, questionID)
	}
	q.Answer = &domain.Answer{ID: "answer-1", QuestionID: questionID, AdminID: adminID, Text: text, CreatedAt: time.Now()}
	return q, nil
}

func (f *fakeStore) UpdateAnswer(_ context.Context, questionID, adminID, text string) (*domain.Question, error) {
	if !f.admins[adminID] {
		return nil, fmt.Errorf("%w: user %s is not an admin", domain.ErrUnauthorized, adminID)
	}
	q, ok := f.questions[questionID]
	if !ok || q.Answer == nil {
		return nil, fmt.Errorf("%w: question %s has no answer", domain.ErrNotFound, questionID)
	}
	q.Answer.Text = text
	return q, nil
}

func (f *fakeStore) Delete(_ context.Context, questionID, userID string) error {
	q, ok := f.questions[questionID]
	if !ok {
		return fmt.Errorf("%w: question %s", domain.ErrNotFound, questionID)
	}
	if q.UserID != userID && !f.admins[userID] {
		return fmt.Errorf("%w: question %s does not belong to user %s", domain.ErrUnauthorized, questionID, userID)
	}
	delete(f.questions, questionID)
	return nil
}

func newTestMux(store *fakeStore) *http.ServeMux {
	handler := NewHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /products/{productId}/questions", handler.HandleAsk)
	mux.HandleFunc("GET /questions/{id}", handler.HandleGet)
	mux.HandleFunc("POST /questions/{id}/answer", handler.HandleAnswer)
	mux.HandleFunc("PUT /questions/{id}/answer", handler.HandleUpdateAnswer)
	mux.HandleFunc("DELETE /questions/{id}", handler.HandleDelete)
	return mux
}

func TestHandleAnswer(t *testing.T) {
	t.Run("admin answers an open question", func(t *testing.T) {
		store := &fakeStore{
			questions: map[string]*domain.Question{"q1": {ID: "q1", UserID: "asker"}},
			admins:    map[string]bool{"admin-1": true},
		}
		mux := newTestMux(store)

		body := `{"admin_id":"admin-1","text":"Yes, it ships worldwide."}`
		req := httptest.NewRequest(http.MethodPost, "/questions/q1/answer", strings.NewReader(body))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var got domain.Question
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if got.Answer == nil || got.Answer.Text != "Yes, it ships worldwide." {
			t.Errorf("answer not recorded: %+v", got.Answer)
		}
	})

	t.Run("non-admin gets 403", func(t *testing.T) {
		store := &fakeStore{
			questions: map[string]*domain.Question{"q1": {ID: "q1"}},
			admins:    map[string]bool{},
		}
		mux := newTestMux(store)

		req := httptest.NewRequest(http.MethodPost, "/questions/q1/answer", strings.NewReader(`{"admin_id":"nobody","text":"hi"}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected status 403, got %d", rec.Code)
		}
	})

	t.Run("second answer gets 400", func(t *testing.T) {
		store := &fakeStore{
			questions: map[string]*domain.Question{"q1": {ID: "q1", Answer: &domain.Answer{ID: "a1"}}},
			admins:    map[string]bool{"admin-1": true},
		}
		mux := newTestMux(store)

		req := httptest.NewRequest(http.MethodPost, "/questions/q1/answer", strings.NewReader(`{"admin_id":"admin-1","text":"again"}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})
}

func TestHandleDelete(t *testing.T) {
	t.Run("author deletes own question", func(t *testing.T) {
		store := &fakeStore{
			questions: map[string]*domain.Question{"q1": {ID: "q1", UserID: "asker"}},
			admins:    map[string]bool{},
		}
		mux := newTestMux(store)

		req := httptest.NewRequest(http.MethodDelete, "/questions/q1?userId=asker", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", rec.Code)
		}
	})

	t.Run("admin deletes another user's question", func(t *testing.T) {
		store := &fakeStore{
			questions: map[string]*domain.Question{"q1": {ID: "q1", UserID: "asker"}},
			admins:    map[string]bool{"admin-1": true},
		}
		mux := newTestMux(store)

		req := httptest.NewRequest(http.MethodDelete, "/questions/q1?userId=admin-1", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", rec.Code)
		}
	})

	t.Run("unrelated user gets 403", func(t *testing.T) {
		store := &fakeStore{
			questions: map[string]*domain.Question{"q1": {ID: "q1", UserID: "asker"}},
			admins:    map[string]bool{},
		}
		mux := newTestMux(store)

		req := httptest.NewRequest(http.MethodDelete, "/questions/q1?userId=stranger", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected status 403, got %d", rec.Code)
		}
	})
}
