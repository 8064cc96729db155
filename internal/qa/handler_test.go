package qa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"storefront-backend/internal/domain"
)

type fakeStore struct {
	questions map[string]*domain.ProductQuestion
	users     map[string]bool
}

func (f *fakeStore) Ask(_ context.Context, q *domain.ProductQuestion) error {
	if !f.users[q.UserID] {
		return fmt.Errorf("%w: user %s", domain.ErrNotFound, q.UserID)
	}
	q.ID = "pq-1"
	q.Active = true
	q.PublicQuestion = true
	f.questions[q.ID] = q
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*domain.ProductQuestion, error) {
	q, ok := f.questions[id]
	if !ok || !q.Active {
		return nil, fmt.Errorf("%w: product question %s", domain.ErrNotFound, id)
	}
	return q, nil
}

func (f *fakeStore) ListPublicByProduct(_ context.Context, productID string, page, size int) (domain.Page[domain.ProductQuestion], error) {
	var out []domain.ProductQuestion
	for _, q := range f.questions {
		if q.ProductID == productID && q.Active && q.PublicQuestion {
			out = append(out, *q)
		}
	}
	return domain.NewPage(out, page, size, int64(len(out))), nil
}

func (f *fakeStore) ListMostHelpful(ctx context.Context, productID string, page, size int) (domain.Page[domain.ProductQuestion], error) {
	result, err := f.ListPublicByProduct(ctx, productID, page, size)
	if err != nil {
		return result, err
	}
	sort.Slice(result.Content, func(i, j int) bool {
		return result.Content[i].HelpfulVotes > result.Content[j].HelpfulVotes
	})
	return result, nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID string) ([]domain.ProductQuestion, error) {
	var out []domain.ProductQuestion
	for _, q := range f.questions {
		if q.UserID == userID && q.Active {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeStore) ListUnanswered(_ context.Context, productID string) ([]domain.ProductQuestion, error) {
	var out []domain.ProductQuestion
	for _, q := range f.questions {
		if q.ProductID == productID && q.Active && !q.Answered {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeStore) Answer(ctx context.Context, questionID, answererID, text string) (*domain.ProductQuestion, error) {
	if !f.users[answererID] {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, answererID)
	}
	q, err := f.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	q.MarkAnswered(answererID, text, time.Now())
	return q, nil
}

func (f *fakeStore) VoteHelpful(ctx context.Context, questionID string) (*domain.ProductQuestion, error) {
	q, err := f.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	q.VoteHelpful()
	return q, nil
}

func (f *fakeStore) Report(ctx context.Context, questionID string) (*domain.ProductQuestion, error) {
	q, err := f.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	q.Report()
	return q, nil
}

func (f *fakeStore) Delete(ctx context.Context, questionID string) error {
	q, err := f.GetByID(ctx, questionID)
	if err != nil {
		return err
	}
	q.Active = false
	return nil
}

func newTestMux(store *fakeStore) *http.ServeMux {
	handler := NewHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /products/{productId}/product-questions", handler.HandleAsk)
	mux.HandleFunc("GET /products/{productId}/product-questions", handler.HandleListByProduct)
	mux.HandleFunc("GET /product-questions/{id}", handler.HandleGet)
	mux.HandleFunc("POST /product-questions/{id}/answer", handler.HandleAnswer)
	mux.HandleFunc("POST /product-questions/{id}/helpful", handler.HandleVoteHelpful)
	mux.HandleFunc("POST /product-questions/{id}/report", handler.HandleReport)
	mux.HandleFunc("DELETE /product-questions/{id}", handler.HandleDelete)
	return mux
}

func report(t *testing.T, mux *http.ServeMux, id string) *domain.ProductQuestion {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/product-questions/"+id+"/report", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got domain.ProductQuestion
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return &got
}

func TestHandleAsk(t *testing.T) {
	t.Run("new questions are public without asking for it", func(t *testing.T) {
		store := &fakeStore{
			questions: map[string]*domain.ProductQuestion{},
			users:     map[string]bool{"user-1": true},
		}
		mux := newTestMux(store)

		body := `{"user_id":"user-1","question":"Does it float?"}`
		req := httptest.NewRequest(http.MethodPost, "/products/prod-a/product-questions", strings.NewReader(body))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var got domain.ProductQuestion
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !got.PublicQuestion {
			t.Error("expected a freshly asked question to be public")
		}
	})

	t.Run("unknown user maps to 404", func(t *testing.T) {
		store := &fakeStore{
			questions: map[string]*domain.ProductQuestion{},
			users:     map[string]bool{},
		}
		mux := newTestMux(store)

		req := httptest.NewRequest(http.MethodPost, "/products/prod-a/product-questions",
			strings.NewReader(`{"user_id":"ghost","question":"hello?"}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestHandleReport(t *testing.T) {
	store := &fakeStore{questions: map[string]*domain.ProductQuestion{
		"pq-1": {ID: "pq-1", ProductID: "prod-a", Active: true, PublicQuestion: true},
	}}
	mux := newTestMux(store)

	for i := 1; i <= 4; i++ {
		got := report(t, mux, "pq-1")
		if !got.PublicQuestion {
			t.Fatalf("question hidden after %d reports", i)
		}
	}

	got := report(t, mux, "pq-1")
	if got.PublicQuestion {
		t.Error("question still public after 5 reports")
	}
	if got.ReportCount != 5 {
		t.Errorf("expected report count 5, got %d", got.ReportCount)
	}
}

func TestHandleVoteHelpful(t *testing.T) {
	store := &fakeStore{questions: map[string]*domain.ProductQuestion{
		"pq-1": {ID: "pq-1", Active: true, PublicQuestion: true, HelpfulVotes: 2},
	}}
	mux := newTestMux(store)

	req := httptest.NewRequest(http.MethodPost, "/product-questions/pq-1/helpful", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var got domain.ProductQuestion
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.HelpfulVotes != 3 {
		t.Errorf("expected 3 helpful votes, got %d", got.HelpfulVotes)
	}
}

func TestHandleDelete(t *testing.T) {
	store := &fakeStore{questions: map[string]*domain.ProductQuestion{
		"pq-1": {ID: "pq-1", Active: true},
	}}
	mux := newTestMux(store)

	req := httptest.NewRequest(http.MethodDelete, "/product-questions/pq-1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}

	// Soft deleted: the row survives but is no longer served.
	req = httptest.NewRequest(http.MethodGet, "/product-questions/pq-1", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 after delete, got %d", rec.Code)
	}
	if q := store.questions["pq-1"]; q == nil || q.Active {
		t.Error("expected the row to remain with active=false")
	}
}

func TestHandleAnswer(t *testing.T) {
	t.Run("any known user may answer", func(t *testing.T) {
		store := &fakeStore{
			questions: map[string]*domain.ProductQuestion{
				"pq-1": {ID: "pq-1", Active: true, PublicQuestion: true},
			},
			users: map[string]bool{"user-2": true},
		}
		mux := newTestMux(store)

		body := `{"user_id":"user-2","answer":"It fits the older model too."}`
		req := httptest.NewRequest(http.MethodPost, "/product-questions/pq-1/answer", strings.NewReader(body))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var got domain.ProductQuestion
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !got.Answered || got.Answer != "It fits the older model too." {
			t.Errorf("answer not recorded: %+v", got)
		}
		if got.AnsweredBy == nil || *got.AnsweredBy != "user-2" {
			t.Errorf("answerer not recorded: %+v", got.AnsweredBy)
		}
	})

	t.Run("unknown answerer maps to 404", func(t *testing.T) {
		store := &fakeStore{
			questions: map[string]*domain.ProductQuestion{
				"pq-1": {ID: "pq-1", Active: true, PublicQuestion: true},
			},
			users: map[string]bool{},
		}
		mux := newTestMux(store)

		req := httptest.NewRequest(http.MethodPost, "/product-questions/pq-1/answer",
			strings.NewReader(`{"user_id":"ghost","answer":"hi"}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})
}
