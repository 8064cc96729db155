//go:build integration

package test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/orders"
	"storefront-backend/internal/payments"
	"storefront-backend/internal/qa"
	"storefront-backend/internal/users"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedUser(t *testing.T, db *sql.DB, id, username, email string) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, $2, $3, '')
	`, id, username, email)
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
}

func seedProduct(t *testing.T, db *sql.DB, id, name string, priceCents int64, stock int) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO products (id, name, description, price_cents, stock_quantity)
		VALUES ($1, $2, '', $3, $4)
	`, id, name, priceCents, stock)
	if err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
}

func stockOf(t *testing.T, db *sql.DB, productID string) int {
	t.Helper()

	var stock int
	if err := db.QueryRow(
		`SELECT stock_quantity FROM products WHERE id = $1`, productID,
	).Scan(&stock); err != nil {
		t.Fatalf("failed to read stock: %v", err)
	}
	return stock
}

func TestOrderCreationDeductsStockAndComputesTotal(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db := pg.Open(t)
	defer func() { _ = db.Close() }()

	seedUser(t, db, "user-1", "ann", "ann@example.com")
	seedProduct(t, db, "prod-a", "Widget A", 1000, 5)
	seedProduct(t, db, "prod-b", "Widget B", 2500, 1)

	repo := orders.NewRepository(db)
	order, err := repo.Create(ctx, "user-1",
		map[string]int{"prod-a": 2, "prod-b": 1}, domain.ShippingInfo{ShippingName: "Ann"})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	if order.TotalCents != 4500 {
		t.Errorf("expected total 4500, got %d", order.TotalCents)
	}
	if order.Status != domain.OrderStatusPending {
		t.Errorf("expected PENDING, got %s", order.Status)
	}
	if len(order.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(order.Items))
	}

	if got := stockOf(t, db, "prod-a"); got != 3 {
		t.Errorf("expected prod-a stock 3, got %d", got)
	}
	if got := stockOf(t, db, "prod-b"); got != 0 {
		t.Errorf("expected prod-b stock 0, got %d", got)
	}

	fetched, err := repo.GetByID(ctx, order.ID, "user-1")
	if err != nil {
		t.Fatalf("failed to fetch order: %v", err)
	}
	if fetched.TotalCents != 4500 {
		t.Errorf("persisted total mismatch: %d", fetched.TotalCents)
	}
}

func TestOrderCreationIsAtomicOnStockFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db := pg.Open(t)
	defer func() { _ = db.Close() }()

	seedUser(t, db, "user-1", "ann", "ann@example.com")
	seedProduct(t, db, "prod-a", "Widget A", 1000, 5)
	seedProduct(t, db, "prod-b", "Widget B", 2500, 1)

	repo := orders.NewRepository(db)
	_, err := repo.Create(ctx, "user-1",
		map[string]int{"prod-a": 2, "prod-b": 99}, domain.ShippingInfo{})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}

	// The whole transaction rolled back: no order rows, stocks untouched.
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		t.Fatalf("failed to count orders: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no orders, got %d", count)
	}
	if got := stockOf(t, db, "prod-a"); got != 5 {
		t.Errorf("expected prod-a stock unchanged at 5, got %d", got)
	}
	if got := stockOf(t, db, "prod-b"); got != 1 {
		t.Errorf("expected prod-b stock unchanged at 1, got %d", got)
	}
}

func TestPaymentFlowMarksOrderPaid(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db := pg.Open(t)
	defer func() { _ = db.Close() }()

	seedUser(t, db, "user-1", "ann", "ann@example.com")
	seedProduct(t, db, "prod-a", "Widget A", 1000, 5)

	orderRepo := orders.NewRepository(db)
	order, err := orderRepo.Create(ctx, "user-1",
		map[string]int{"prod-a": 2}, domain.ShippingInfo{})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	var charged payments.ChargeRequest
	processorServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&charged)
		_ = json.NewEncoder(w).Encode(payments.ChargeResult{TransactionRef: "txn_1", CardLast4: "4242"})
	}))
	defer processorServer.Close()

	userRepo := users.NewRepository(db)
	paymentRepo := payments.NewRepository(db)
	processor := payments.NewProcessorClient(processorServer.URL, http.DefaultClient)
	service := payments.NewService(paymentRepo, orderRepo, userRepo, processor, discardLogger())

	payment, err := service.Process(ctx, order.ID, "tok_visa", "user-1")
	if err != nil {
		t.Fatalf("failed to process payment: %v", err)
	}

	if charged.AmountCents != 2000 {
		t.Errorf("expected charge of 2000, got %d", charged.AmountCents)
	}
	if payment.MaskedCardNumber != "xxxx-xxxx-xxxx-4242" {
		t.Errorf("unexpected masked card: %s", payment.MaskedCardNumber)
	}

	paid, err := orderRepo.GetByID(ctx, order.ID, "user-1")
	if err != nil {
		t.Fatalf("failed to fetch order: %v", err)
	}
	if paid.Status != domain.OrderStatusPaid {
		t.Errorf("expected PAID, got %s", paid.Status)
	}
	if paid.PaymentID == nil || *paid.PaymentID != payment.ID {
		t.Errorf("order not linked to payment: %v", paid.PaymentID)
	}
}

func TestProductQuestionReportThreshold(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db := pg.Open(t)
	defer func() { _ = db.Close() }()

	seedUser(t, db, "user-1", "ann", "ann@example.com")
	seedProduct(t, db, "prod-a", "Widget A", 1000, 5)

	repo := qa.NewRepository(db)
	question := &domain.ProductQuestion{
		ProductID: "prod-a",
		UserID:    "user-1",
		Question:  "Does it float?",
	}
	if err := repo.Ask(ctx, question); err != nil {
		t.Fatalf("failed to ask question: %v", err)
	}
	if !question.PublicQuestion {
		t.Fatal("expected a freshly asked question to be public")
	}

	for i := 1; i <= 4; i++ {
		q, err := repo.Report(ctx, question.ID)
		if err != nil {
			t.Fatalf("report %d failed: %v", i, err)
		}
		if !q.PublicQuestion {
			t.Fatalf("question hidden after %d reports", i)
		}
	}

	q, err := repo.Report(ctx, question.ID)
	if err != nil {
		t.Fatalf("fifth report failed: %v", err)
	}
	if q.PublicQuestion {
		t.Error("question still public after 5 reports")
	}

	page, err := repo.ListPublicByProduct(ctx, "prod-a", 0, 10)
	if err != nil {
		t.Fatalf("failed to list questions: %v", err)
	}
	if len(page.Content) != 0 {
		t.Errorf("hidden question still listed: %+v", page.Content)
	}
}

func TestProductQuestionRequiresKnownUsers(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db := pg.Open(t)
	defer func() { _ = db.Close() }()

	seedUser(t, db, "user-1", "ann", "ann@example.com")
	seedProduct(t, db, "prod-a", "Widget A", 1000, 5)

	repo := qa.NewRepository(db)

	err := repo.Ask(ctx, &domain.ProductQuestion{
		ProductID: "prod-a",
		UserID:    "ghost",
		Question:  "Does it float?",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found for ghost asker, got %v", err)
	}

	question := &domain.ProductQuestion{
		ProductID: "prod-a",
		UserID:    "user-1",
		Question:  "Does it float?",
	}
	if err := repo.Ask(ctx, question); err != nil {
		t.Fatalf("failed to ask question: %v", err)
	}

	if _, err := repo.Answer(ctx, question.ID, "ghost", "it does"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found for ghost answerer, got %v", err)
	}

	answered, err := repo.Answer(ctx, question.ID, "user-1", "it does")
	if err != nil {
		t.Fatalf("failed to answer question: %v", err)
	}
	if !answered.Answered {
		t.Error("expected question to be marked answered")
	}
}

func TestKafkaConnection(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	brokers, cleanup := SetupKafka(ctx, t)
	defer cleanup()

	if len(brokers) == 0 {
		t.Fatal("expected at least one broker")
	}

	t.Logf("kafka brokers: %v", brokers)
}
