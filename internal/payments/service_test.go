package payments

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/domain"
)

type fakePaymentStore struct {
	created *domain.Payment
}

func (f *fakePaymentStore) Create(_ context.Context, p *domain.Payment) error {
	p.ID = "pay-1"
	f.created = p
	return nil
}

func (f *fakePaymentStore) GetByID(_ context.Context, paymentID, userID string) (*domain.Payment, error) {
	return nil, fmt.Errorf("%w: payment %s", domain.ErrNotFound, paymentID)
}

func (f *fakePaymentStore) ListByUser(_ context.Context, _ string) ([]domain.Payment, error) {
	return nil, nil
}

func (f *fakePaymentStore) ListByUserPaged(_ context.Context, _ string, page, size int) (domain.Page[domain.Payment], error) {
	return domain.Page[domain.Payment]{}, nil
}

type fakeOrderStore struct {
	order        *domain.Order
	linkedOrder  string
	linkedPaymnt string
}

func (f *fakeOrderStore) Get(_ context.Context, orderID string) (*domain.Order, error) {
	if f.order == nil || f.order.ID != orderID {
		return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, orderID)
	}
	return f.order, nil
}

func (f *fakeOrderStore) SetPayment(_ context.Context, orderID, paymentID string) error {
	f.linkedOrder = orderID
	f.linkedPaymnt = paymentID
	return nil
}

type fakeUserStore struct {
	user *domain.User
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
	}
	return f.user, nil
}

type fakeProcessor struct {
	result  *ChargeResult
	err     error
	lastReq ChargeRequest
	calls   int
}

func (f *fakeProcessor) Charge(_ context.Context, req ChargeRequest) (*ChargeResult, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestService(ps *fakePaymentStore, os *fakeOrderStore, us *fakeUserStore, proc *fakeProcessor) *Service {
	return NewService(ps, os, us, proc, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestProcessSuccess(t *testing.T) {
	payments := &fakePaymentStore{}
	orders := &fakeOrderStore{order: &domain.Order{ID: "order-1", UserID: "user-1", TotalCents: 4500}}
	users := &fakeUserStore{user: &domain.User{ID: "user-1", Email: "ann@example.com"}}
	processor := &fakeProcessor{result: &ChargeResult{TransactionRef: "txn_123", CardLast4: "4242"}}

	service := newTestService(payments, orders, users, processor)

	payment, err := service.Process(context.Background(), "order-1", "tok_visa", "user-1")
	require.NoError(t, err)

	assert.Equal(t, int64(4500), payment.AmountCents, "charge amount is the order total")
	assert.Equal(t, int64(4500), processor.lastReq.AmountCents)
	assert.Equal(t, "ann@example.com", processor.lastReq.ReceiptEmail)
	assert.Equal(t, domain.PaymentStatusCompleted, payment.Status)
	assert.Equal(t, "xxxx-xxxx-xxxx-4242", payment.MaskedCardNumber)
	assert.Equal(t, "txn_123", payment.TransactionReference)
	require.NotNil(t, payment.ProcessedAt)

	assert.Equal(t, "order-1", orders.linkedOrder, "order linked to the payment")
	assert.Equal(t, "pay-1", orders.linkedPaymnt)
}

func TestProcessChargeRejected(t *testing.T) {
	payments := &fakePaymentStore{}
	orders := &fakeOrderStore{order: &domain.Order{ID: "order-1", UserID: "user-1", TotalCents: 4500}}
	users := &fakeUserStore{user: &domain.User{ID: "user-1", Email: "ann@example.com"}}
	processor := &fakeProcessor{err: fmt.Errorf("%w: card declined", domain.ErrChargeFailed)}

	service := newTestService(payments, orders, users, processor)

	_, err := service.Process(context.Background(), "order-1", "tok_bad", "user-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrChargeFailed)
	assert.Nil(t, payments.created, "no payment persisted on rejection")
	assert.Empty(t, orders.linkedOrder, "order untouched on rejection")
}

func TestProcessUnknownOrder(t *testing.T) {
	service := newTestService(&fakePaymentStore{}, &fakeOrderStore{}, &fakeUserStore{}, &fakeProcessor{})

	_, err := service.Process(context.Background(), "ghost", "tok_visa", "user-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProcessUnknownUser(t *testing.T) {
	orders := &fakeOrderStore{order: &domain.Order{ID: "order-1", TotalCents: 100}}
	processor := &fakeProcessor{result: &ChargeResult{}}

	service := newTestService(&fakePaymentStore{}, orders, &fakeUserStore{}, processor)

	_, err := service.Process(context.Background(), "order-1", "tok_visa", "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, processor.calls, "no charge attempted for an unknown user")
}
