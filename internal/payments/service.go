package payments

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"storefront-backend/internal/domain"
)

type PaymentStore interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, paymentID, userID string) (*domain.Payment, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Payment, error)
	ListByUserPaged(ctx context.Context, userID string, page, size int) (domain.Page[domain.Payment], error)
}

type OrderStore interface {
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	SetPayment(ctx context.Context, orderID, paymentID string) error
}

type UserStore interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Service captures a payment for an order: charge the external processor,
// persist the payment, then link it to the order and flip the order to
// PAID. The order update is a second transaction, deliberately not atomic
// with the charge; the payment row is written first so a crash in between
// leaves an auditable record.
type Service struct {
	payments  PaymentStore
	orders    OrderStore
	users     UserStore
	processor Processor
	logger    *slog.Logger
}

func NewService(payments PaymentStore, orders OrderStore, users UserStore, processor Processor, logger *slog.Logger) *Service {
	return &Service{
		payments:  payments,
		orders:    orders,
		users:     users,
		processor: processor,
		logger:    logger,
	}
}

func (s *Service) Process(ctx context.Context, orderID, cardToken, userID string) (*domain.Payment, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.processor.Charge(ctx, ChargeRequest{
		AmountCents:  order.TotalCents,
		Currency:     "usd",
		CardToken:    cardToken,
		ReceiptEmail: user.Email,
		Description:  fmt.Sprintf("Order #%s", order.ID),
	})
	if err != nil {
		s.logger.Error("charge rejected", "error", err, "order_id", orderID)
		return nil, err
	}

	now := time.Now().UTC()
	payment := &domain.Payment{
		UserID:               user.ID,
		AmountCents:          order.TotalCents,
		Status:               domain.PaymentStatusCompleted,
		Method:               "CREDIT_CARD",
		MaskedCardNumber:     domain.MaskCard(result.CardLast4),
		TransactionReference: result.TransactionRef,
		ProcessedAt:          &now,
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	if err := s.orders.SetPayment(ctx, order.ID, payment.ID); err != nil {
		// The charge succeeded and the payment row exists; the order is
		// still PENDING. Surfaced, not repaired.
		s.logger.Error("payment persisted but order update failed",
			"error", err, "order_id", orderID, "payment_id", payment.ID)
		return nil, err
	}

	s.logger.Info("payment captured",
		"payment_id", payment.ID, "order_id", orderID, "amount_cents", payment.AmountCents)
	return payment, nil
}

func (s *Service) GetByID(ctx context.Context, paymentID, userID string) (*domain.Payment, error) {
	return s.payments.GetByID(ctx, paymentID, userID)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Payment, error) {
	return s.payments.ListByUser(ctx, userID)
}

func (s *Service) ListByUserPaged(ctx context.Context, userID string, page, size int) (domain.Page[domain.Payment], error) {
	return s.payments.ListByUserPaged(ctx, userID, page, size)
}
