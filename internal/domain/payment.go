package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

type Payment struct {
	ID                   string        `json:"id"`
	UserID               string        `json:"user_id"`
	AmountCents          int64         `json:"amount_cents"`
	Status               PaymentStatus `json:"status"`
	Method               string        `json:"payment_method"`
	MaskedCardNumber     string        `json:"masked_card_number,omitempty"`
	TransactionReference string        `json:"transaction_reference,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
	ProcessedAt          *time.Time    `json:"processed_at,omitempty"`
}

// MaskCard renders the only card data that is ever persisted: the last
// four digits.
func MaskCard(lastFour string) string {
	return "xxxx-xxxx-xxxx-" + lastFour
}
