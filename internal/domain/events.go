package domain

import "time"

type OrderCreatedEvent struct {
	OrderID    string      `json:"order_id"`
	UserID     string      `json:"user_id"`
	Items      []OrderItem `json:"items"`
	TotalCents int64       `json:"total_cents"`
	Timestamp  time.Time   `json:"timestamp"`
}
