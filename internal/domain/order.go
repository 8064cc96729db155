package domain

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// ParseOrderStatus validates a caller-supplied status against the closed
// set. Transition legality between statuses is intentionally not checked.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("%w: unknown order status %q", ErrValidation, s)
}

// OrderItem snapshots the product at purchase time. Price, name and image
// are copied so the item survives later catalog changes or deletion.
type OrderItem struct {
	ID              string `json:"id"`
	ProductID       string `json:"product_id"`
	Quantity        int    `json:"quantity"`
	PriceCents      int64  `json:"price_cents"`
	ProductName     string `json:"product_name"`
	ProductImageURL string `json:"product_image_url,omitempty"`
}

func (i OrderItem) Subtotal() int64 {
	return int64(i.Quantity) * i.PriceCents
}

type ShippingInfo struct {
	ShippingName    string `json:"shipping_name"`
	ShippingAddress string `json:"shipping_address"`
	ShippingCity    string `json:"shipping_city"`
	ShippingState   string `json:"shipping_state"`
	ShippingZip     string `json:"shipping_zip"`
	ShippingCountry string `json:"shipping_country"`
}

type Order struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Items      []OrderItem `json:"items"`
	PaymentID  *string     `json:"payment_id,omitempty"`
	TotalCents int64       `json:"total_cents"`
	Status     OrderStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	ShippingInfo
}

// ComputeTotal recomputes the order total from its items and stores it.
func (o *Order) ComputeTotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Subtotal()
	}
	o.TotalCents = total
	return total
}
