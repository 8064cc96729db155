package orders

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"storefront-backend/internal/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create places an order for the given cart in one transaction: the user
// must exist, every product must exist and have sufficient stock, stock is
// decremented with a conditional update so concurrent orders cannot
// oversell, each item snapshots the product's current price, name and
// image, and the total is recomputed before commit. Any failure rolls the
// whole order back, leaving every stock level untouched.
func (r *Repository) Create(ctx context.Context, userID string, cart map[string]int, shipping domain.ShippingInfo) (*domain.Order, error) {
	if len(cart) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", domain.ErrValidation)
	}
	for productID, quantity := range cart {
		if quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for product %s must be positive", domain.ErrValidation, productID)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID,
	).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:           uuid.New().String(),
		UserID:       userID,
		Status:       domain.OrderStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
		ShippingInfo: shipping,
	}

	// Insert first with a zero total to obtain the order identity.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, status, total_cents, created_at, updated_at,
			shipping_name, shipping_address, shipping_city, shipping_state, shipping_zip, shipping_country)
		VALUES ($1, $2, $3, 0, $4, $4, $5, $6, $7, $8, $9, $10)
	`, order.ID, order.UserID, order.Status, now,
		shipping.ShippingName, shipping.ShippingAddress, shipping.ShippingCity,
		shipping.ShippingState, shipping.ShippingZip, shipping.ShippingCountry)
	if err != nil {
		return nil, err
	}

	for productID, quantity := range cart {
		var (
			name     string
			price    int64
			imageURL string
		)
		err := tx.QueryRowContext(ctx, `
			SELECT name, price_cents, main_image_url FROM products WHERE id = $1
		`, productID).Scan(&name, &price, &imageURL)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, productID)
			}
			return nil, err
		}

		// Conditional decrement: zero rows affected means another order
		// got there first or stock was short all along.
		result, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock_quantity = stock_quantity - $2
			WHERE id = $1 AND stock_quantity >= $2
		`, productID, quantity)
		if err != nil {
			return nil, err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, fmt.Errorf("%w: not enough stock for product %s", domain.ErrInsufficientStock, name)
		}

		item := domain.OrderItem{
			ID:              uuid.New().String(),
			ProductID:       productID,
			Quantity:        quantity,
			PriceCents:      price,
			ProductName:     name,
			ProductImageURL: imageURL,
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, price_cents, product_name, product_image_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, item.ID, order.ID, item.ProductID, item.Quantity, item.PriceCents,
			item.ProductName, item.ProductImageURL)
		if err != nil {
			return nil, err
		}

		order.Items = append(order.Items, item)
	}

	order.ComputeTotal()
	if _, err := tx.ExecContext(ctx,
		`UPDATE orders SET total_cents = $2 WHERE id = $1`, order.ID, order.TotalCents,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return order, nil
}

// GetByID loads an order with its items. The caller-supplied user id must
// match the order's owner.
func (r *Repository) GetByID(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	order := &domain.Order{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, payment_id, status, total_cents, created_at, updated_at,
			shipping_name, shipping_address, shipping_city, shipping_state, shipping_zip, shipping_country
		FROM orders
		WHERE id = $1
	`, orderID).Scan(&order.ID, &order.UserID, &order.PaymentID, &order.Status,
		&order.TotalCents, &order.CreatedAt, &order.UpdatedAt,
		&order.ShippingName, &order.ShippingAddress, &order.ShippingCity,
		&order.ShippingState, &order.ShippingZip, &order.ShippingCountry)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, orderID)
		}
		return nil, err
	}

	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order %s does not belong to user %s", domain.ErrUnauthorized, orderID, userID)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, quantity, price_cents, product_name, product_image_url
		FROM order_items
		WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity,
			&item.PriceCents, &item.ProductName, &item.ProductImageURL); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	return order, rows.Err()
}

// UpdateStatus overwrites the status unconditionally. The status value is
// validated against the closed set by the caller; transition legality is
// not checked.
func (r *Repository) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $2, updated_at = NOW()
		WHERE id = $1
	`, orderID, status)
	if err != nil {
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, orderID)
	}

	return r.Get(ctx, orderID)
}

// SetPayment links a completed payment and flips the order to PAID. This
// runs after the external charge in its own transaction; a crash between
// charge and this write leaves the payment persisted but the order
// PENDING.
func (r *Repository) SetPayment(ctx context.Context, orderID, paymentID string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET payment_id = $2, status = $3, updated_at = NOW()
		WHERE id = $1
	`, orderID, paymentID, domain.OrderStatusPaid)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: order %s", domain.ErrNotFound, orderID)
	}
	return nil
}

// Get loads an order with items and no ownership check. Internal callers
// only; the HTTP read path goes through GetByID.
func (r *Repository) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	order := &domain.Order{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, payment_id, status, total_cents, created_at, updated_at,
			shipping_name, shipping_address, shipping_city, shipping_state, shipping_zip, shipping_country
		FROM orders
		WHERE id = $1
	`, orderID).Scan(&order.ID, &order.UserID, &order.PaymentID, &order.Status,
		&order.TotalCents, &order.CreatedAt, &order.UpdatedAt,
		&order.ShippingName, &order.ShippingAddress, &order.ShippingCity,
		&order.ShippingState, &order.ShippingZip, &order.ShippingCountry)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, orderID)
		}
		return nil, err
	}
	return r.attachItems(ctx, order)
}

func (r *Repository) attachItems(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, quantity, price_cents, product_name, product_image_url
		FROM order_items
		WHERE order_id = $1
	`, order.ID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity,
			&item.PriceCents, &item.ProductName, &item.ProductImageURL); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}
	return order, rows.Err()
}

// ListByUser returns the user's full order history, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.listByUser(ctx, userID, -1, -1)
}

// ListByUserPaged returns one page of the user's orders, newest first.
func (r *Repository) ListByUserPaged(ctx context.Context, userID string, page, size int) (domain.Page[domain.Order], error) {
	var zero domain.Page[domain.Order]

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return zero, err
	}

	orders, err := r.listByUser(ctx, userID, size, page*size)
	if err != nil {
		return zero, err
	}

	return domain.NewPage(orders, page, size, total), nil
}

func (r *Repository) listByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error) {
	query := `
		SELECT id, user_id, payment_id, status, total_cents, created_at, updated_at,
			shipping_name, shipping_address, shipping_city, shipping_state, shipping_zip, shipping_country
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	args := []any{userID}
	if limit >= 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string

	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.UserID, &order.PaymentID, &order.Status,
			&order.TotalCents, &order.CreatedAt, &order.UpdatedAt,
			&order.ShippingName, &order.ShippingAddress, &order.ShippingCity,
			&order.ShippingState, &order.ShippingZip, &order.ShippingCountry); err != nil {
			return nil, err
		}
		order.Items = []domain.OrderItem{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, id, product_id, quantity, price_cents, product_name, product_image_url
		FROM order_items
		WHERE order_id = ANY($1)
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var orderID string
		var item domain.OrderItem
		if err := itemRows.Scan(&orderID, &item.ID, &item.ProductID, &item.Quantity,
			&item.PriceCents, &item.ProductName, &item.ProductImageURL); err != nil {
			return nil, err
		}
		order := orderMap[orderID]
		order.Items = append(order.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}
