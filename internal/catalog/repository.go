package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

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

// Query narrows a product listing. Zero values mean no filter.
type Query struct {
	Name         string
	CategoryID   string
	FeaturedOnly bool
}

func (r *Repository) Create(ctx context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}

	if product.CategoryID != nil {
		if _, err := r.FindCategory(ctx, *product.CategoryID); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	product.ID = uuid.New().String()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO products (id, name, description, price_cents, stock_quantity, featured, category_id, main_image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, product.ID, product.Name, product.Description, product.PriceCents,
		product.StockQuantity, product.Featured, product.CategoryID, product.MainImageURL)
	if err != nil {
		return err
	}

	if err := insertImages(ctx, tx, product.ID, product.AdditionalImages); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) Update(ctx context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}

	if product.CategoryID != nil {
		if _, err := r.FindCategory(ctx, *product.CategoryID); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE products
		SET name = $2, description = $3, price_cents = $4, stock_quantity = $5,
		    featured = $6, category_id = $7, main_image_url = $8
		WHERE id = $1
	`, product.ID, product.Name, product.Description, product.PriceCents,
		product.StockQuantity, product.Featured, product.CategoryID, product.MainImageURL)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: product %s", domain.ErrNotFound, product.ID)
	}

	// Replace the image list wholesale.
	if _, err := tx.ExecContext(ctx, `DELETE FROM product_images WHERE product_id = $1`, product.ID); err != nil {
		return err
	}
	if err := insertImages(ctx, tx, product.ID, product.AdditionalImages); err != nil {
		return err
	}

	return tx.Commit()
}

func insertImages(ctx context.Context, tx *sql.Tx, productID string, urls []string) error {
	for i, url := range urls {
		if url == "" {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO product_images (id, product_id, url, position)
			VALUES ($1, $2, $3, $4)
		`, uuid.New().String(), productID, url, i)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	product := &domain.Product{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, price_cents, stock_quantity, featured, category_id, main_image_url
		FROM products
		WHERE id = $1
	`, id).Scan(&product.ID, &product.Name, &product.Description, &product.PriceCents,
		&product.StockQuantity, &product.Featured, &product.CategoryID, &product.MainImageURL)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT url FROM product_images WHERE product_id = $1 ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		product.AdditionalImages = append(product.AdditionalImages, url)
	}

	return product, rows.Err()
}

// List returns one page of products matching the query, images included.
func (r *Repository) List(ctx context.Context, q Query, page, size int) (domain.Page[domain.Product], error) {
	var zero domain.Page[domain.Product]

	where := "WHERE 1=1"
	args := []any{}
	if q.Name != "" {
		args = append(args, "%"+q.Name+"%")
		where += " AND name ILIKE $" + strconv.Itoa(len(args))
	}
	if q.CategoryID != "" {
		args = append(args, q.CategoryID)
		where += " AND category_id = $" + strconv.Itoa(len(args))
	}
	if q.FeaturedOnly {
		where += " AND featured"
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products `+where, args...).Scan(&total); err != nil {
		return zero, err
	}

	limitArgs := append(args, size, page*size)
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, name, description, price_cents, stock_quantity, featured, category_id, main_image_url
		FROM products %s
		ORDER BY name
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2), limitArgs...)
	if err != nil {
		return zero, err
	}
	defer func() { _ = rows.Close() }()

	productMap := make(map[string]*domain.Product)
	var ids []string
	var products []domain.Product

	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents,
			&p.StockQuantity, &p.Featured, &p.CategoryID, &p.MainImageURL); err != nil {
			return zero, err
		}
		products = append(products, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return zero, err
	}

	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	if len(ids) > 0 {
		imageRows, err := r.db.QueryContext(ctx, `
			SELECT product_id, url
			FROM product_images
			WHERE product_id = ANY($1)
			ORDER BY position
		`, pq.Array(ids))
		if err != nil {
			return zero, err
		}
		defer func() { _ = imageRows.Close() }()

		for imageRows.Next() {
			var productID, url string
			if err := imageRows.Scan(&productID, &url); err != nil {
				return zero, err
			}
			p := productMap[productID]
			p.AdditionalImages = append(p.AdditionalImages, url)
		}
		if err := imageRows.Err(); err != nil {
			return zero, err
		}
	}

	return domain.NewPage(products, page, size, total), nil
}

// Delete removes a product and manually cascades everything it owns:
// images, comments, questions with their answers, and product questions.
// Order items are left alone, they carry their own snapshot of the
// product.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}

	cascades := []string{
		`DELETE FROM product_images WHERE product_id = $1`,
		`DELETE FROM comments WHERE product_id = $1`,
		`DELETE FROM answers WHERE question_id IN (SELECT id FROM questions WHERE product_id = $1)`,
		`DELETE FROM questions WHERE product_id = $1`,
		`DELETE FROM product_questions WHERE product_id = $1`,
	}
	for _, stmt := range cascades {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) Stock(ctx context.Context, productID string) (int, error) {
	var stock int
	err := r.db.QueryRowContext(ctx,
		`SELECT stock_quantity FROM products WHERE id = $1`, productID,
	).Scan(&stock)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: product %s", domain.ErrNotFound, productID)
	}
	return stock, err
}

func (r *Repository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description FROM categories ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (r *Repository) CreateCategory(ctx context.Context, category *domain.Category) error {
	if category.Name == "" {
		return fmt.Errorf("%w: category name is required", domain.ErrValidation)
	}

	category.ID = uuid.New().String()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, description) VALUES ($1, $2, $3)
	`, category.ID, category.Name, category.Description)
	return err
}

func (r *Repository) FindCategory(ctx context.Context, id string) (*domain.Category, error) {
	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description FROM categories WHERE id = $1
	`, id).Scan(&category.ID, &category.Name, &category.Description)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: category %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return category, nil
}
