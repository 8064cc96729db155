package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	_ "github.com/lib/pq"
	"github.com/olekukonko/tablewriter"
)

type seedUser struct {
	id       string
	username string
	email    string
	fullName string
	admin    bool
}

type seedProduct struct {
	id         string
	categoryID string
	name       string
	priceCents int64
	stock      int
	featured   bool
}

var seedUsers = []seedUser{
	{"00000000-0000-0000-0000-000000000001", "admin", "admin@storefront.local", "Store Admin", true},
	{"00000000-0000-0000-0000-000000000002", "ann", "ann@example.com", "Ann Chovey", false},
	{"00000000-0000-0000-0000-000000000003", "bob", "bob@example.com", "Bob Loblaw", false},
}

var seedCategories = map[string]string{
	"10000000-0000-0000-0000-000000000001": "Electronics",
	"10000000-0000-0000-0000-000000000002": "Home & Kitchen",
	"10000000-0000-0000-0000-000000000003": "Outdoors",
}

var seedProducts = []seedProduct{
	{"20000000-0000-0000-0000-000000000001", "10000000-0000-0000-0000-000000000001", "Wireless Headphones", 7999, 25, true},
	{"20000000-0000-0000-0000-000000000002", "10000000-0000-0000-0000-000000000001", "USB-C Charger", 1999, 100, false},
	{"20000000-0000-0000-0000-000000000003", "10000000-0000-0000-0000-000000000002", "French Press", 3499, 40, true},
	{"20000000-0000-0000-0000-000000000004", "10000000-0000-0000-0000-000000000002", "Chef's Knife", 5999, 15, false},
	{"20000000-0000-0000-0000-000000000005", "10000000-0000-0000-0000-000000000003", "Camping Lantern", 2499, 60, false},
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	db, err := sql.Open("postgres", postgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	counts := map[string]int64{}

	for _, u := range seedUsers {
		res, err := db.ExecContext(ctx, `
			INSERT INTO users (id, username, email, password_hash, full_name, admin, created_at)
			VALUES ($1, $2, $3, '', $4, $5, NOW())
			ON CONFLICT (id) DO NOTHING
		`, u.id, u.username, u.email, u.fullName, u.admin)
		if err != nil {
			logger.Error("failed to seed user", "error", err, "username", u.username)
			os.Exit(1)
		}
		n, _ := res.RowsAffected()
		counts["users"] += n
	}

	for id, name := range seedCategories {
		res, err := db.ExecContext(ctx, `
			INSERT INTO categories (id, name)
			VALUES ($1, $2)
			ON CONFLICT (id) DO NOTHING
		`, id, name)
		if err != nil {
			logger.Error("failed to seed category", "error", err, "name", name)
			os.Exit(1)
		}
		n, _ := res.RowsAffected()
		counts["categories"] += n
	}

	for _, p := range seedProducts {
		res, err := db.ExecContext(ctx, `
			INSERT INTO products (id, category_id, name, description, price_cents, stock_quantity, featured)
			VALUES ($1, $2, $3, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING
		`, p.id, p.categoryID, p.name, p.priceCents, p.stock, p.featured)
		if err != nil {
			logger.Error("failed to seed product", "error", err, "name", p.name)
			os.Exit(1)
		}
		n, _ := res.RowsAffected()
		counts["products"] += n
	}

	table := tablewriter.NewTable(os.Stdout)
	table.Header("Table", "Inserted")
	for _, name := range []string{"users", "categories", "products"} {
		_ = table.Append(name, counts[name])
	}
	if err := table.Render(); err != nil {
		logger.Error("failed to render summary", "error", err)
		os.Exit(1)
	}

	logger.Info("seed complete")
}
