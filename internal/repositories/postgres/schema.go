package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS products (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	price BIGINT NOT NULL,
	original_price BIGINT,
	image TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	badge TEXT NOT NULL DEFAULT '',
	rating TEXT NOT NULL DEFAULT '',
	imei TEXT NOT NULL UNIQUE,
	purchase_date TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS orders (
	id BIGSERIAL PRIMARY KEY,
	full_name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT NOT NULL,
	address TEXT NOT NULL,
	postal_code TEXT NOT NULL,
	country TEXT NOT NULL,
	subtotal BIGINT NOT NULL,
	warranty_total BIGINT NOT NULL DEFAULT 0,
	insurance_total BIGINT NOT NULL DEFAULT 0,
	vat BIGINT NOT NULL DEFAULT 0,
	total BIGINT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	items JSONB NOT NULL DEFAULT '[]',
	root_policy_ids JSONB NOT NULL DEFAULT '[]',
	application_ids JSONB NOT NULL DEFAULT '[]',
	policy_holder_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS claims (
	id BIGSERIAL PRIMARY KEY,
	imei TEXT NOT NULL,
	date_of_incident TEXT NOT NULL,
	description TEXT NOT NULL,
	customer_name TEXT NOT NULL,
	customer_email TEXT NOT NULL,
	customer_phone TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'submitted',
	root_claim_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate creates the schema when missing and seeds the catalog on first run.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return wrapError("create schema", err)
	}

	var count int64
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&count); err != nil {
		return wrapError("count products", err)
	}
	if count > 0 {
		return nil
	}
	return seedProducts(ctx, pool)
}

type seedProduct struct {
	name          string
	description   string
	price         int64
	originalPrice *int64
	image         string
	category      string
	badge         string
	rating        string
	imei          string
	purchaseDate  string
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool) error {
	originalPrice := func(v int64) *int64 { return &v }

	catalog := []seedProduct{
		{"iPhone 15 Pro", "128GB - Titanium Blue", 2499900, nil, "https://images.unsplash.com/photo-1592750475338-74b7b21085ab?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=300", "smartphone", "New", "4.8", "351234567890123", "2024-01-15"},
		{"Galaxy S24 Ultra", "256GB - Phantom Black", 2799900, nil, "https://images.unsplash.com/photo-1610945415295-d9bbf067e59c?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=300", "smartphone", "Hot", "4.9", "352345678901234", "2024-02-10"},
		{"iPad Pro 12.9\"", "512GB - Space Gray", 1999900, nil, "https://images.unsplash.com/photo-1544244015-0df4b3ffc6b0?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=300", "tablet", "Pro", "4.7", "353456789012345", "2024-03-05"},
		{"MacBook Pro 14\"", "1TB - Space Gray", 4599900, nil, "https://images.unsplash.com/photo-1541807084-5c52b6b3adef?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=300", "laptop", "M3", "4.8", "354567890123456", "2024-04-20"},
		{"Pixel 8 Pro", "256GB - Obsidian", 1899900, nil, "https://images.unsplash.com/photo-1598300042247-d088f8ab3a91?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=300", "smartphone", "AI", "4.6", "355678901234567", "2024-05-12"},
		{"Galaxy Tab S9", "256GB - Graphite", 1699900, nil, "https://images.unsplash.com/photo-1561154464-82e9adf32764?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=300", "tablet", "5G", "4.5", "356789012345678", "2024-06-08"},
		{"OnePlus 12", "256GB - Flowy Emerald", 1599900, nil, "https://images.unsplash.com/photo-1511707171634-5f897ff02aa9?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=300", "smartphone", "Fast", "4.4", "357890123456789", "2024-07-15"},
		{"Dell XPS 13", "512GB - Platinum Silver", 2899900, nil, "https://images.unsplash.com/photo-1496181133206-80ce9b88a853?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=300", "laptop", "Ultra", "4.6", "358901234567890", "2024-08-22"},
		{"iPhone 14", "128GB - Purple", 1699900, originalPrice(1999900), "https://images.unsplash.com/photo-1592750475338-74b7b21085ab?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=300", "smartphone", "Sale", "4.7", "359012345678901", "2024-09-10"},
		{"Surface Pro 9", "256GB - Platinum", 2299900, nil, "https://images.unsplash.com/photo-1588872657578-7efd1f1555ed?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=300", "tablet", "2-in-1", "4.5", "360123456789012", "2024-10-18"},
	}

	for _, product := range catalog {
		purchased, err := time.Parse("2006-01-02", product.purchaseDate)
		if err != nil {
			return wrapError("parse seed purchase date", err)
		}
		_, err = pool.Exec(ctx, `
INSERT INTO products (name, description, price, original_price, image, category, badge, rating, imei, purchase_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (imei) DO NOTHING`,
			product.name, product.description, product.price, product.originalPrice,
			product.image, product.category, product.badge, product.rating,
			product.imei, purchased,
		)
		if err != nil {
			return wrapError("seed product", err)
		}
	}
	return nil
}
