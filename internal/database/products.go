package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/TharukaVishwajith/playwright-crawler/internal/models"
)

// EnsureSchema creates the products table if it does not exist. The JSON
// files remain the primary store; the table is a queryable mirror.
func (db *DB) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS products (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			price TEXT NOT NULL DEFAULT '',
			rating TEXT NOT NULL DEFAULT '',
			review_count TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL UNIQUE,
			specifications JSONB,
			reviews JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`

	if _, err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create products table: %w", err)
	}

	return nil
}

// SaveListings upserts listing records keyed by URL inside one
// transaction, so the mirror is never left half-written. Records
// without a URL cannot be upserted and are skipped.
func (db *DB) SaveListings(ctx context.Context, listings []models.ListingRecord) error {
	query := `
		INSERT INTO products (name, price, rating, review_count, url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (url) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			rating = EXCLUDED.rating,
			review_count = EXCLUDED.review_count,
			updated_at = CURRENT_TIMESTAMP`

	return db.WithTx(ctx, func(tx pgx.Tx) error {
		for _, l := range listings {
			if l.URL == "" {
				continue
			}
			_, err := tx.Exec(ctx, query,
				l.Name, l.Price, l.Rating, l.ReviewCount, l.URL,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert listing %q: %w", l.URL, err)
			}
		}
		return nil
	})
}

// SaveDetail stores the scraped specifications and reviews for a product.
func (db *DB) SaveDetail(ctx context.Context, detail models.DetailRecord) error {
	if detail.URL == "" {
		return nil
	}

	specsJSON, err := json.Marshal(detail.Specifications)
	if err != nil {
		return fmt.Errorf("failed to marshal specifications: %w", err)
	}

	reviewsJSON, err := json.Marshal(detail.Reviews)
	if err != nil {
		return fmt.Errorf("failed to marshal reviews: %w", err)
	}

	query := `
		INSERT INTO products (name, price, rating, review_count, url, specifications, reviews)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (url) DO UPDATE SET
			specifications = EXCLUDED.specifications,
			reviews = EXCLUDED.reviews,
			updated_at = CURRENT_TIMESTAMP`

	_, err = db.Exec(ctx, query,
		detail.Name, detail.Price, detail.Rating, detail.ReviewCount, detail.URL,
		specsJSON, reviewsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save detail %q: %w", detail.URL, err)
	}

	return nil
}

// CountProducts returns the number of stored products and how many of
// them have detail data.
func (db *DB) CountProducts(ctx context.Context) (total int, withDetails int, err error) {
	query := `
		SELECT COUNT(*), COUNT(specifications)
		FROM products`

	if err := db.QueryRow(ctx, query).Scan(&total, &withDetails); err != nil {
		return 0, 0, fmt.Errorf("failed to count products: %w", err)
	}

	return total, withDetails, nil
}
