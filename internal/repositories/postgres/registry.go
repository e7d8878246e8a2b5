package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/techstore-sa/api/internal/repositories"
)

// Registry implements repositories.Registry on a pgx connection pool.
type Registry struct {
	pool     *pgxpool.Pool
	products *ProductRepository
	orders   *OrderRepository
	claims   *ClaimRepository
}

// NewRegistry wires the pgx-backed repositories around a shared pool.
func NewRegistry(pool *pgxpool.Pool) (*Registry, error) {
	if pool == nil {
		return nil, errors.New("postgres: pool is required")
	}
	return &Registry{
		pool:     pool,
		products: &ProductRepository{pool: pool},
		orders:   &OrderRepository{pool: pool},
		claims:   &ClaimRepository{pool: pool},
	}, nil
}

// Products returns the catalog repository.
func (r *Registry) Products() repositories.ProductRepository { return r.products }

// Orders returns the order repository.
func (r *Registry) Orders() repositories.OrderRepository { return r.orders }

// Claims returns the claim repository.
func (r *Registry) Claims() repositories.ClaimRepository { return r.claims }

// Close releases the underlying pool.
func (r *Registry) Close(ctx context.Context) error {
	if r == nil || r.pool == nil {
		return nil
	}
	r.pool.Close()
	return nil
}
