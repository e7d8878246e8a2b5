package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultConnectTimeout = 10 * time.Second

// ProviderConfig configures the connection pool.
type ProviderConfig struct {
	DSN            string
	MaxConns       int32
	ConnectTimeout time.Duration
}

// Provider owns the pgx connection pool shared by the repositories.
type Provider struct {
	pool *pgxpool.Pool
}

// NewProvider connects to postgres and verifies the connection with a ping.
func NewProvider(ctx context.Context, cfg ProviderConfig) (*Provider, error) {
	if cfg.DSN == "" {
		return nil, errors.New("postgres: dsn is required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return &Provider{pool: pool}, nil
}

// Pool exposes the underlying connection pool.
func (p *Provider) Pool() *pgxpool.Pool {
	if p == nil {
		return nil
	}
	return p.pool
}

// Close releases the connection pool.
func (p *Provider) Close() {
	if p == nil || p.pool == nil {
		return
	}
	p.pool.Close()
}
