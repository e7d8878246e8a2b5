package repositories

import (
	"context"
	"errors"

	domain "github.com/techstore-sa/api/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Products() ProductRepository
	Orders() OrderRepository
	Claims() ClaimRepository
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// IsNotFound reports whether the error is a categorised not-found failure.
func IsNotFound(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

// IsConflict reports whether the error is a categorised conflict failure.
func IsConflict(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsConflict()
}

// IsUnavailable reports whether the error is a categorised availability failure.
func IsUnavailable(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsUnavailable()
}

// ProductRepository reads the device catalog.
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	FindByID(ctx context.Context, id int64) (domain.Product, error)
	FindByIMEI(ctx context.Context, imei string) (domain.Product, error)
}

// OrderRepository persists placed orders and their insurance artefacts.
// Updates are last-write-wins; the order row is the only shared mutable state
// across the checkout, issuing, and payment phases.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) (domain.Order, error)
	FindByID(ctx context.Context, id int64) (domain.Order, error)
	UpdateInsurance(ctx context.Context, id int64, status domain.OrderStatus, policyIDs, applicationIDs []string) (domain.Order, error)
	SetPolicyHolderID(ctx context.Context, id int64, policyholderID string) error
}

// ClaimRepository persists locally captured claims.
type ClaimRepository interface {
	Insert(ctx context.Context, claim domain.Claim) (domain.Claim, error)
	List(ctx context.Context) ([]domain.Claim, error)
	SetRootClaimID(ctx context.Context, id int64, rootClaimID string) error
}
