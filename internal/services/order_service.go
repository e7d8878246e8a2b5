package services

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/techstore-sa/api/internal/domain"
	"github.com/techstore-sa/api/internal/repositories"
)

var (
	// ErrOrderInvalidInput indicates the caller supplied invalid order parameters.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrOrderNotFound indicates the requested order does not exist.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrOrderUnavailable indicates the order store is currently unavailable.
	ErrOrderUnavailable = errors.New("order: unavailable")
)

// OrderService reads orders and records the resolved policyholder.
type OrderService interface {
	GetOrder(ctx context.Context, id int64) (domain.Order, error)
	SetPolicyHolder(ctx context.Context, orderID int64, policyholderID string) (domain.Order, error)
}

// OrderServiceDeps wires the dependencies required by the order service.
type OrderServiceDeps struct {
	Orders repositories.OrderRepository
	Clock  func() time.Time
	Logger func(ctx context.Context, event string, fields map[string]any)
}

type orderService struct {
	orders repositories.OrderRepository
	logger func(ctx context.Context, event string, fields map[string]any)
}

// NewOrderService constructs an OrderService validating required dependencies.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &orderService{
		orders: deps.Orders,
		logger: logger,
	}, nil
}

// GetOrder returns a single order.
func (s *orderService) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	if id <= 0 {
		return domain.Order{}, ErrOrderInvalidInput
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, s.translateRepositoryError(err)
	}
	return order, nil
}

// SetPolicyHolder records the resolved policyholder on an order.
func (s *orderService) SetPolicyHolder(ctx context.Context, orderID int64, policyholderID string) (domain.Order, error) {
	policyholderID = strings.TrimSpace(policyholderID)
	if orderID <= 0 || policyholderID == "" {
		return domain.Order{}, ErrOrderInvalidInput
	}

	if err := s.orders.SetPolicyHolderID(ctx, orderID, policyholderID); err != nil {
		return domain.Order{}, s.translateRepositoryError(err)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, s.translateRepositoryError(err)
	}

	s.logger(ctx, "order.policyholder_set", map[string]any{
		"orderId":        orderID,
		"policyholderId": policyholderID,
	})
	return order, nil
}

func (s *orderService) translateRepositoryError(err error) error {
	switch {
	case repositories.IsNotFound(err):
		return ErrOrderNotFound
	case repositories.IsUnavailable(err):
		return ErrOrderUnavailable
	default:
		return err
	}
}
