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
	// ErrCatalogInvalidInput indicates the caller supplied invalid input parameters.
	ErrCatalogInvalidInput = errors.New("catalog: invalid input")
	// ErrCatalogNotFound indicates the requested product does not exist.
	ErrCatalogNotFound = errors.New("catalog: product not found")
	// ErrCatalogUnavailable indicates the catalog store is currently unavailable.
	ErrCatalogUnavailable = errors.New("catalog: unavailable")
)

// ProductWithWarranty pairs a product with its computed warranty status.
type ProductWithWarranty struct {
	Product        domain.Product
	WarrantyStatus domain.WarrantyStatus
}

// CatalogService reads the device catalog.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	GetProductByIMEI(ctx context.Context, imei string) (ProductWithWarranty, error)
}

// CatalogServiceDeps wires the dependencies required by the catalog service.
type CatalogServiceDeps struct {
	Products repositories.ProductRepository
	Clock    func() time.Time
	Logger   func(ctx context.Context, event string, fields map[string]any)
}

type catalogService struct {
	products repositories.ProductRepository
	now      func() time.Time
	logger   func(ctx context.Context, event string, fields map[string]any)
}

// NewCatalogService constructs a CatalogService validating required dependencies.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Products == nil {
		return nil, errors.New("catalog service: product repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &catalogService{
		products: deps.Products,
		now: func() time.Time {
			return clock().UTC()
		},
		logger: logger,
	}, nil
}

// ListProducts returns the full catalog.
func (s *catalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, s.translateRepositoryError(err)
	}
	return products, nil
}

// GetProduct returns a single product by id.
func (s *catalogService) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	if id <= 0 {
		return domain.Product{}, ErrCatalogInvalidInput
	}
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, s.translateRepositoryError(err)
	}
	return product, nil
}

// GetProductByIMEI returns a product together with its warranty classification.
func (s *catalogService) GetProductByIMEI(ctx context.Context, imei string) (ProductWithWarranty, error) {
	imei = strings.TrimSpace(imei)
	if imei == "" {
		return ProductWithWarranty{}, ErrCatalogInvalidInput
	}

	product, err := s.products.FindByIMEI(ctx, imei)
	if err != nil {
		return ProductWithWarranty{}, s.translateRepositoryError(err)
	}

	return ProductWithWarranty{
		Product:        product,
		WarrantyStatus: domain.WarrantyStatusAt(product.PurchaseDate, s.now()),
	}, nil
}

func (s *catalogService) translateRepositoryError(err error) error {
	switch {
	case repositories.IsNotFound(err):
		return ErrCatalogNotFound
	case repositories.IsUnavailable(err):
		return ErrCatalogUnavailable
	default:
		return err
	}
}
