package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/techstore-sa/api/internal/domain"
)

func newCatalogServiceForTest(t *testing.T, products *stubProductRepository, clock func() time.Time) CatalogService {
	t.Helper()
	service, err := NewCatalogService(CatalogServiceDeps{Products: products, Clock: clock})
	if err != nil {
		t.Fatalf("NewCatalogService returned error: %v", err)
	}
	return service
}

func TestGetProductByIMEIComputesWarranty(t *testing.T) {
	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name             string
		purchase         *time.Time
		wantManufacturer bool
		wantExtended     bool
	}{
		{"recent purchase", timePtr(now.AddDate(0, 0, -90)), true, true},
		{"past manufacturer window", timePtr(now.AddDate(0, 0, -30*30)), false, true},
		{"past extended window", timePtr(now.AddDate(0, 0, -70*30)), false, false},
		{"no purchase date", nil, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			products := &stubProductRepository{
				findByIMEIFunc: func(ctx context.Context, imei string) (domain.Product, error) {
					return domain.Product{ID: 1, Name: "iPhone 15 Pro", IMEI: imei, PurchaseDate: tc.purchase}, nil
				},
			}
			service := newCatalogServiceForTest(t, products, func() time.Time { return now })

			result, err := service.GetProductByIMEI(context.Background(), "351234567890123")
			if err != nil {
				t.Fatalf("GetProductByIMEI returned error: %v", err)
			}
			if result.WarrantyStatus.WithinManufacturerWarranty != tc.wantManufacturer {
				t.Fatalf("manufacturer = %v, want %v", result.WarrantyStatus.WithinManufacturerWarranty, tc.wantManufacturer)
			}
			if result.WarrantyStatus.WithinExtendedWarranty != tc.wantExtended {
				t.Fatalf("extended = %v, want %v", result.WarrantyStatus.WithinExtendedWarranty, tc.wantExtended)
			}
		})
	}
}

func TestGetProductByIMEIRequiresIMEI(t *testing.T) {
	service := newCatalogServiceForTest(t, &stubProductRepository{}, nil)

	if _, err := service.GetProductByIMEI(context.Background(), "  "); !errors.Is(err, ErrCatalogInvalidInput) {
		t.Fatalf("err = %v, want ErrCatalogInvalidInput", err)
	}
}

func TestGetProductTranslatesNotFound(t *testing.T) {
	products := &stubProductRepository{
		findByIDFunc: func(ctx context.Context, id int64) (domain.Product, error) {
			return domain.Product{}, errStubNotFound
		},
	}
	service := newCatalogServiceForTest(t, products, nil)

	if _, err := service.GetProduct(context.Background(), 99); !errors.Is(err, ErrCatalogNotFound) {
		t.Fatalf("err = %v, want ErrCatalogNotFound", err)
	}
	if _, err := service.GetProduct(context.Background(), 0); !errors.Is(err, ErrCatalogInvalidInput) {
		t.Fatalf("err = %v, want ErrCatalogInvalidInput", err)
	}
}

func TestListProductsTranslatesUnavailable(t *testing.T) {
	products := &stubProductRepository{
		listFunc: func(ctx context.Context) ([]domain.Product, error) {
			return nil, errStubUnavailable
		},
	}
	service := newCatalogServiceForTest(t, products, nil)

	if _, err := service.ListProducts(context.Background()); !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("err = %v, want ErrCatalogUnavailable", err)
	}
}

func timePtr(t time.Time) *time.Time { return &t }
