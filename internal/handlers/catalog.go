package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/techstore-sa/api/internal/domain"
	"github.com/techstore-sa/api/internal/platform/httpx"
	"github.com/techstore-sa/api/internal/services"
)

// CatalogHandlers exposes the device catalog endpoints.
type CatalogHandlers struct {
	catalog services.CatalogService
}

// NewCatalogHandlers constructs a new CatalogHandlers instance.
func NewCatalogHandlers(catalog services.CatalogService) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog}
}

// Routes registers the /products endpoints.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/products", h.listProducts)
	r.Get("/products/{productID}", h.getProduct)
	r.Get("/products/imei/{imei}", h.getProductByIMEI)
}

type productPayload struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         int64  `json:"price"`
	OriginalPrice *int64 `json:"originalPrice,omitempty"`
	Image         string `json:"image,omitempty"`
	Category      string `json:"category,omitempty"`
	Badge         string `json:"badge,omitempty"`
	Rating        string `json:"rating,omitempty"`
	IMEI          string `json:"imei"`
	PurchaseDate  string `json:"purchaseDate,omitempty"`
}

type warrantyStatusPayload struct {
	WithinManufacturerWarranty bool `json:"withinManufacturerWarranty"`
	WithinExtendedWarranty     bool `json:"withinExtendedWarranty"`
	MonthsSincePurchase        int  `json:"monthsSincePurchase"`
}

type productWithWarrantyResponse struct {
	Product        productPayload        `json:"product"`
	WarrantyStatus warrantyStatusPayload `json:"warrantyStatus"`
}

func (h *CatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service unavailable", http.StatusServiceUnavailable))
		return
	}

	products, err := h.catalog.ListProducts(ctx)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	payload := make([]productPayload, 0, len(products))
	for _, product := range products {
		payload = append(payload, buildProductPayload(product))
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *CatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service unavailable", http.StatusServiceUnavailable))
		return
	}

	id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "productID")), 10, 64)
	if err != nil || id <= 0 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "product id must be a positive integer", http.StatusBadRequest))
		return
	}

	product, err := h.catalog.GetProduct(ctx, id)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildProductPayload(product))
}

func (h *CatalogHandlers) getProductByIMEI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service unavailable", http.StatusServiceUnavailable))
		return
	}

	imei := strings.TrimSpace(chi.URLParam(r, "imei"))
	if imei == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "imei is required", http.StatusBadRequest))
		return
	}

	result, err := h.catalog.GetProductByIMEI(ctx, imei)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, productWithWarrantyResponse{
		Product: buildProductPayload(result.Product),
		WarrantyStatus: warrantyStatusPayload{
			WithinManufacturerWarranty: result.WarrantyStatus.WithinManufacturerWarranty,
			WithinExtendedWarranty:     result.WarrantyStatus.WithinExtendedWarranty,
			MonthsSincePurchase:        result.WarrantyStatus.MonthsSincePurchase,
		},
	})
}

func buildProductPayload(product domain.Product) productPayload {
	payload := productPayload{
		ID:            product.ID,
		Name:          product.Name,
		Description:   product.Description,
		Price:         product.Price,
		OriginalPrice: product.OriginalPrice,
		Image:         product.Image,
		Category:      product.Category,
		Badge:         product.Badge,
		Rating:        product.Rating,
		IMEI:          product.IMEI,
	}
	if product.PurchaseDate != nil {
		payload.PurchaseDate = formatTime(*product.PurchaseDate)
	}
	return payload
}

func writeCatalogError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrCatalogInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCatalogNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCatalogUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog store unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("catalog_error", "failed to read catalog", http.StatusInternalServerError))
	}
}
