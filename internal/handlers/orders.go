package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/techstore-sa/api/internal/domain"
	"github.com/techstore-sa/api/internal/platform/httpx"
	"github.com/techstore-sa/api/internal/services"
)

const maxCheckoutBodySize = 64 * 1024

// OrderHandlers exposes checkout and order lookup endpoints.
type OrderHandlers struct {
	checkout services.CheckoutService
	orders   services.OrderService
}

// NewOrderHandlers constructs a new OrderHandlers instance.
func NewOrderHandlers(checkout services.CheckoutService, orders services.OrderService) *OrderHandlers {
	return &OrderHandlers{
		checkout: checkout,
		orders:   orders,
	}
}

// Routes registers the /orders endpoints.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/orders", h.placeOrder)
	r.Get("/orders/{orderID}", h.getOrder)
}

type createOrderRequest struct {
	FullName   string             `json:"fullName"`
	Email      string             `json:"email"`
	Phone      string             `json:"phone"`
	Address    string             `json:"address"`
	PostalCode string             `json:"postalCode"`
	Country    string             `json:"country"`
	Items      []domain.OrderItem `json:"items"`
}

type orderPayload struct {
	ID             int64              `json:"id"`
	FullName       string             `json:"fullName"`
	Email          string             `json:"email"`
	Phone          string             `json:"phone"`
	Address        string             `json:"address"`
	PostalCode     string             `json:"postalCode"`
	Country        string             `json:"country"`
	Subtotal       int64              `json:"subtotal"`
	WarrantyTotal  int64              `json:"warrantyTotal"`
	InsuranceTotal int64              `json:"insuranceTotal"`
	VAT            int64              `json:"vat"`
	Total          int64              `json:"total"`
	Status         string             `json:"status"`
	Items          []domain.OrderItem `json:"items"`
	RootPolicyIDs  []string           `json:"rootPolicyIds"`
	ApplicationIDs []string           `json:"applicationIds"`
	PolicyHolderID string             `json:"policyHolderId,omitempty"`
	CreatedAt      string             `json:"createdAt,omitempty"`
}

type placeOrderResponse struct {
	Order              orderPayload `json:"order"`
	EmailSent          bool         `json:"emailSent"`
	EmailMessage       string       `json:"emailMessage,omitempty"`
	WhatsAppSent       bool         `json:"whatsappSent"`
	WhatsAppMessage    string       `json:"whatsappMessage,omitempty"`
	WhatsAppURL        string       `json:"whatsappUrl,omitempty"`
	ApplicationsFailed int          `json:"applicationsFailed"`
}

func (h *OrderHandlers) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout service unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxCheckoutBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req createOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	result, err := h.checkout.PlaceOrder(ctx, services.PlaceOrderCommand{
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		Items:      req.Items,
	})
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, placeOrderResponse{
		Order:              buildOrderPayload(result.Order),
		EmailSent:          result.EmailSent,
		EmailMessage:       result.EmailMessage,
		WhatsAppSent:       result.WhatsAppSent,
		WhatsAppMessage:    result.WhatsAppMessage,
		WhatsAppURL:        result.WhatsAppURL,
		ApplicationsFailed: result.ApplicationsFailed,
	})
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "orderID")), 10, 64)
	if err != nil || id <= 0 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order id must be a positive integer", http.StatusBadRequest))
		return
	}

	order, err := h.orders.GetOrder(ctx, id)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildOrderPayload(order))
}

func buildOrderPayload(order domain.Order) orderPayload {
	items := order.Items
	if items == nil {
		items = []domain.OrderItem{}
	}
	policyIDs := order.RootPolicyIDs
	if policyIDs == nil {
		policyIDs = []string{}
	}
	applicationIDs := order.ApplicationIDs
	if applicationIDs == nil {
		applicationIDs = []string{}
	}

	return orderPayload{
		ID:             order.ID,
		FullName:       order.FullName,
		Email:          order.Email,
		Phone:          order.Phone,
		Address:        order.Address,
		PostalCode:     order.PostalCode,
		Country:        order.Country,
		Subtotal:       order.Subtotal,
		WarrantyTotal:  order.WarrantyTotal,
		InsuranceTotal: order.InsuranceTotal,
		VAT:            order.VAT,
		Total:          order.Total,
		Status:         string(order.Status),
		Items:          items,
		RootPolicyIDs:  policyIDs,
		ApplicationIDs: applicationIDs,
		PolicyHolderID: order.PolicyHolderID,
		CreatedAt:      formatTime(order.CreatedAt),
	}
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errEmptyBody):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body is required", http.StatusBadRequest))
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body too large", http.StatusRequestEntityTooLarge))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "failed to read request body", http.StatusBadRequest))
	}
}

func writeCheckoutError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrCheckoutInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCheckoutUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout dependencies unavailable", http.StatusServiceUnavailable))
	case errors.Is(err, services.ErrCheckoutPersistFailed):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_failed", "failed to store the order", http.StatusInternalServerError))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("checkout_error", "failed to place order", http.StatusInternalServerError))
	}
}

func writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrOrderUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("order_unavailable", "order store unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("order_error", "failed to process order request", http.StatusInternalServerError))
	}
}
