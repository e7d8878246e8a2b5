package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domain "github.com/techstore-sa/api/internal/domain"
	"github.com/techstore-sa/api/internal/services"
)

func newOrderRouter(checkout services.CheckoutService, orders services.OrderService) http.Handler {
	return NewRouter(WithOrderRoutes(NewOrderHandlers(checkout, orders).Routes))
}

const placeOrderBody = `{
	"fullName": "Jane Doe",
	"email": "jane@example.com",
	"phone": "0821234567",
	"address": "12 Long Street, Cape Town",
	"postalCode": "8001",
	"country": "South Africa",
	"items": [
		{"productId": 1, "name": "iPhone 15 Pro", "price": 100000, "imei": "351234567890123",
		 "insurance": {"type": "comprehensive", "price": 8500, "quotePackageId": "qp_1"}}
	]
}`

func TestPlaceOrderEndpoint(t *testing.T) {
	checkout := &stubCheckoutService{
		placeOrderFunc: func(ctx context.Context, cmd services.PlaceOrderCommand) (services.PlacedOrder, error) {
			if cmd.FullName != "Jane Doe" || len(cmd.Items) != 1 {
				t.Fatalf("unexpected command: %+v", cmd)
			}
			return services.PlacedOrder{
				Order: domain.Order{
					ID:             42,
					FullName:       cmd.FullName,
					Email:          cmd.Email,
					Status:         domain.OrderStatusApplied,
					Items:          cmd.Items,
					ApplicationIDs: []string{"app_1"},
				},
				EmailSent:    true,
				WhatsAppSent: true,
				WhatsAppURL:  "https://wa.me/27821234567?text=hi",
			}, nil
		},
	}
	router := newOrderRouter(checkout, &stubOrderService{})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(placeOrderBody))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var body struct {
		Order struct {
			ID             int64    `json:"id"`
			Status         string   `json:"status"`
			ApplicationIDs []string `json:"applicationIds"`
			RootPolicyIDs  []string `json:"rootPolicyIds"`
		} `json:"order"`
		EmailSent          bool   `json:"emailSent"`
		WhatsAppSent       bool   `json:"whatsappSent"`
		WhatsAppURL        string `json:"whatsappUrl"`
		ApplicationsFailed int    `json:"applicationsFailed"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Order.ID != 42 || body.Order.Status != "applied" {
		t.Fatalf("unexpected order: %+v", body.Order)
	}
	if len(body.Order.ApplicationIDs) != 1 || body.Order.ApplicationIDs[0] != "app_1" {
		t.Fatalf("application ids = %v", body.Order.ApplicationIDs)
	}
	if body.Order.RootPolicyIDs == nil {
		t.Fatal("expected empty array for policy ids, got null")
	}
	if !body.EmailSent {
		t.Fatal("expected emailSent true")
	}
	if !body.WhatsAppSent || body.WhatsAppURL == "" {
		t.Fatalf("whatsapp outcome = %v %q", body.WhatsAppSent, body.WhatsAppURL)
	}
}

func TestPlaceOrderInvalidJSON(t *testing.T) {
	router := newOrderRouter(&stubCheckoutService{}, &stubOrderService{})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader("{nope"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestPlaceOrderEmptyBody(t *testing.T) {
	router := newOrderRouter(&stubCheckoutService{}, &stubOrderService{})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(""))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestPlaceOrderValidationFailure(t *testing.T) {
	checkout := &stubCheckoutService{
		placeOrderFunc: func(ctx context.Context, cmd services.PlaceOrderCommand) (services.PlacedOrder, error) {
			return services.PlacedOrder{}, services.ErrCheckoutInvalidInput
		},
	}
	router := newOrderRouter(checkout, &stubOrderService{})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(placeOrderBody))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestGetOrderEndpoint(t *testing.T) {
	orders := &stubOrderService{
		getOrderFunc: func(ctx context.Context, id int64) (domain.Order, error) {
			if id != 42 {
				return domain.Order{}, services.ErrOrderNotFound
			}
			return domain.Order{ID: 42, Status: domain.OrderStatusCovered}, nil
		},
	}
	router := newOrderRouter(&stubCheckoutService{}, orders)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/42", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/orders/99", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}
