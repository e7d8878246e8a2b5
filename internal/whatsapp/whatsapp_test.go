package whatsapp

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	domain "github.com/techstore-sa/api/internal/domain"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	service, err := NewService(ServiceConfig{
		PaymentLinkBaseURL: "https://payments.techstore.co.za",
		Clock: func() time.Time {
			return time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
		},
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return service
}

func TestFormatPhoneNumber(t *testing.T) {
	cases := []struct {
		name    string
		phone   string
		want    string
		wantErr bool
	}{
		{"plus prefixed", "+27821234567", "27821234567", false},
		{"spaced", "+27 82 123 4567", "27821234567", false},
		{"bare country code", "27821234567", "27821234567", false},
		{"local format rejected", "0821234567", "", true},
		{"foreign number rejected", "+441234567890", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FormatPhoneNumber(tc.phone)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("FormatPhoneNumber returned error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("formatted phone = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSendSkipsOrdersWithoutInsuredItems(t *testing.T) {
	service := newTestService(t)

	result := service.SendInsurancePaymentLinks(context.Background(), PaymentLinksRequest{
		CustomerName:  "Jane Doe",
		CustomerPhone: "+27821234567",
		Items: []domain.OrderItem{
			{ProductID: 1, Name: "iPhone 15 Pro", Price: 100000},
		},
	})

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.WebURL != "" {
		t.Fatalf("expected no web url, got %q", result.WebURL)
	}
}

func TestSendPreparesLinkPerInsuredItem(t *testing.T) {
	service := newTestService(t)

	result := service.SendInsurancePaymentLinks(context.Background(), PaymentLinksRequest{
		CustomerName:  "Jane Doe",
		CustomerPhone: "+27821234567",
		OrderID:       42,
		Items: []domain.OrderItem{
			{ProductID: 1, Name: "iPhone 15 Pro", Price: 100000, Insurance: &domain.InsuranceSelection{Type: domain.CoverComprehensive, Price: 8500}},
			{ProductID: 2, Name: "Galaxy S24 Ultra", Price: 200000, Insurance: &domain.InsuranceSelection{Type: domain.CoverTheft, Price: 4500}},
			{ProductID: 3, Name: "Dell XPS 13", Price: 300000},
		},
	})

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if !strings.HasPrefix(result.WebURL, "https://wa.me/27821234567?text=") {
		t.Fatalf("web url = %q", result.WebURL)
	}

	parsed, err := url.Parse(result.WebURL)
	if err != nil {
		t.Fatalf("failed to parse web url: %v", err)
	}
	message := parsed.Query().Get("text")
	if strings.Count(message, "/debit-order?") != 2 {
		t.Fatalf("expected one payment link per insured item in:\n%s", message)
	}
	if !strings.Contains(message, "Hi Jane Doe!") {
		t.Fatalf("expected greeting in message:\n%s", message)
	}
	if !strings.Contains(message, "R85.00/month") || !strings.Contains(message, "R45.00/month") {
		t.Fatalf("expected monthly premiums in message:\n%s", message)
	}
}

func TestSendReportsBadPhoneWithoutError(t *testing.T) {
	service := newTestService(t)

	result := service.SendInsurancePaymentLinks(context.Background(), PaymentLinksRequest{
		CustomerName:  "Jane Doe",
		CustomerPhone: "0821234567",
		Items: []domain.OrderItem{
			{ProductID: 1, Name: "iPhone 15 Pro", Price: 100000, Insurance: &domain.InsuranceSelection{Type: domain.CoverTheft, Price: 4500}},
		},
	})

	if result.Success {
		t.Fatalf("expected failure, got %+v", result)
	}
	if !strings.Contains(result.Message, "+27") {
		t.Fatalf("message = %q", result.Message)
	}
}

func TestPaymentLink(t *testing.T) {
	service := newTestService(t)

	link := service.PaymentLink("iPhone 15 Pro", domain.CoverComprehensive, 8500)
	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("failed to parse link: %v", err)
	}
	query := parsed.Query()
	if query.Get("device") != "iPhone 15 Pro" || query.Get("insurance") != "comprehensive" {
		t.Fatalf("unexpected link query: %v", query)
	}
	if query.Get("amount") != "8500" || query.Get("reference") == "" {
		t.Fatalf("unexpected link query: %v", query)
	}
}
