package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	domain "github.com/techstore-sa/api/internal/domain"
)

// Logger defines the logging contract for WhatsApp operations.
type Logger func(ctx context.Context, event string, fields map[string]any)

// ServiceConfig configures the Service.
type ServiceConfig struct {
	PaymentLinkBaseURL string
	Logger             Logger
	Clock              func() time.Time
}

// Service composes insurance payment link messages and prepares wa.me links
// for delivery. There is no WhatsApp Business API integration; the composed
// web link is handed back to the caller.
type Service struct {
	linkBaseURL string
	logger      Logger
	clock       func() time.Time
}

// Result reports the outcome of a dispatch attempt.
type Result struct {
	Success bool
	Message string
	WebURL  string
}

// PaymentLinksRequest describes the message to prepare after checkout.
type PaymentLinksRequest struct {
	CustomerName  string
	CustomerPhone string
	OrderID       int64
	Items         []domain.OrderItem
}

// NewService constructs a Service using the given configuration.
func NewService(cfg ServiceConfig) (*Service, error) {
	linkBaseURL := strings.TrimRight(strings.TrimSpace(cfg.PaymentLinkBaseURL), "/")
	if linkBaseURL == "" {
		return nil, errors.New("whatsapp: payment link base url is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Service{
		linkBaseURL: linkBaseURL,
		logger:      logger,
		clock:       clock,
	}, nil
}

// SendInsurancePaymentLinks prepares one payment authorization link per
// insured item and wraps them in a wa.me message for the customer's number.
// Orders without insured items succeed trivially. A bad phone number is
// reported in the result, never as an error, so checkout can complete
// regardless.
func (s *Service) SendInsurancePaymentLinks(ctx context.Context, req PaymentLinksRequest) Result {
	if s == nil {
		return Result{Success: false, Message: "whatsapp service not configured"}
	}

	insured := insuredItems(req.Items)
	if len(insured) == 0 {
		return Result{Success: true, Message: "No insurance items to process"}
	}

	phone, err := FormatPhoneNumber(req.CustomerPhone)
	if err != nil {
		s.logger(ctx, "whatsapp.phone_rejected", map[string]any{
			"orderId": req.OrderID,
			"error":   err.Error(),
		})
		return Result{Success: false, Message: err.Error()}
	}

	message := s.composeMessage(req.CustomerName, insured)
	webURL := "https://wa.me/" + phone + "?text=" + url.QueryEscape(message)

	s.logger(ctx, "whatsapp.links_prepared", map[string]any{
		"orderId": req.OrderID,
		"phone":   "+" + phone,
		"items":   len(insured),
	})

	return Result{
		Success: true,
		Message: fmt.Sprintf("Insurance payment links sent to +%s via WhatsApp", phone),
		WebURL:  webURL,
	}
}

// FormatPhoneNumber normalises a South African number to digits with the 27
// country code. Numbers without the +27 prefix are rejected.
func FormatPhoneNumber(phone string) (string, error) {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	clean := digits.String()
	if !strings.HasPrefix(clean, "27") {
		return "", errors.New("whatsapp: phone number must start with +27 for South African numbers")
	}
	return clean, nil
}

// PaymentLink builds the debit order authorization URL for a single device.
func (s *Service) PaymentLink(deviceName string, coverType domain.CoverType, monthlyPremium int64) string {
	query := url.Values{}
	query.Set("device", deviceName)
	query.Set("insurance", string(coverType))
	query.Set("amount", fmt.Sprintf("%d", monthlyPremium))
	query.Set("reference", fmt.Sprintf("%d", s.clock().UnixMilli()))
	return s.linkBaseURL + "/debit-order?" + query.Encode()
}

func (s *Service) composeMessage(customerName string, insured []domain.OrderItem) string {
	var msg strings.Builder
	msg.WriteString("*Guardrisk Tech - Device Insurance Setup*\n\n")
	fmt.Fprintf(&msg, "Hi %s!\n\n", customerName)
	msg.WriteString("Thank you for your purchase! To complete your device insurance setup, please click the payment links below to authorize your monthly debit orders:\n\n")

	for _, item := range insured {
		link := s.PaymentLink(item.Name, item.Insurance.Type, item.Insurance.Price)
		fmt.Fprintf(&msg, "*%s*\n", item.Name)
		fmt.Fprintf(&msg, "%s Coverage\n", coverLabel(item.Insurance.Type))
		fmt.Fprintf(&msg, "R%d.%02d/month\n", item.Insurance.Price/100, item.Insurance.Price%100)
		fmt.Fprintf(&msg, "Setup Payment: %s\n\n", link)
	}

	msg.WriteString("*Important Notes:*\n")
	msg.WriteString("- Your device warranty is already active\n")
	msg.WriteString("- Insurance becomes active once debit order is authorized\n")
	msg.WriteString("- You can cancel anytime by contacting support\n")
	msg.WriteString("- Keep this message for your records\n\n")
	msg.WriteString("Need help? Contact us at support@grtech.co.za\n\n")
	msg.WriteString("*Guardrisk Tech* - Powered by Root Insurance")

	return msg.String()
}

func coverLabel(ct domain.CoverType) string {
	label := strings.ReplaceAll(string(ct), "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

func insuredItems(items []domain.OrderItem) []domain.OrderItem {
	var insured []domain.OrderItem
	for _, item := range items {
		if item.Insurance != nil {
			insured = append(insured, item)
		}
	}
	return insured
}
