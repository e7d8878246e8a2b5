package mail

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"

	domain "github.com/techstore-sa/api/internal/domain"
)

const insuranceSubject = "Guardrisk Tech - Complete Your Device Insurance Setup"

// Logger defines the logging contract for mail operations.
type Logger func(ctx context.Context, event string, fields map[string]any)

// SendFunc delivers a composed message. Injectable for tests.
type SendFunc func(ctx context.Context, msg *gomail.Msg) error

// MailerConfig configures the Mailer.
type MailerConfig struct {
	Host               string
	Port               int
	Username           string
	Password           string
	From               string
	PaymentLinkBaseURL string
	Send               SendFunc
	Logger             Logger
	Clock              func() time.Time
}

// Mailer composes and sends insurance payment link emails over SMTP.
type Mailer struct {
	from        string
	linkBaseURL string
	send        SendFunc
	logger      Logger
	clock       func() time.Time
}

// Result reports the outcome of a dispatch attempt.
type Result struct {
	Success bool
	Message string
}

// PaymentLinksRequest describes the email to send after checkout.
type PaymentLinksRequest struct {
	CustomerName  string
	CustomerEmail string
	OrderID       int64
	Items         []domain.OrderItem
}

// NewMailer constructs a Mailer using the given configuration.
func NewMailer(cfg MailerConfig) (*Mailer, error) {
	from := strings.TrimSpace(cfg.From)
	if from == "" {
		return nil, errors.New("mail: sender address is required")
	}

	linkBaseURL := strings.TrimRight(strings.TrimSpace(cfg.PaymentLinkBaseURL), "/")
	if linkBaseURL == "" {
		return nil, errors.New("mail: payment link base url is required")
	}

	send := cfg.Send
	if send == nil {
		if strings.TrimSpace(cfg.Host) == "" {
			return nil, errors.New("mail: smtp host is required")
		}
		opts := []gomail.Option{
			gomail.WithPort(cfg.Port),
			gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		}
		if cfg.Username != "" {
			opts = append(opts,
				gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
				gomail.WithUsername(cfg.Username),
				gomail.WithPassword(cfg.Password),
			)
		}
		client, err := gomail.NewClient(cfg.Host, opts...)
		if err != nil {
			return nil, fmt.Errorf("mail: create smtp client: %w", err)
		}
		send = func(ctx context.Context, msg *gomail.Msg) error {
			return client.DialAndSendWithContext(ctx, msg)
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Mailer{
		from:        from,
		linkBaseURL: linkBaseURL,
		send:        send,
		logger:      logger,
		clock:       clock,
	}, nil
}

// SendInsurancePaymentLinks emails one payment authorization link per insured
// item. Orders without insured items succeed trivially without a send. A
// delivery failure is reported in the result, never as an error, so checkout
// can complete regardless.
func (m *Mailer) SendInsurancePaymentLinks(ctx context.Context, req PaymentLinksRequest) Result {
	if m == nil {
		return Result{Success: false, Message: "mailer not configured"}
	}

	insured := insuredItems(req.Items)
	if len(insured) == 0 {
		return Result{Success: true, Message: "No insurance items to process"}
	}

	htmlBody, textBody, err := m.composeBodies(req.CustomerName, insured)
	if err != nil {
		m.logger(ctx, "mail.compose.failed", map[string]any{"error": err.Error()})
		return Result{Success: false, Message: err.Error()}
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat("Guardrisk Tech", m.from); err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	if err := msg.To(req.CustomerEmail); err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	msg.Subject(insuranceSubject)
	msg.SetBodyString(gomail.TypeTextPlain, textBody)
	msg.AddAlternativeString(gomail.TypeTextHTML, htmlBody)

	if err := m.send(ctx, msg); err != nil {
		m.logger(ctx, "mail.send.failed", map[string]any{
			"orderId": req.OrderID,
			"error":   err.Error(),
		})
		return Result{Success: false, Message: err.Error()}
	}

	m.logger(ctx, "mail.send.succeeded", map[string]any{
		"orderId": req.OrderID,
		"items":   len(insured),
	})
	return Result{Success: true, Message: fmt.Sprintf("payment links sent for %d item(s)", len(insured))}
}

// PaymentLink builds the debit order authorization URL for a single device.
func (m *Mailer) PaymentLink(deviceName string, coverType domain.CoverType, monthlyPremium int64) string {
	query := url.Values{}
	query.Set("device", deviceName)
	query.Set("insurance", string(coverType))
	query.Set("amount", fmt.Sprintf("%d", monthlyPremium))
	query.Set("reference", fmt.Sprintf("%d", m.clock().UnixMilli()))
	return m.linkBaseURL + "/debit-order?" + query.Encode()
}

type emailItem struct {
	Name        string
	CoverType   string
	MonthlyRand string
	PaymentLink string
}

var htmlTemplate = template.Must(template.New("insurance").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body>
<div class="container">
<div class="header"><h1>Device Insurance Setup</h1><p>Guardrisk Tech</p></div>
<div class="content">
<h2>Hi {{.CustomerName}}!</h2>
<p>Thank you for your purchase! To complete your device insurance setup, please click the payment links below to authorize your monthly debit orders.</p>
{{range .Items}}<div class="device-item">
<h3>{{.Name}}</h3>
<p><strong>Coverage:</strong> {{.CoverType}}</p>
<p class="price">R{{.MonthlyRand}}/month</p>
<a href="{{.PaymentLink}}" class="payment-button">Setup Payment Authorization</a>
</div>
{{end}}<div class="important">
<h3>Important Information:</h3>
<ul>
<li>Your device warranty is already active</li>
<li>Insurance becomes active once debit order is authorized</li>
<li>You can cancel anytime by contacting our support team</li>
<li>Keep this email for your records</li>
</ul>
</div>
<p>Need assistance? Contact us at <a href="mailto:support@grtech.co.za">support@grtech.co.za</a></p>
</div>
<div class="footer"><p><strong>Guardrisk Tech</strong><br>Powered by Root Insurance<br>This is an automated message - please do not reply to this email</p></div>
</div>
</body>
</html>`))

func (m *Mailer) composeBodies(customerName string, insured []domain.OrderItem) (string, string, error) {
	items := make([]emailItem, 0, len(insured))
	for _, item := range insured {
		items = append(items, emailItem{
			Name:        item.Name,
			CoverType:   string(item.Insurance.Type),
			MonthlyRand: formatRand(item.Insurance.Price),
			PaymentLink: m.PaymentLink(item.Name, item.Insurance.Type, item.Insurance.Price),
		})
	}

	var html strings.Builder
	data := struct {
		CustomerName string
		Items        []emailItem
	}{CustomerName: customerName, Items: items}
	if err := htmlTemplate.Execute(&html, data); err != nil {
		return "", "", fmt.Errorf("mail: render html body: %w", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Guardrisk Tech - Device Insurance Setup\n\nHi %s!\n\n", customerName)
	text.WriteString("Thank you for your purchase! To complete your device insurance setup, use the payment links below:\n\n")
	for _, item := range items {
		fmt.Fprintf(&text, "Device: %s\nCoverage: %s\nMonthly Cost: R%s\nSetup Payment: %s\n\n", item.Name, item.CoverType, item.MonthlyRand, item.PaymentLink)
	}
	text.WriteString("Need assistance? Contact us at support@grtech.co.za\n")

	return html.String(), text.String(), nil
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

func formatRand(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
