package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	domain "github.com/techstore-sa/api/internal/domain"
	"github.com/techstore-sa/api/internal/insurance"
	"github.com/techstore-sa/api/internal/mail"
	"github.com/techstore-sa/api/internal/repositories"
	"github.com/techstore-sa/api/internal/whatsapp"
)

var (
	// ErrCheckoutInvalidInput indicates the caller supplied invalid order details.
	ErrCheckoutInvalidInput = errors.New("checkout: invalid input")
	// ErrCheckoutUnavailable indicates checkout dependencies are currently unavailable.
	ErrCheckoutUnavailable = errors.New("checkout: unavailable")
	// ErrCheckoutPersistFailed indicates the order could not be stored.
	ErrCheckoutPersistFailed = errors.New("checkout: persist failed")
)

// applicationClient abstracts the platform operation used during checkout.
type applicationClient interface {
	CreateApplication(ctx context.Context, req insurance.ApplicationRequest) (insurance.Application, error)
}

// policyholderResolver abstracts policyholder resolution for checkout.
type policyholderResolver interface {
	Resolve(ctx context.Context, cmd ResolvePolicyholderCommand) (insurance.Policyholder, error)
}

// paymentLinkMailer abstracts the post-checkout email dispatch.
type paymentLinkMailer interface {
	SendInsurancePaymentLinks(ctx context.Context, req mail.PaymentLinksRequest) mail.Result
}

// paymentLinkMessenger abstracts the post-checkout WhatsApp dispatch.
type paymentLinkMessenger interface {
	SendInsurancePaymentLinks(ctx context.Context, req whatsapp.PaymentLinksRequest) whatsapp.Result
}

// PlaceOrderCommand carries the checkout payload.
type PlaceOrderCommand struct {
	FullName   string
	Email      string
	Phone      string
	Address    string
	PostalCode string
	Country    string
	Items      []domain.OrderItem
}

// PlacedOrder is the checkout result, including the notification dispatch
// outcomes and the number of insured items that failed application creation.
type PlacedOrder struct {
	Order              domain.Order
	EmailSent          bool
	EmailMessage       string
	WhatsAppSent       bool
	WhatsAppMessage    string
	WhatsAppURL        string
	ApplicationsFailed int
}

// CheckoutService places orders and starts the insurance application phase.
type CheckoutService interface {
	PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (PlacedOrder, error)
}

// CheckoutServiceDeps wires the dependencies required by the checkout service.
type CheckoutServiceDeps struct {
	Orders        repositories.OrderRepository
	Policyholders policyholderResolver
	Insurance     applicationClient
	Mailer        paymentLinkMailer
	WhatsApp      paymentLinkMessenger
	BillingDay    int
	Clock         func() time.Time
	Logger        func(ctx context.Context, event string, fields map[string]any)
}

type checkoutService struct {
	orders        repositories.OrderRepository
	policyholders policyholderResolver
	insurance     applicationClient
	mailer        paymentLinkMailer
	whatsapp      paymentLinkMessenger
	billingDay    int
	now           func() time.Time
	logger        func(ctx context.Context, event string, fields map[string]any)
}

// NewCheckoutService constructs a CheckoutService validating required dependencies.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Orders == nil {
		return nil, errors.New("checkout service: order repository is required")
	}
	if deps.Policyholders == nil {
		return nil, errors.New("checkout service: policyholder resolver is required")
	}
	if deps.Insurance == nil {
		return nil, errors.New("checkout service: insurance client is required")
	}

	billingDay := deps.BillingDay
	if billingDay < 1 || billingDay > 31 {
		billingDay = 1
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &checkoutService{
		orders:        deps.Orders,
		policyholders: deps.Policyholders,
		insurance:     deps.Insurance,
		mailer:        deps.Mailer,
		whatsapp:      deps.WhatsApp,
		billingDay:    billingDay,
		now: func() time.Time {
			return clock().UTC()
		},
		logger: logger,
	}, nil
}

// PlaceOrder validates the payload, recomputes totals server-side, resolves the
// policyholder, creates one application per insured item, persists the order,
// and dispatches payment link emails. Application failures are tolerated:
// failed items are skipped and reported, never fatal.
func (s *checkoutService) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (PlacedOrder, error) {
	if s == nil || s.orders == nil {
		return PlacedOrder{}, ErrCheckoutUnavailable
	}

	order, err := s.buildOrder(cmd)
	if err != nil {
		return PlacedOrder{}, err
	}

	insured := order.InsuredItems()
	failed := 0

	if len(insured) > 0 {
		holder, err := s.policyholders.Resolve(ctx, ResolvePolicyholderCommand{
			Email:    order.Email,
			FullName: order.FullName,
			Phone:    order.Phone,
			Country:  order.Country,
		})
		if err != nil {
			// The order still goes through; fulfilment retries happen out of band.
			s.logger(ctx, "checkout.policyholder_failed", map[string]any{
				"email": order.Email,
				"error": err.Error(),
			})
			failed = len(insured)
		} else {
			order.PolicyHolderID = holder.PolicyholderID
			order.ApplicationIDs, failed = s.createApplications(ctx, holder.PolicyholderID, insured)
		}
	}

	order.Status = checkoutStatus(len(insured), len(order.ApplicationIDs))

	persisted, err := s.orders.Insert(ctx, order)
	if err != nil {
		s.logger(ctx, "checkout.persist_failed", map[string]any{"error": err.Error()})
		if repositories.IsUnavailable(err) {
			return PlacedOrder{}, ErrCheckoutUnavailable
		}
		return PlacedOrder{}, ErrCheckoutPersistFailed
	}

	result := PlacedOrder{Order: persisted, ApplicationsFailed: failed}

	if len(insured) > 0 && s.mailer != nil {
		mailResult := s.mailer.SendInsurancePaymentLinks(ctx, mail.PaymentLinksRequest{
			CustomerName:  persisted.FullName,
			CustomerEmail: persisted.Email,
			OrderID:       persisted.ID,
			Items:         persisted.Items,
		})
		result.EmailSent = mailResult.Success
		result.EmailMessage = mailResult.Message
	}

	if len(insured) > 0 && s.whatsapp != nil {
		waResult := s.whatsapp.SendInsurancePaymentLinks(ctx, whatsapp.PaymentLinksRequest{
			CustomerName:  persisted.FullName,
			CustomerPhone: persisted.Phone,
			OrderID:       persisted.ID,
			Items:         persisted.Items,
		})
		result.WhatsAppSent = waResult.Success
		result.WhatsAppMessage = waResult.Message
		result.WhatsAppURL = waResult.WebURL
	}

	s.logger(ctx, "checkout.order_placed", map[string]any{
		"orderId":            persisted.ID,
		"status":             string(persisted.Status),
		"insuredItems":       len(insured),
		"applications":       len(persisted.ApplicationIDs),
		"applicationsFailed": failed,
	})

	return result, nil
}

// createApplications fires one application per insured item and awaits the
// batch. Failures are logged and skipped so partial success can proceed.
func (s *checkoutService) createApplications(ctx context.Context, policyholderID string, insured []domain.OrderItem) ([]string, int) {
	var (
		wg             sync.WaitGroup
		mu             sync.Mutex
		applicationIDs []string
		failed         int
	)

	for _, item := range insured {
		if item.Insurance == nil || strings.TrimSpace(item.Insurance.QuotePackageID) == "" {
			s.logger(ctx, "checkout.application_skipped", map[string]any{
				"item":   item.Name,
				"reason": "missing quote package",
			})
			failed++
			continue
		}

		wg.Add(1)
		go func(item domain.OrderItem) {
			defer wg.Done()
			app, err := s.insurance.CreateApplication(ctx, insurance.ApplicationRequest{
				QuotePackageID: item.Insurance.QuotePackageID,
				PolicyholderID: policyholderID,
				BillingDay:     s.billingDay,
				Devices: []insurance.ApplicationDevice{
					{Make: deviceMake(item.Name), Model: item.Name, SerialNumber: item.IMEI},
				},
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger(ctx, "checkout.application_failed", map[string]any{
					"item":  item.Name,
					"error": err.Error(),
				})
				failed++
				return
			}
			applicationIDs = append(applicationIDs, app.ApplicationID)
		}(item)
	}

	wg.Wait()
	return applicationIDs, failed
}

func (s *checkoutService) buildOrder(cmd PlaceOrderCommand) (domain.Order, error) {
	fullName := strings.TrimSpace(cmd.FullName)
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	phone := strings.TrimSpace(cmd.Phone)
	address := strings.TrimSpace(cmd.Address)
	postalCode := strings.TrimSpace(cmd.PostalCode)
	country := strings.TrimSpace(cmd.Country)

	switch {
	case len(fullName) < 2,
		!strings.Contains(email, "@"),
		len(phone) < 10,
		len(address) < 5,
		len(postalCode) < 4,
		country == "",
		len(cmd.Items) == 0:
		return domain.Order{}, ErrCheckoutInvalidInput
	}

	cart := domain.Cart{}
	for _, item := range cmd.Items {
		if item.Price <= 0 || strings.TrimSpace(item.Name) == "" {
			return domain.Order{}, ErrCheckoutInvalidInput
		}
		cart.AddItem(domain.CartItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			IMEI:      item.IMEI,
			Warranty:  item.Warranty,
			Insurance: item.Insurance,
		})
	}

	return domain.Order{
		FullName:       fullName,
		Email:          email,
		Phone:          phone,
		Address:        address,
		PostalCode:     postalCode,
		Country:        country,
		Subtotal:       cart.Subtotal(),
		WarrantyTotal:  cart.WarrantyTotal(),
		InsuranceTotal: cart.InsuranceTotal(),
		VAT:            cart.VAT(),
		Total:          cart.Total(),
		Items:          cmd.Items,
	}, nil
}

func checkoutStatus(insured, applications int) domain.OrderStatus {
	switch {
	case insured == 0:
		return domain.OrderStatusCompleted
	case applications == insured:
		return domain.OrderStatusApplied
	default:
		return domain.OrderStatusPending
	}
}

// deviceMake extracts the manufacturer line leading the product name,
// e.g. "Galaxy S24 Ultra" yields "Galaxy".
func deviceMake(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
