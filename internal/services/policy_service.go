package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	domain "github.com/techstore-sa/api/internal/domain"
	"github.com/techstore-sa/api/internal/insurance"
	"github.com/techstore-sa/api/internal/repositories"
)

var (
	// ErrPolicyInvalidInput indicates the caller supplied invalid policy parameters.
	ErrPolicyInvalidInput = errors.New("policy: invalid input")
	// ErrPolicyOrderNotFound indicates the referenced order does not exist.
	ErrPolicyOrderNotFound = errors.New("policy: order not found")
	// ErrPolicyUpstream indicates the insurance platform failed the operation.
	ErrPolicyUpstream = errors.New("policy: upstream failure")
	// ErrPolicyUnavailable indicates policy dependencies are currently unavailable.
	ErrPolicyUnavailable = errors.New("policy: unavailable")
)

// policyClient abstracts the platform operations the policy service needs.
type policyClient interface {
	CreateApplication(ctx context.Context, req insurance.ApplicationRequest) (insurance.Application, error)
	IssuePolicy(ctx context.Context, req insurance.IssuePolicyRequest) (insurance.Policy, error)
	CreatePaymentMethod(ctx context.Context, req insurance.PaymentMethodRequest) (insurance.PaymentMethod, error)
	AssignPaymentMethod(ctx context.Context, policyID, paymentMethodID string) error
}

// CreateApplicationCommand creates a single platform application from a quote.
type CreateApplicationCommand struct {
	QuotePackageID string
	PolicyholderID string
	BillingDay     int
	DeviceMake     string
	DeviceModel    string
	SerialNumber   string
}

// IssuePolicyCommand issues a single policy from an application.
type IssuePolicyCommand struct {
	ApplicationID string
	BillingDay    int
}

// IssueOrderPoliciesCommand issues policies for every application on an order.
type IssueOrderPoliciesCommand struct {
	OrderID    int64
	BillingDay int
}

// OrderPoliciesResult reports the outcome of an order-level issuing batch.
type OrderPoliciesResult struct {
	Order     domain.Order
	PolicyIDs []string
	Failed    int
}

// RecordPoliciesCommand persists externally issued policy ids onto an order.
type RecordPoliciesCommand struct {
	OrderID   int64
	PolicyIDs []string
}

// CreatePaymentMethodCommand registers a collection method for a policyholder.
type CreatePaymentMethodCommand struct {
	PolicyholderID string
	Type           string
	BillingDay     int
	Bank           string
	AccountHolder  string
	AccountNumber  string
	BranchCode     string
	HolderEmail    string
}

// AttachPaymentMethodCommand creates a payment method for the order's
// policyholder and assigns it to every policy on the order.
type AttachPaymentMethodCommand struct {
	OrderID       int64
	Type          string
	BillingDay    int
	Bank          string
	AccountHolder string
	AccountNumber string
	BranchCode    string
}

// AttachResult reports the outcome of an order-level payment method batch.
type AttachResult struct {
	Order           domain.Order
	PaymentMethodID string
	Assigned        int
	Failed          int
}

// PolicyService issues policies and wires payment methods to them.
type PolicyService interface {
	CreateApplication(ctx context.Context, cmd CreateApplicationCommand) (insurance.Application, error)
	IssuePolicy(ctx context.Context, cmd IssuePolicyCommand) (insurance.Policy, error)
	IssueOrderPolicies(ctx context.Context, cmd IssueOrderPoliciesCommand) (OrderPoliciesResult, error)
	RecordPolicies(ctx context.Context, cmd RecordPoliciesCommand) (domain.Order, error)
	CreatePaymentMethod(ctx context.Context, cmd CreatePaymentMethodCommand) (insurance.PaymentMethod, error)
	AssignPaymentMethod(ctx context.Context, policyID, paymentMethodID string) error
	AttachPaymentMethodToOrder(ctx context.Context, cmd AttachPaymentMethodCommand) (AttachResult, error)
}

// PolicyServiceDeps wires the dependencies required by the policy service.
type PolicyServiceDeps struct {
	Orders     repositories.OrderRepository
	Insurance  policyClient
	BillingDay int
	Clock      func() time.Time
	Logger     func(ctx context.Context, event string, fields map[string]any)
}

type policyService struct {
	orders     repositories.OrderRepository
	insurance  policyClient
	billingDay int
	logger     func(ctx context.Context, event string, fields map[string]any)
}

// NewPolicyService constructs a PolicyService validating required dependencies.
func NewPolicyService(deps PolicyServiceDeps) (PolicyService, error) {
	if deps.Orders == nil {
		return nil, errors.New("policy service: order repository is required")
	}
	if deps.Insurance == nil {
		return nil, errors.New("policy service: insurance client is required")
	}

	billingDay := deps.BillingDay
	if billingDay < 1 || billingDay > 31 {
		billingDay = 1
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &policyService{
		orders:     deps.Orders,
		insurance:  deps.Insurance,
		billingDay: billingDay,
		logger:     logger,
	}, nil
}

// CreateApplication creates a single application from a quote package.
func (s *policyService) CreateApplication(ctx context.Context, cmd CreateApplicationCommand) (insurance.Application, error) {
	quotePackageID := strings.TrimSpace(cmd.QuotePackageID)
	policyholderID := strings.TrimSpace(cmd.PolicyholderID)
	if quotePackageID == "" || policyholderID == "" {
		return insurance.Application{}, ErrPolicyInvalidInput
	}

	app, err := s.insurance.CreateApplication(ctx, insurance.ApplicationRequest{
		QuotePackageID: quotePackageID,
		PolicyholderID: policyholderID,
		BillingDay:     s.effectiveBillingDay(cmd.BillingDay),
		Devices: []insurance.ApplicationDevice{
			{
				Make:         strings.TrimSpace(cmd.DeviceMake),
				Model:        strings.TrimSpace(cmd.DeviceModel),
				SerialNumber: strings.TrimSpace(cmd.SerialNumber),
			},
		},
	})
	if err != nil {
		s.logger(ctx, "policy.application_failed", map[string]any{
			"quotePackageId": quotePackageID,
			"error":          err.Error(),
		})
		return insurance.Application{}, ErrPolicyUpstream
	}
	return app, nil
}

// IssuePolicy issues a single policy from an application id.
func (s *policyService) IssuePolicy(ctx context.Context, cmd IssuePolicyCommand) (insurance.Policy, error) {
	applicationID := strings.TrimSpace(cmd.ApplicationID)
	if applicationID == "" {
		return insurance.Policy{}, ErrPolicyInvalidInput
	}

	policy, err := s.insurance.IssuePolicy(ctx, insurance.IssuePolicyRequest{
		ApplicationID: applicationID,
		BillingDay:    s.effectiveBillingDay(cmd.BillingDay),
	})
	if err != nil {
		s.logger(ctx, "policy.issue_failed", map[string]any{
			"applicationId": applicationID,
			"error":         err.Error(),
		})
		return insurance.Policy{}, ErrPolicyUpstream
	}
	return policy, nil
}

// IssueOrderPolicies issues one policy per accumulated application id on the
// order as an awaited batch, tolerating partial failure, and persists the
// resulting policy ids.
func (s *policyService) IssueOrderPolicies(ctx context.Context, cmd IssueOrderPoliciesCommand) (OrderPoliciesResult, error) {
	order, err := s.findOrder(ctx, cmd.OrderID)
	if err != nil {
		return OrderPoliciesResult{}, err
	}
	if len(order.ApplicationIDs) == 0 {
		return OrderPoliciesResult{}, ErrPolicyInvalidInput
	}

	billingDay := s.effectiveBillingDay(cmd.BillingDay)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		policyIDs []string
		failed    int
	)
	for _, applicationID := range order.ApplicationIDs {
		wg.Add(1)
		go func(applicationID string) {
			defer wg.Done()
			policy, err := s.insurance.IssuePolicy(ctx, insurance.IssuePolicyRequest{
				ApplicationID: applicationID,
				BillingDay:    billingDay,
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger(ctx, "policy.issue_failed", map[string]any{
					"orderId":       order.ID,
					"applicationId": applicationID,
					"error":         err.Error(),
				})
				failed++
				return
			}
			policyIDs = append(policyIDs, policy.PolicyID)
		}(applicationID)
	}
	wg.Wait()

	merged := mergeIDs(order.RootPolicyIDs, policyIDs)
	status := order.Status
	if len(merged) > 0 {
		status = domain.OrderStatusIssued
	}

	updated, err := s.orders.UpdateInsurance(ctx, order.ID, status, merged, order.ApplicationIDs)
	if err != nil {
		return OrderPoliciesResult{}, s.translateOrderError(err)
	}

	s.logger(ctx, "policy.order_issued", map[string]any{
		"orderId":  order.ID,
		"policies": len(policyIDs),
		"failed":   failed,
	})

	return OrderPoliciesResult{Order: updated, PolicyIDs: policyIDs, Failed: failed}, nil
}

// RecordPolicies merges externally issued policy ids onto the order.
func (s *policyService) RecordPolicies(ctx context.Context, cmd RecordPoliciesCommand) (domain.Order, error) {
	policyIDs := trimmedIDs(cmd.PolicyIDs)
	if len(policyIDs) == 0 {
		return domain.Order{}, ErrPolicyInvalidInput
	}

	order, err := s.findOrder(ctx, cmd.OrderID)
	if err != nil {
		return domain.Order{}, err
	}

	merged := mergeIDs(order.RootPolicyIDs, policyIDs)
	updated, err := s.orders.UpdateInsurance(ctx, order.ID, domain.OrderStatusIssued, merged, order.ApplicationIDs)
	if err != nil {
		return domain.Order{}, s.translateOrderError(err)
	}

	s.logger(ctx, "policy.recorded", map[string]any{
		"orderId":  order.ID,
		"policies": len(policyIDs),
	})
	return updated, nil
}

// CreatePaymentMethod registers a debit order collection method.
func (s *policyService) CreatePaymentMethod(ctx context.Context, cmd CreatePaymentMethodCommand) (insurance.PaymentMethod, error) {
	policyholderID := strings.TrimSpace(cmd.PolicyholderID)
	if policyholderID == "" {
		return insurance.PaymentMethod{}, ErrPolicyInvalidInput
	}

	req := insurance.PaymentMethodRequest{
		PolicyholderID: policyholderID,
		Type:           paymentMethodType(cmd.Type),
		BillingDay:     s.effectiveBillingDay(cmd.BillingDay),
	}
	if cmd.Bank != "" || cmd.AccountNumber != "" {
		req.BankDetails = &insurance.BankDetails{
			Bank:          cmd.Bank,
			AccountHolder: cmd.AccountHolder,
			AccountNumber: cmd.AccountNumber,
			BranchCode:    cmd.BranchCode,
			AccountHolderIdentification: insurance.Identification{
				Type:    "email",
				Number:  strings.ToLower(strings.TrimSpace(cmd.HolderEmail)),
				Country: defaultPolicyholderCountry,
			},
		}
	}

	method, err := s.insurance.CreatePaymentMethod(ctx, req)
	if err != nil {
		s.logger(ctx, "policy.payment_method_failed", map[string]any{
			"policyholderId": policyholderID,
			"error":          err.Error(),
		})
		return insurance.PaymentMethod{}, ErrPolicyUpstream
	}
	return method, nil
}

// AssignPaymentMethod binds an existing payment method to a single policy.
func (s *policyService) AssignPaymentMethod(ctx context.Context, policyID, paymentMethodID string) error {
	policyID = strings.TrimSpace(policyID)
	paymentMethodID = strings.TrimSpace(paymentMethodID)
	if policyID == "" || paymentMethodID == "" {
		return ErrPolicyInvalidInput
	}
	if err := s.insurance.AssignPaymentMethod(ctx, policyID, paymentMethodID); err != nil {
		s.logger(ctx, "policy.assign_failed", map[string]any{
			"policyId": policyID,
			"error":    err.Error(),
		})
		return ErrPolicyUpstream
	}
	return nil
}

// AttachPaymentMethodToOrder creates a payment method for the order's
// policyholder and assigns it to every policy on the order as an awaited
// batch. The order moves to covered once every policy has the method.
func (s *policyService) AttachPaymentMethodToOrder(ctx context.Context, cmd AttachPaymentMethodCommand) (AttachResult, error) {
	order, err := s.findOrder(ctx, cmd.OrderID)
	if err != nil {
		return AttachResult{}, err
	}
	if order.PolicyHolderID == "" || len(order.RootPolicyIDs) == 0 {
		return AttachResult{}, ErrPolicyInvalidInput
	}

	method, err := s.CreatePaymentMethod(ctx, CreatePaymentMethodCommand{
		PolicyholderID: order.PolicyHolderID,
		Type:           cmd.Type,
		BillingDay:     cmd.BillingDay,
		Bank:           cmd.Bank,
		AccountHolder:  cmd.AccountHolder,
		AccountNumber:  cmd.AccountNumber,
		BranchCode:     cmd.BranchCode,
		HolderEmail:    order.Email,
	})
	if err != nil {
		return AttachResult{}, err
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		assigned int
		failed   int
	)
	for _, policyID := range order.RootPolicyIDs {
		wg.Add(1)
		go func(policyID string) {
			defer wg.Done()
			err := s.insurance.AssignPaymentMethod(ctx, policyID, method.PaymentMethodID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger(ctx, "policy.assign_failed", map[string]any{
					"orderId":  order.ID,
					"policyId": policyID,
					"error":    err.Error(),
				})
				failed++
				return
			}
			assigned++
		}(policyID)
	}
	wg.Wait()

	result := AttachResult{Order: order, PaymentMethodID: method.PaymentMethodID, Assigned: assigned, Failed: failed}

	if failed == 0 {
		updated, err := s.orders.UpdateInsurance(ctx, order.ID, domain.OrderStatusCovered, order.RootPolicyIDs, order.ApplicationIDs)
		if err != nil {
			return result, s.translateOrderError(err)
		}
		result.Order = updated
	}

	s.logger(ctx, "policy.payment_method_attached", map[string]any{
		"orderId":  order.ID,
		"assigned": assigned,
		"failed":   failed,
	})
	return result, nil
}

func (s *policyService) findOrder(ctx context.Context, orderID int64) (domain.Order, error) {
	if orderID <= 0 {
		return domain.Order{}, ErrPolicyInvalidInput
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, s.translateOrderError(err)
	}
	return order, nil
}

func (s *policyService) translateOrderError(err error) error {
	switch {
	case repositories.IsNotFound(err):
		return ErrPolicyOrderNotFound
	case repositories.IsUnavailable(err):
		return ErrPolicyUnavailable
	default:
		return err
	}
}

func (s *policyService) effectiveBillingDay(day int) int {
	if day >= 1 && day <= 31 {
		return day
	}
	return s.billingDay
}

func paymentMethodType(value string) string {
	switch strings.TrimSpace(value) {
	case "card", "eft":
		return strings.TrimSpace(value)
	default:
		return "debit_order"
	}
}

func mergeIDs(existing, added []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(added))
	merged := make([]string, 0, len(existing)+len(added))
	for _, id := range append(append([]string{}, existing...), added...) {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}
	return merged
}

func trimmedIDs(values []string) []string {
	var out []string
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
