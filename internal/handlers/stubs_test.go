package handlers

import (
	"context"
	"errors"

	domain "github.com/techstore-sa/api/internal/domain"
	"github.com/techstore-sa/api/internal/insurance"
	"github.com/techstore-sa/api/internal/services"
)

type stubCatalogService struct {
	listFunc   func(ctx context.Context) ([]domain.Product, error)
	getFunc    func(ctx context.Context, id int64) (domain.Product, error)
	byIMEIFunc func(ctx context.Context, imei string) (services.ProductWithWarranty, error)
}

func (s *stubCatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if s.listFunc == nil {
		return nil, errors.New("unexpected ListProducts call")
	}
	return s.listFunc(ctx)
}

func (s *stubCatalogService) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	if s.getFunc == nil {
		return domain.Product{}, errors.New("unexpected GetProduct call")
	}
	return s.getFunc(ctx, id)
}

func (s *stubCatalogService) GetProductByIMEI(ctx context.Context, imei string) (services.ProductWithWarranty, error) {
	if s.byIMEIFunc == nil {
		return services.ProductWithWarranty{}, errors.New("unexpected GetProductByIMEI call")
	}
	return s.byIMEIFunc(ctx, imei)
}

type stubCheckoutService struct {
	placeOrderFunc func(ctx context.Context, cmd services.PlaceOrderCommand) (services.PlacedOrder, error)
}

func (s *stubCheckoutService) PlaceOrder(ctx context.Context, cmd services.PlaceOrderCommand) (services.PlacedOrder, error) {
	if s.placeOrderFunc == nil {
		return services.PlacedOrder{}, errors.New("unexpected PlaceOrder call")
	}
	return s.placeOrderFunc(ctx, cmd)
}

type stubOrderService struct {
	getOrderFunc        func(ctx context.Context, id int64) (domain.Order, error)
	setPolicyHolderFunc func(ctx context.Context, orderID int64, policyholderID string) (domain.Order, error)
}

func (s *stubOrderService) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	if s.getOrderFunc == nil {
		return domain.Order{}, errors.New("unexpected GetOrder call")
	}
	return s.getOrderFunc(ctx, id)
}

func (s *stubOrderService) SetPolicyHolder(ctx context.Context, orderID int64, policyholderID string) (domain.Order, error) {
	if s.setPolicyHolderFunc == nil {
		return domain.Order{}, errors.New("unexpected SetPolicyHolder call")
	}
	return s.setPolicyHolderFunc(ctx, orderID, policyholderID)
}

type stubQuoteService struct {
	createQuoteFunc func(ctx context.Context, cmd services.QuoteCommand) ([]insurance.QuotePackage, error)
}

func (s *stubQuoteService) CreateQuote(ctx context.Context, cmd services.QuoteCommand) ([]insurance.QuotePackage, error) {
	if s.createQuoteFunc == nil {
		return nil, errors.New("unexpected CreateQuote call")
	}
	return s.createQuoteFunc(ctx, cmd)
}

type stubPolicyholderService struct {
	resolveFunc func(ctx context.Context, cmd services.ResolvePolicyholderCommand) (insurance.Policyholder, error)
	searchFunc  func(ctx context.Context, idNumber string) ([]insurance.Policyholder, error)
	createFunc  func(ctx context.Context, draft insurance.PolicyholderDraft) (insurance.Policyholder, error)
}

func (s *stubPolicyholderService) Resolve(ctx context.Context, cmd services.ResolvePolicyholderCommand) (insurance.Policyholder, error) {
	if s.resolveFunc == nil {
		return insurance.Policyholder{}, errors.New("unexpected Resolve call")
	}
	return s.resolveFunc(ctx, cmd)
}

func (s *stubPolicyholderService) Search(ctx context.Context, idNumber string) ([]insurance.Policyholder, error) {
	if s.searchFunc == nil {
		return nil, errors.New("unexpected Search call")
	}
	return s.searchFunc(ctx, idNumber)
}

func (s *stubPolicyholderService) Create(ctx context.Context, draft insurance.PolicyholderDraft) (insurance.Policyholder, error) {
	if s.createFunc == nil {
		return insurance.Policyholder{}, errors.New("unexpected Create call")
	}
	return s.createFunc(ctx, draft)
}

type stubPolicyService struct {
	createApplicationFunc  func(ctx context.Context, cmd services.CreateApplicationCommand) (insurance.Application, error)
	issuePolicyFunc        func(ctx context.Context, cmd services.IssuePolicyCommand) (insurance.Policy, error)
	issueOrderPoliciesFunc func(ctx context.Context, cmd services.IssueOrderPoliciesCommand) (services.OrderPoliciesResult, error)
	recordPoliciesFunc     func(ctx context.Context, cmd services.RecordPoliciesCommand) (domain.Order, error)
	createPayMethodFunc    func(ctx context.Context, cmd services.CreatePaymentMethodCommand) (insurance.PaymentMethod, error)
	assignPayMethodFunc    func(ctx context.Context, policyID, paymentMethodID string) error
	attachPayMethodFunc    func(ctx context.Context, cmd services.AttachPaymentMethodCommand) (services.AttachResult, error)
}

func (s *stubPolicyService) CreateApplication(ctx context.Context, cmd services.CreateApplicationCommand) (insurance.Application, error) {
	if s.createApplicationFunc == nil {
		return insurance.Application{}, errors.New("unexpected CreateApplication call")
	}
	return s.createApplicationFunc(ctx, cmd)
}

func (s *stubPolicyService) IssuePolicy(ctx context.Context, cmd services.IssuePolicyCommand) (insurance.Policy, error) {
	if s.issuePolicyFunc == nil {
		return insurance.Policy{}, errors.New("unexpected IssuePolicy call")
	}
	return s.issuePolicyFunc(ctx, cmd)
}

func (s *stubPolicyService) IssueOrderPolicies(ctx context.Context, cmd services.IssueOrderPoliciesCommand) (services.OrderPoliciesResult, error) {
	if s.issueOrderPoliciesFunc == nil {
		return services.OrderPoliciesResult{}, errors.New("unexpected IssueOrderPolicies call")
	}
	return s.issueOrderPoliciesFunc(ctx, cmd)
}

func (s *stubPolicyService) RecordPolicies(ctx context.Context, cmd services.RecordPoliciesCommand) (domain.Order, error) {
	if s.recordPoliciesFunc == nil {
		return domain.Order{}, errors.New("unexpected RecordPolicies call")
	}
	return s.recordPoliciesFunc(ctx, cmd)
}

func (s *stubPolicyService) CreatePaymentMethod(ctx context.Context, cmd services.CreatePaymentMethodCommand) (insurance.PaymentMethod, error) {
	if s.createPayMethodFunc == nil {
		return insurance.PaymentMethod{}, errors.New("unexpected CreatePaymentMethod call")
	}
	return s.createPayMethodFunc(ctx, cmd)
}

func (s *stubPolicyService) AssignPaymentMethod(ctx context.Context, policyID, paymentMethodID string) error {
	if s.assignPayMethodFunc == nil {
		return errors.New("unexpected AssignPaymentMethod call")
	}
	return s.assignPayMethodFunc(ctx, policyID, paymentMethodID)
}

func (s *stubPolicyService) AttachPaymentMethodToOrder(ctx context.Context, cmd services.AttachPaymentMethodCommand) (services.AttachResult, error) {
	if s.attachPayMethodFunc == nil {
		return services.AttachResult{}, errors.New("unexpected AttachPaymentMethodToOrder call")
	}
	return s.attachPayMethodFunc(ctx, cmd)
}

type stubClaimsService struct {
	createClaimFunc    func(ctx context.Context, cmd services.CreateClaimCommand) (domain.Claim, error)
	listClaimsFunc     func(ctx context.Context) ([]domain.Claim, error)
	searchPoliciesFunc func(ctx context.Context, query string) ([]insurance.Policy, error)
	submitClaimFunc    func(ctx context.Context, cmd services.SubmitPlatformClaimCommand) (insurance.Claim, error)
}

func (s *stubClaimsService) CreateClaim(ctx context.Context, cmd services.CreateClaimCommand) (domain.Claim, error) {
	if s.createClaimFunc == nil {
		return domain.Claim{}, errors.New("unexpected CreateClaim call")
	}
	return s.createClaimFunc(ctx, cmd)
}

func (s *stubClaimsService) ListClaims(ctx context.Context) ([]domain.Claim, error) {
	if s.listClaimsFunc == nil {
		return nil, errors.New("unexpected ListClaims call")
	}
	return s.listClaimsFunc(ctx)
}

func (s *stubClaimsService) SearchPolicies(ctx context.Context, query string) ([]insurance.Policy, error) {
	if s.searchPoliciesFunc == nil {
		return nil, errors.New("unexpected SearchPolicies call")
	}
	return s.searchPoliciesFunc(ctx, query)
}

func (s *stubClaimsService) SubmitPlatformClaim(ctx context.Context, cmd services.SubmitPlatformClaimCommand) (insurance.Claim, error) {
	if s.submitClaimFunc == nil {
		return insurance.Claim{}, errors.New("unexpected SubmitPlatformClaim call")
	}
	return s.submitClaimFunc(ctx, cmd)
}

var (
	_ services.CatalogService      = (*stubCatalogService)(nil)
	_ services.CheckoutService     = (*stubCheckoutService)(nil)
	_ services.OrderService        = (*stubOrderService)(nil)
	_ services.QuoteService        = (*stubQuoteService)(nil)
	_ services.PolicyholderService = (*stubPolicyholderService)(nil)
	_ services.PolicyService       = (*stubPolicyService)(nil)
	_ services.ClaimsService       = (*stubClaimsService)(nil)
)
