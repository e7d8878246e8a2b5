package services

import (
	"context"
	"errors"

	domain "github.com/techstore-sa/api/internal/domain"
	"github.com/techstore-sa/api/internal/insurance"
	"github.com/techstore-sa/api/internal/mail"
	"github.com/techstore-sa/api/internal/whatsapp"
)

type stubRepositoryError struct {
	notFound    bool
	unavailable bool
}

func (e *stubRepositoryError) Error() string       { return "stub repository error" }
func (e *stubRepositoryError) IsNotFound() bool    { return e.notFound }
func (e *stubRepositoryError) IsConflict() bool    { return false }
func (e *stubRepositoryError) IsUnavailable() bool { return e.unavailable }

var (
	errStubNotFound    = &stubRepositoryError{notFound: true}
	errStubUnavailable = &stubRepositoryError{unavailable: true}
)

type stubProductRepository struct {
	listFunc       func(ctx context.Context) ([]domain.Product, error)
	findByIDFunc   func(ctx context.Context, id int64) (domain.Product, error)
	findByIMEIFunc func(ctx context.Context, imei string) (domain.Product, error)
}

func (s *stubProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	if s.listFunc == nil {
		return nil, errors.New("unexpected List call")
	}
	return s.listFunc(ctx)
}

func (s *stubProductRepository) FindByID(ctx context.Context, id int64) (domain.Product, error) {
	if s.findByIDFunc == nil {
		return domain.Product{}, errors.New("unexpected FindByID call")
	}
	return s.findByIDFunc(ctx, id)
}

func (s *stubProductRepository) FindByIMEI(ctx context.Context, imei string) (domain.Product, error) {
	if s.findByIMEIFunc == nil {
		return domain.Product{}, errors.New("unexpected FindByIMEI call")
	}
	return s.findByIMEIFunc(ctx, imei)
}

type stubOrderRepository struct {
	insertFunc          func(ctx context.Context, order domain.Order) (domain.Order, error)
	findByIDFunc        func(ctx context.Context, id int64) (domain.Order, error)
	updateInsuranceFunc func(ctx context.Context, id int64, status domain.OrderStatus, policyIDs, applicationIDs []string) (domain.Order, error)
	setPolicyHolderFunc func(ctx context.Context, id int64, policyholderID string) error
}

func (s *stubOrderRepository) Insert(ctx context.Context, order domain.Order) (domain.Order, error) {
	if s.insertFunc == nil {
		return domain.Order{}, errors.New("unexpected Insert call")
	}
	return s.insertFunc(ctx, order)
}

func (s *stubOrderRepository) FindByID(ctx context.Context, id int64) (domain.Order, error) {
	if s.findByIDFunc == nil {
		return domain.Order{}, errors.New("unexpected FindByID call")
	}
	return s.findByIDFunc(ctx, id)
}

func (s *stubOrderRepository) UpdateInsurance(ctx context.Context, id int64, status domain.OrderStatus, policyIDs, applicationIDs []string) (domain.Order, error) {
	if s.updateInsuranceFunc == nil {
		return domain.Order{}, errors.New("unexpected UpdateInsurance call")
	}
	return s.updateInsuranceFunc(ctx, id, status, policyIDs, applicationIDs)
}

func (s *stubOrderRepository) SetPolicyHolderID(ctx context.Context, id int64, policyholderID string) error {
	if s.setPolicyHolderFunc == nil {
		return errors.New("unexpected SetPolicyHolderID call")
	}
	return s.setPolicyHolderFunc(ctx, id, policyholderID)
}

type stubClaimRepository struct {
	insertFunc         func(ctx context.Context, claim domain.Claim) (domain.Claim, error)
	listFunc           func(ctx context.Context) ([]domain.Claim, error)
	setRootClaimIDFunc func(ctx context.Context, id int64, rootClaimID string) error
}

func (s *stubClaimRepository) Insert(ctx context.Context, claim domain.Claim) (domain.Claim, error) {
	if s.insertFunc == nil {
		return domain.Claim{}, errors.New("unexpected Insert call")
	}
	return s.insertFunc(ctx, claim)
}

func (s *stubClaimRepository) List(ctx context.Context) ([]domain.Claim, error) {
	if s.listFunc == nil {
		return nil, errors.New("unexpected List call")
	}
	return s.listFunc(ctx)
}

func (s *stubClaimRepository) SetRootClaimID(ctx context.Context, id int64, rootClaimID string) error {
	if s.setRootClaimIDFunc == nil {
		return errors.New("unexpected SetRootClaimID call")
	}
	return s.setRootClaimIDFunc(ctx, id, rootClaimID)
}

type stubInsuranceClient struct {
	createQuoteFunc         func(ctx context.Context, req insurance.QuoteRequest) ([]insurance.QuotePackage, error)
	searchPolicyholdersFunc func(ctx context.Context, idNumber string) ([]insurance.Policyholder, error)
	createPolicyholderFunc  func(ctx context.Context, draft insurance.PolicyholderDraft) (insurance.Policyholder, error)
	createApplicationFunc   func(ctx context.Context, req insurance.ApplicationRequest) (insurance.Application, error)
	issuePolicyFunc         func(ctx context.Context, req insurance.IssuePolicyRequest) (insurance.Policy, error)
	createPaymentMethodFunc func(ctx context.Context, req insurance.PaymentMethodRequest) (insurance.PaymentMethod, error)
	assignPaymentMethodFunc func(ctx context.Context, policyID, paymentMethodID string) error
	searchPoliciesFunc      func(ctx context.Context, query string) ([]insurance.Policy, error)
	submitClaimFunc         func(ctx context.Context, req insurance.ClaimRequest) (insurance.Claim, error)
}

func (s *stubInsuranceClient) CreateQuote(ctx context.Context, req insurance.QuoteRequest) ([]insurance.QuotePackage, error) {
	if s.createQuoteFunc == nil {
		return nil, errors.New("unexpected CreateQuote call")
	}
	return s.createQuoteFunc(ctx, req)
}

func (s *stubInsuranceClient) SearchPolicyholders(ctx context.Context, idNumber string) ([]insurance.Policyholder, error) {
	if s.searchPolicyholdersFunc == nil {
		return nil, errors.New("unexpected SearchPolicyholders call")
	}
	return s.searchPolicyholdersFunc(ctx, idNumber)
}

func (s *stubInsuranceClient) CreatePolicyholder(ctx context.Context, draft insurance.PolicyholderDraft) (insurance.Policyholder, error) {
	if s.createPolicyholderFunc == nil {
		return insurance.Policyholder{}, errors.New("unexpected CreatePolicyholder call")
	}
	return s.createPolicyholderFunc(ctx, draft)
}

func (s *stubInsuranceClient) CreateApplication(ctx context.Context, req insurance.ApplicationRequest) (insurance.Application, error) {
	if s.createApplicationFunc == nil {
		return insurance.Application{}, errors.New("unexpected CreateApplication call")
	}
	return s.createApplicationFunc(ctx, req)
}

func (s *stubInsuranceClient) IssuePolicy(ctx context.Context, req insurance.IssuePolicyRequest) (insurance.Policy, error) {
	if s.issuePolicyFunc == nil {
		return insurance.Policy{}, errors.New("unexpected IssuePolicy call")
	}
	return s.issuePolicyFunc(ctx, req)
}

func (s *stubInsuranceClient) CreatePaymentMethod(ctx context.Context, req insurance.PaymentMethodRequest) (insurance.PaymentMethod, error) {
	if s.createPaymentMethodFunc == nil {
		return insurance.PaymentMethod{}, errors.New("unexpected CreatePaymentMethod call")
	}
	return s.createPaymentMethodFunc(ctx, req)
}

func (s *stubInsuranceClient) AssignPaymentMethod(ctx context.Context, policyID, paymentMethodID string) error {
	if s.assignPaymentMethodFunc == nil {
		return errors.New("unexpected AssignPaymentMethod call")
	}
	return s.assignPaymentMethodFunc(ctx, policyID, paymentMethodID)
}

func (s *stubInsuranceClient) SearchPolicies(ctx context.Context, query string) ([]insurance.Policy, error) {
	if s.searchPoliciesFunc == nil {
		return nil, errors.New("unexpected SearchPolicies call")
	}
	return s.searchPoliciesFunc(ctx, query)
}

func (s *stubInsuranceClient) SubmitClaim(ctx context.Context, req insurance.ClaimRequest) (insurance.Claim, error) {
	if s.submitClaimFunc == nil {
		return insurance.Claim{}, errors.New("unexpected SubmitClaim call")
	}
	return s.submitClaimFunc(ctx, req)
}

type stubPolicyholderResolver struct {
	resolveFunc func(ctx context.Context, cmd ResolvePolicyholderCommand) (insurance.Policyholder, error)
}

func (s *stubPolicyholderResolver) Resolve(ctx context.Context, cmd ResolvePolicyholderCommand) (insurance.Policyholder, error) {
	if s.resolveFunc == nil {
		return insurance.Policyholder{}, errors.New("unexpected Resolve call")
	}
	return s.resolveFunc(ctx, cmd)
}

type stubMailer struct {
	sendFunc func(ctx context.Context, req mail.PaymentLinksRequest) mail.Result
}

func (s *stubMailer) SendInsurancePaymentLinks(ctx context.Context, req mail.PaymentLinksRequest) mail.Result {
	if s.sendFunc == nil {
		return mail.Result{Success: true, Message: "stub"}
	}
	return s.sendFunc(ctx, req)
}

type stubMessenger struct {
	sendFunc func(ctx context.Context, req whatsapp.PaymentLinksRequest) whatsapp.Result
}

func (s *stubMessenger) SendInsurancePaymentLinks(ctx context.Context, req whatsapp.PaymentLinksRequest) whatsapp.Result {
	if s.sendFunc == nil {
		return whatsapp.Result{Success: true, Message: "stub"}
	}
	return s.sendFunc(ctx, req)
}
