package services

import (
	"context"
	"errors"
	"sort"
	"testing"

	domain "github.com/techstore-sa/api/internal/domain"
	"github.com/techstore-sa/api/internal/insurance"
)

func newPolicyServiceForTest(t *testing.T, orders *stubOrderRepository, client *stubInsuranceClient) PolicyService {
	t.Helper()
	service, err := NewPolicyService(PolicyServiceDeps{
		Orders:     orders,
		Insurance:  client,
		BillingDay: 1,
	})
	if err != nil {
		t.Fatalf("NewPolicyService returned error: %v", err)
	}
	return service
}

func issuedOrderStub(order domain.Order) *stubOrderRepository {
	return &stubOrderRepository{
		findByIDFunc: func(ctx context.Context, id int64) (domain.Order, error) {
			if id != order.ID {
				return domain.Order{}, errStubNotFound
			}
			return order, nil
		},
		updateInsuranceFunc: func(ctx context.Context, id int64, status domain.OrderStatus, policyIDs, applicationIDs []string) (domain.Order, error) {
			updated := order
			updated.Status = status
			updated.RootPolicyIDs = policyIDs
			updated.ApplicationIDs = applicationIDs
			return updated, nil
		},
	}
}

func TestIssueOrderPoliciesToleratesPartialFailure(t *testing.T) {
	orders := issuedOrderStub(domain.Order{
		ID:             7,
		Status:         domain.OrderStatusApplied,
		ApplicationIDs: []string{"app_1", "app_2", "app_3"},
	})
	client := &stubInsuranceClient{
		issuePolicyFunc: func(ctx context.Context, req insurance.IssuePolicyRequest) (insurance.Policy, error) {
			if req.ApplicationID == "app_2" {
				return insurance.Policy{}, errors.New("platform timeout")
			}
			return insurance.Policy{PolicyID: "pol_" + req.ApplicationID}, nil
		},
	}
	service := newPolicyServiceForTest(t, orders, client)

	result, err := service.IssueOrderPolicies(context.Background(), IssueOrderPoliciesCommand{OrderID: 7})
	if err != nil {
		t.Fatalf("IssueOrderPolicies returned error: %v", err)
	}

	if result.Failed != 1 {
		t.Fatalf("failed = %d", result.Failed)
	}
	got := append([]string{}, result.PolicyIDs...)
	sort.Strings(got)
	if len(got) != 2 || got[0] != "pol_app_1" || got[1] != "pol_app_3" {
		t.Fatalf("policy ids = %v", got)
	}
	if result.Order.Status != domain.OrderStatusIssued {
		t.Fatalf("status = %q", result.Order.Status)
	}
}

func TestIssueOrderPoliciesMergesExistingPolicyIDs(t *testing.T) {
	orders := issuedOrderStub(domain.Order{
		ID:             7,
		Status:         domain.OrderStatusIssued,
		ApplicationIDs: []string{"app_1"},
		RootPolicyIDs:  []string{"pol_existing"},
	})
	client := &stubInsuranceClient{
		issuePolicyFunc: func(ctx context.Context, req insurance.IssuePolicyRequest) (insurance.Policy, error) {
			return insurance.Policy{PolicyID: "pol_new"}, nil
		},
	}
	service := newPolicyServiceForTest(t, orders, client)

	result, err := service.IssueOrderPolicies(context.Background(), IssueOrderPoliciesCommand{OrderID: 7})
	if err != nil {
		t.Fatalf("IssueOrderPolicies returned error: %v", err)
	}

	if len(result.Order.RootPolicyIDs) != 2 {
		t.Fatalf("policy ids = %v", result.Order.RootPolicyIDs)
	}
	if result.Order.RootPolicyIDs[0] != "pol_existing" || result.Order.RootPolicyIDs[1] != "pol_new" {
		t.Fatalf("policy ids = %v", result.Order.RootPolicyIDs)
	}
}

func TestIssueOrderPoliciesRequiresApplications(t *testing.T) {
	orders := issuedOrderStub(domain.Order{ID: 7, Status: domain.OrderStatusPending})
	service := newPolicyServiceForTest(t, orders, &stubInsuranceClient{})

	if _, err := service.IssueOrderPolicies(context.Background(), IssueOrderPoliciesCommand{OrderID: 7}); !errors.Is(err, ErrPolicyInvalidInput) {
		t.Fatalf("err = %v, want ErrPolicyInvalidInput", err)
	}
}

func TestIssueOrderPoliciesOrderNotFound(t *testing.T) {
	orders := &stubOrderRepository{
		findByIDFunc: func(ctx context.Context, id int64) (domain.Order, error) {
			return domain.Order{}, errStubNotFound
		},
	}
	service := newPolicyServiceForTest(t, orders, &stubInsuranceClient{})

	if _, err := service.IssueOrderPolicies(context.Background(), IssueOrderPoliciesCommand{OrderID: 99}); !errors.Is(err, ErrPolicyOrderNotFound) {
		t.Fatalf("err = %v, want ErrPolicyOrderNotFound", err)
	}
}

func TestRecordPoliciesMergesAndMarksIssued(t *testing.T) {
	orders := issuedOrderStub(domain.Order{
		ID:             7,
		Status:         domain.OrderStatusApplied,
		ApplicationIDs: []string{"app_1"},
		RootPolicyIDs:  []string{"pol_1"},
	})
	service := newPolicyServiceForTest(t, orders, &stubInsuranceClient{})

	order, err := service.RecordPolicies(context.Background(), RecordPoliciesCommand{
		OrderID:   7,
		PolicyIDs: []string{"pol_1", " pol_2 ", ""},
	})
	if err != nil {
		t.Fatalf("RecordPolicies returned error: %v", err)
	}

	if order.Status != domain.OrderStatusIssued {
		t.Fatalf("status = %q", order.Status)
	}
	if len(order.RootPolicyIDs) != 2 || order.RootPolicyIDs[0] != "pol_1" || order.RootPolicyIDs[1] != "pol_2" {
		t.Fatalf("policy ids = %v", order.RootPolicyIDs)
	}
}

func TestRecordPoliciesRequiresPolicyIDs(t *testing.T) {
	service := newPolicyServiceForTest(t, &stubOrderRepository{}, &stubInsuranceClient{})

	if _, err := service.RecordPolicies(context.Background(), RecordPoliciesCommand{OrderID: 7}); !errors.Is(err, ErrPolicyInvalidInput) {
		t.Fatalf("err = %v, want ErrPolicyInvalidInput", err)
	}
}

func TestAttachPaymentMethodToOrderCoversWhenAllAssigned(t *testing.T) {
	orders := issuedOrderStub(domain.Order{
		ID:             7,
		Email:          "jane@example.com",
		Status:         domain.OrderStatusIssued,
		PolicyHolderID: "ph_1",
		RootPolicyIDs:  []string{"pol_1", "pol_2"},
	})

	var createReq insurance.PaymentMethodRequest
	assigned := map[string]bool{}
	client := &stubInsuranceClient{
		createPaymentMethodFunc: func(ctx context.Context, req insurance.PaymentMethodRequest) (insurance.PaymentMethod, error) {
			createReq = req
			return insurance.PaymentMethod{PaymentMethodID: "pm_1"}, nil
		},
		assignPaymentMethodFunc: func(ctx context.Context, policyID, paymentMethodID string) error {
			if paymentMethodID != "pm_1" {
				t.Errorf("payment method id = %q", paymentMethodID)
			}
			assigned[policyID] = true
			return nil
		},
	}
	service := newPolicyServiceForTest(t, orders, client)

	result, err := service.AttachPaymentMethodToOrder(context.Background(), AttachPaymentMethodCommand{
		OrderID:       7,
		Bank:          "FNB",
		AccountHolder: "Jane Doe",
		AccountNumber: "62000000001",
		BranchCode:    "250655",
	})
	if err != nil {
		t.Fatalf("AttachPaymentMethodToOrder returned error: %v", err)
	}

	if createReq.PolicyholderID != "ph_1" {
		t.Fatalf("policyholder id = %q", createReq.PolicyholderID)
	}
	if createReq.Type != "debit_order" {
		t.Fatalf("type = %q", createReq.Type)
	}
	if createReq.BankDetails == nil || createReq.BankDetails.AccountHolderIdentification.Number != "jane@example.com" {
		t.Fatalf("bank details = %+v", createReq.BankDetails)
	}
	if !assigned["pol_1"] || !assigned["pol_2"] {
		t.Fatalf("assigned = %v", assigned)
	}
	if result.Assigned != 2 || result.Failed != 0 {
		t.Fatalf("assigned = %d, failed = %d", result.Assigned, result.Failed)
	}
	if result.Order.Status != domain.OrderStatusCovered {
		t.Fatalf("status = %q", result.Order.Status)
	}
}

func TestAttachPaymentMethodToOrderPartialAssignmentStaysIssued(t *testing.T) {
	order := domain.Order{
		ID:             7,
		Email:          "jane@example.com",
		Status:         domain.OrderStatusIssued,
		PolicyHolderID: "ph_1",
		RootPolicyIDs:  []string{"pol_1", "pol_2"},
	}
	updateCalled := false
	orders := &stubOrderRepository{
		findByIDFunc: func(ctx context.Context, id int64) (domain.Order, error) {
			return order, nil
		},
		updateInsuranceFunc: func(ctx context.Context, id int64, status domain.OrderStatus, policyIDs, applicationIDs []string) (domain.Order, error) {
			updateCalled = true
			return order, nil
		},
	}
	client := &stubInsuranceClient{
		createPaymentMethodFunc: func(ctx context.Context, req insurance.PaymentMethodRequest) (insurance.PaymentMethod, error) {
			return insurance.PaymentMethod{PaymentMethodID: "pm_1"}, nil
		},
		assignPaymentMethodFunc: func(ctx context.Context, policyID, paymentMethodID string) error {
			if policyID == "pol_2" {
				return errors.New("platform timeout")
			}
			return nil
		},
	}
	service := newPolicyServiceForTest(t, orders, client)

	result, err := service.AttachPaymentMethodToOrder(context.Background(), AttachPaymentMethodCommand{OrderID: 7})
	if err != nil {
		t.Fatalf("AttachPaymentMethodToOrder returned error: %v", err)
	}

	if result.Assigned != 1 || result.Failed != 1 {
		t.Fatalf("assigned = %d, failed = %d", result.Assigned, result.Failed)
	}
	if updateCalled {
		t.Fatal("order should not advance to covered on partial assignment")
	}
	if result.Order.Status != domain.OrderStatusIssued {
		t.Fatalf("status = %q", result.Order.Status)
	}
}

func TestAttachPaymentMethodToOrderRequiresPoliciesAndHolder(t *testing.T) {
	orders := issuedOrderStub(domain.Order{ID: 7, Status: domain.OrderStatusApplied})
	service := newPolicyServiceForTest(t, orders, &stubInsuranceClient{})

	if _, err := service.AttachPaymentMethodToOrder(context.Background(), AttachPaymentMethodCommand{OrderID: 7}); !errors.Is(err, ErrPolicyInvalidInput) {
		t.Fatalf("err = %v, want ErrPolicyInvalidInput", err)
	}
}

func TestIssuePolicySingle(t *testing.T) {
	client := &stubInsuranceClient{
		issuePolicyFunc: func(ctx context.Context, req insurance.IssuePolicyRequest) (insurance.Policy, error) {
			if req.ApplicationID != "app_1" {
				t.Fatalf("application id = %q", req.ApplicationID)
			}
			if req.BillingDay != 15 {
				t.Fatalf("billing day = %d", req.BillingDay)
			}
			return insurance.Policy{PolicyID: "pol_1", Status: "active"}, nil
		},
	}
	service := newPolicyServiceForTest(t, &stubOrderRepository{}, client)

	policy, err := service.IssuePolicy(context.Background(), IssuePolicyCommand{ApplicationID: "app_1", BillingDay: 15})
	if err != nil {
		t.Fatalf("IssuePolicy returned error: %v", err)
	}
	if policy.PolicyID != "pol_1" {
		t.Fatalf("policy id = %q", policy.PolicyID)
	}

	if _, err := service.IssuePolicy(context.Background(), IssuePolicyCommand{}); !errors.Is(err, ErrPolicyInvalidInput) {
		t.Fatalf("err = %v, want ErrPolicyInvalidInput", err)
	}
}

func TestPaymentMethodTypeNormalization(t *testing.T) {
	cases := map[string]string{
		"card":        "card",
		"eft":         "eft",
		"":            "debit_order",
		"debit_order": "debit_order",
		"voucher":     "debit_order",
	}
	for input, want := range cases {
		if got := paymentMethodType(input); got != want {
			t.Fatalf("paymentMethodType(%q) = %q, want %q", input, got, want)
		}
	}
}
