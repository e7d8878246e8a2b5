package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/techstore-sa/api/internal/domain"
	"github.com/techstore-sa/api/internal/insurance"
	"github.com/techstore-sa/api/internal/platform/httpx"
	"github.com/techstore-sa/api/internal/services"
)

const maxInsuranceBodySize = 32 * 1024

// InsuranceHandlers exposes the quoting, policyholder and policy endpoints
// backing the storefront's insurance flow.
type InsuranceHandlers struct {
	quotes        services.QuoteService
	policyholders services.PolicyholderService
	policies      services.PolicyService
	orders        services.OrderService
}

// NewInsuranceHandlers constructs a new InsuranceHandlers instance.
func NewInsuranceHandlers(
	quotes services.QuoteService,
	policyholders services.PolicyholderService,
	policies services.PolicyService,
	orders services.OrderService,
) *InsuranceHandlers {
	return &InsuranceHandlers{
		quotes:        quotes,
		policyholders: policyholders,
		policies:      policies,
		orders:        orders,
	}
}

// Routes registers the insurance endpoints.
func (h *InsuranceHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/getQuote", h.getQuote)
	r.Get("/searchPolicyHolder/{id}", h.searchPolicyHolder)
	r.Post("/createPolicyHolder", h.createPolicyHolder)
	r.Post("/createApplication", h.createApplication)
	r.Post("/issuePolicy", h.issuePolicy)
	r.Post("/createPaymentMethod", h.createPaymentMethod)
	r.Post("/assignPayMethod", h.assignPayMethod)
	r.Post("/insertInsurance", h.insertInsurance)
	r.Post("/insertPolicyHolder", h.insertPolicyHolder)
}

type quoteRequest struct {
	DeviceValue int64  `json:"deviceValue"`
	CoverType   string `json:"coverType"`
}

type quotePackagePayload struct {
	QuotePackageID   string `json:"quotePackageId"`
	PackageName      string `json:"packageName,omitempty"`
	BasePremium      int64  `json:"basePremium"`
	SuggestedPremium int64  `json:"suggestedPremium"`
}

func (h *InsuranceHandlers) getQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.quotes == nil {
		httpx.WriteError(ctx, w, httpx.NewError("quote_unavailable", "quote service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req quoteRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	packages, err := h.quotes.CreateQuote(ctx, services.QuoteCommand{
		DeviceValue: req.DeviceValue,
		CoverType:   domain.CoverType(strings.TrimSpace(req.CoverType)),
	})
	if err != nil {
		writeQuoteError(ctx, w, err)
		return
	}

	payload := make([]quotePackagePayload, 0, len(packages))
	for _, pkg := range packages {
		payload = append(payload, quotePackagePayload{
			QuotePackageID:   pkg.QuotePackageID,
			PackageName:      pkg.PackageName,
			BasePremium:      pkg.BasePremium,
			SuggestedPremium: pkg.SuggestedPremium,
		})
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"packages": payload})
}

type policyholderPayload struct {
	PolicyholderID string `json:"policyholderId"`
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	Email          string `json:"email,omitempty"`
	Cellphone      string `json:"cellphone,omitempty"`
}

func buildPolicyholderPayload(holder insurance.Policyholder) policyholderPayload {
	return policyholderPayload{
		PolicyholderID: holder.PolicyholderID,
		FirstName:      holder.FirstName,
		LastName:       holder.LastName,
		Email:          holder.Email,
		Cellphone:      holder.Cellphone,
	}
}

func (h *InsuranceHandlers) searchPolicyHolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.policyholders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("policyholder_unavailable", "policyholder service unavailable", http.StatusServiceUnavailable))
		return
	}

	idNumber := strings.TrimSpace(chi.URLParam(r, "id"))
	holders, err := h.policyholders.Search(ctx, idNumber)
	if err != nil {
		writePolicyholderError(ctx, w, err)
		return
	}

	payload := make([]policyholderPayload, 0, len(holders))
	for _, holder := range holders {
		payload = append(payload, buildPolicyholderPayload(holder))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"policyholders": payload})
}

type createPolicyholderRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Cellphone string `json:"cellphone"`
	Country   string `json:"country"`
}

func (h *InsuranceHandlers) createPolicyHolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.policyholders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("policyholder_unavailable", "policyholder service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req createPolicyholderRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	country := strings.ToUpper(strings.TrimSpace(req.Country))
	if country == "" {
		country = "ZA"
	}

	holder, err := h.policyholders.Create(ctx, insurance.PolicyholderDraft{
		Type: "individual",
		ID: insurance.Identification{
			Type:    "email",
			Number:  email,
			Country: country,
		},
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     email,
		Cellphone: strings.TrimSpace(req.Cellphone),
	})
	if err != nil {
		writePolicyholderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildPolicyholderPayload(holder))
}

type createApplicationRequest struct {
	QuotePackageID string `json:"quotePackageId"`
	PolicyholderID string `json:"policyholderId"`
	BillingDay     int    `json:"billingDay"`
	DeviceMake     string `json:"deviceMake"`
	DeviceModel    string `json:"deviceModel"`
	SerialNumber   string `json:"serialNumber"`
}

func (h *InsuranceHandlers) createApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.policies == nil {
		httpx.WriteError(ctx, w, httpx.NewError("policy_unavailable", "policy service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req createApplicationRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	app, err := h.policies.CreateApplication(ctx, services.CreateApplicationCommand{
		QuotePackageID: req.QuotePackageID,
		PolicyholderID: req.PolicyholderID,
		BillingDay:     req.BillingDay,
		DeviceMake:     req.DeviceMake,
		DeviceModel:    req.DeviceModel,
		SerialNumber:   req.SerialNumber,
	})
	if err != nil {
		writePolicyError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]any{
		"applicationId": app.ApplicationID,
		"status":        app.Status,
	})
}

type issuePolicyRequest struct {
	ApplicationID string `json:"applicationId"`
	OrderID       int64  `json:"orderId"`
	BillingDay    int    `json:"billingDay"`
}

type policyPayload struct {
	PolicyID       string `json:"policyId"`
	PolicyNumber   string `json:"policyNumber,omitempty"`
	Status         string `json:"status,omitempty"`
	MonthlyPremium int64  `json:"monthlyPremium,omitempty"`
	StartDate      string `json:"startDate,omitempty"`
}

func buildPolicyPayload(policy insurance.Policy) policyPayload {
	return policyPayload{
		PolicyID:       policy.PolicyID,
		PolicyNumber:   policy.PolicyNumber,
		Status:         policy.Status,
		MonthlyPremium: policy.MonthlyPremium,
		StartDate:      policy.StartDate,
	}
}

// issuePolicy issues a single policy from an application id, or the whole
// batch of applications on an order when orderId is supplied.
func (h *InsuranceHandlers) issuePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.policies == nil {
		httpx.WriteError(ctx, w, httpx.NewError("policy_unavailable", "policy service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req issuePolicyRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	if req.OrderID > 0 {
		result, err := h.policies.IssueOrderPolicies(ctx, services.IssueOrderPoliciesCommand{
			OrderID:    req.OrderID,
			BillingDay: req.BillingDay,
		})
		if err != nil {
			writePolicyError(ctx, w, err)
			return
		}
		policyIDs := result.PolicyIDs
		if policyIDs == nil {
			policyIDs = []string{}
		}
		writeJSONResponse(w, http.StatusOK, map[string]any{
			"order":     buildOrderPayload(result.Order),
			"policyIds": policyIDs,
			"failed":    result.Failed,
		})
		return
	}

	policy, err := h.policies.IssuePolicy(ctx, services.IssuePolicyCommand{
		ApplicationID: req.ApplicationID,
		BillingDay:    req.BillingDay,
	})
	if err != nil {
		writePolicyError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildPolicyPayload(policy))
}

type createPaymentMethodRequest struct {
	PolicyholderID string `json:"policyholderId"`
	OrderID        int64  `json:"orderId"`
	Type           string `json:"type"`
	BillingDay     int    `json:"billingDay"`
	Bank           string `json:"bank"`
	AccountHolder  string `json:"accountHolder"`
	AccountNumber  string `json:"accountNumber"`
	BranchCode     string `json:"branchCode"`
	HolderEmail    string `json:"holderEmail"`
}

// createPaymentMethod registers a collection method. When orderId is supplied
// the method is also assigned to every policy on the order as an awaited
// batch, advancing the order to covered on full success.
func (h *InsuranceHandlers) createPaymentMethod(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.policies == nil {
		httpx.WriteError(ctx, w, httpx.NewError("policy_unavailable", "policy service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req createPaymentMethodRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	if req.OrderID > 0 {
		result, err := h.policies.AttachPaymentMethodToOrder(ctx, services.AttachPaymentMethodCommand{
			OrderID:       req.OrderID,
			Type:          req.Type,
			BillingDay:    req.BillingDay,
			Bank:          req.Bank,
			AccountHolder: req.AccountHolder,
			AccountNumber: req.AccountNumber,
			BranchCode:    req.BranchCode,
		})
		if err != nil {
			writePolicyError(ctx, w, err)
			return
		}
		writeJSONResponse(w, http.StatusOK, map[string]any{
			"order":           buildOrderPayload(result.Order),
			"paymentMethodId": result.PaymentMethodID,
			"assigned":        result.Assigned,
			"failed":          result.Failed,
		})
		return
	}

	method, err := h.policies.CreatePaymentMethod(ctx, services.CreatePaymentMethodCommand{
		PolicyholderID: req.PolicyholderID,
		Type:           req.Type,
		BillingDay:     req.BillingDay,
		Bank:           req.Bank,
		AccountHolder:  req.AccountHolder,
		AccountNumber:  req.AccountNumber,
		BranchCode:     req.BranchCode,
		HolderEmail:    req.HolderEmail,
	})
	if err != nil {
		writePolicyError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]any{
		"paymentMethodId": method.PaymentMethodID,
		"type":            method.Type,
	})
}

type assignPayMethodRequest struct {
	PolicyID        string `json:"policyId"`
	PaymentMethodID string `json:"paymentMethodId"`
}

func (h *InsuranceHandlers) assignPayMethod(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.policies == nil {
		httpx.WriteError(ctx, w, httpx.NewError("policy_unavailable", "policy service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req assignPayMethodRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	if err := h.policies.AssignPaymentMethod(ctx, req.PolicyID, req.PaymentMethodID); err != nil {
		writePolicyError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"assigned": true})
}

type insertInsuranceRequest struct {
	OrderID   int64    `json:"orderId"`
	PolicyIDs []string `json:"policyIds"`
}

// insertInsurance records externally issued policy ids onto an order.
func (h *InsuranceHandlers) insertInsurance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.policies == nil {
		httpx.WriteError(ctx, w, httpx.NewError("policy_unavailable", "policy service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req insertInsuranceRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	order, err := h.policies.RecordPolicies(ctx, services.RecordPoliciesCommand{
		OrderID:   req.OrderID,
		PolicyIDs: req.PolicyIDs,
	})
	if err != nil {
		writePolicyError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildOrderPayload(order))
}

type insertPolicyHolderRequest struct {
	OrderID        int64  `json:"orderId"`
	PolicyHolderID string `json:"policyHolderId"`
}

// insertPolicyHolder records the resolved policyholder id onto an order.
func (h *InsuranceHandlers) insertPolicyHolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req insertPolicyHolderRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	order, err := h.orders.SetPolicyHolder(ctx, req.OrderID, req.PolicyHolderID)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildOrderPayload(order))
}

func (h *InsuranceHandlers) decode(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) bool {
	body, err := readLimitedBody(r, maxInsuranceBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return false
	}
	if err := json.Unmarshal(body, out); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return false
	}
	return true
}

func writeQuoteError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrQuoteInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrQuoteUpstream):
		httpx.WriteError(ctx, w, httpx.NewError("quote_failed", "insurance platform could not produce a quote", http.StatusBadGateway))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("quote_error", "failed to create quote", http.StatusInternalServerError))
	}
}

func writePolicyholderError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrPolicyholderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrPolicyholderUpstream):
		httpx.WriteError(ctx, w, httpx.NewError("policyholder_failed", "insurance platform could not resolve the policyholder", http.StatusBadGateway))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("policyholder_error", "failed to process policyholder request", http.StatusInternalServerError))
	}
}

func writePolicyError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrPolicyInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrPolicyOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrPolicyUpstream):
		httpx.WriteError(ctx, w, httpx.NewError("policy_failed", "insurance platform rejected the operation", http.StatusBadGateway))
	case errors.Is(err, services.ErrPolicyUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("policy_unavailable", "policy dependencies unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("policy_error", "failed to process policy request", http.StatusInternalServerError))
	}
}
