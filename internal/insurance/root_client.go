package insurance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultRequestTimeout = 30 * time.Second

// RootClientConfig configures the RootClient.
type RootClientConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     Logger
	Clock      func() time.Time
}

// RootClient implements Client against the Root platform REST API.
type RootClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  Logger
	clock   func() time.Time
}

// NewRootClient constructs a RootClient using the given configuration.
func NewRootClient(cfg RootClientConfig) (*RootClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("insurance: base url is required")
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("insurance: api key is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &RootClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    httpClient,
		logger:  logger,
		clock: func() time.Time {
			return clock().UTC()
		},
	}, nil
}

// CreateQuote requests device insurance quote packages.
func (c *RootClient) CreateQuote(ctx context.Context, req QuoteRequest) ([]QuotePackage, error) {
	if c == nil {
		return nil, errors.New("insurance: client is nil")
	}
	if req.Type == "" {
		req.Type = "gr_device"
	}

	var packages []QuotePackage
	if err := c.do(ctx, http.MethodPost, "/v1/insurance/quotes", req, &packages); err != nil {
		return nil, err
	}

	c.logger(ctx, "insurance.quote.created", map[string]any{
		"coverType": req.CoverType,
		"packages":  len(packages),
	})
	return packages, nil
}

// SearchPolicyholders looks up policyholders by identification number.
func (c *RootClient) SearchPolicyholders(ctx context.Context, idNumber string) ([]Policyholder, error) {
	if c == nil {
		return nil, errors.New("insurance: client is nil")
	}
	idNumber = strings.TrimSpace(idNumber)
	if idNumber == "" {
		return nil, errors.New("insurance: id number is required")
	}

	path := "/v1/policyholders?id_number=" + url.QueryEscape(idNumber)
	var holders []Policyholder
	if err := c.do(ctx, http.MethodGet, path, nil, &holders); err != nil {
		return nil, err
	}

	c.logger(ctx, "insurance.policyholder.searched", map[string]any{
		"matches": len(holders),
	})
	return holders, nil
}

// CreatePolicyholder registers a new policyholder.
func (c *RootClient) CreatePolicyholder(ctx context.Context, draft PolicyholderDraft) (Policyholder, error) {
	if c == nil {
		return Policyholder{}, errors.New("insurance: client is nil")
	}
	if draft.Type == "" {
		draft.Type = "individual"
	}

	var holder Policyholder
	if err := c.do(ctx, http.MethodPost, "/v1/policyholders", draft, &holder); err != nil {
		return Policyholder{}, err
	}

	c.logger(ctx, "insurance.policyholder.created", map[string]any{
		"policyholderId": holder.PolicyholderID,
	})
	return holder, nil
}

// CreateApplication converts an accepted quote package into an application.
func (c *RootClient) CreateApplication(ctx context.Context, req ApplicationRequest) (Application, error) {
	if c == nil {
		return Application{}, errors.New("insurance: client is nil")
	}

	var app Application
	if err := c.do(ctx, http.MethodPost, "/v1/applications", req, &app); err != nil {
		return Application{}, err
	}

	c.logger(ctx, "insurance.application.created", map[string]any{
		"applicationId":  app.ApplicationID,
		"quotePackageId": req.QuotePackageID,
	})
	return app, nil
}

// IssuePolicy issues a policy from an application.
func (c *RootClient) IssuePolicy(ctx context.Context, req IssuePolicyRequest) (Policy, error) {
	if c == nil {
		return Policy{}, errors.New("insurance: client is nil")
	}

	var policy Policy
	if err := c.do(ctx, http.MethodPost, "/v1/policies", req, &policy); err != nil {
		return Policy{}, err
	}

	c.logger(ctx, "insurance.policy.issued", map[string]any{
		"policyId":      policy.PolicyID,
		"applicationId": req.ApplicationID,
	})
	return policy, nil
}

// CreatePaymentMethod registers a collection method for a policyholder.
func (c *RootClient) CreatePaymentMethod(ctx context.Context, req PaymentMethodRequest) (PaymentMethod, error) {
	if c == nil {
		return PaymentMethod{}, errors.New("insurance: client is nil")
	}
	if req.Type == "" {
		req.Type = "debit_order"
	}

	var method PaymentMethod
	if err := c.do(ctx, http.MethodPost, "/v1/payment-methods", req, &method); err != nil {
		return PaymentMethod{}, err
	}

	c.logger(ctx, "insurance.paymentmethod.created", map[string]any{
		"paymentMethodId": method.PaymentMethodID,
		"policyholderId":  req.PolicyholderID,
	})
	return method, nil
}

// AssignPaymentMethod binds an existing payment method to a policy.
func (c *RootClient) AssignPaymentMethod(ctx context.Context, policyID, paymentMethodID string) error {
	if c == nil {
		return errors.New("insurance: client is nil")
	}
	policyID = strings.TrimSpace(policyID)
	paymentMethodID = strings.TrimSpace(paymentMethodID)
	if policyID == "" || paymentMethodID == "" {
		return errors.New("insurance: policy id and payment method id are required")
	}

	payload := map[string]string{"payment_method_id": paymentMethodID}
	path := "/v1/policies/" + url.PathEscape(policyID) + "/payment-method"
	if err := c.do(ctx, http.MethodPut, path, payload, nil); err != nil {
		return err
	}

	c.logger(ctx, "insurance.paymentmethod.assigned", map[string]any{
		"policyId":        policyID,
		"paymentMethodId": paymentMethodID,
	})
	return nil
}

// SearchPolicies finds issued policies matching the query string.
func (c *RootClient) SearchPolicies(ctx context.Context, query string) ([]Policy, error) {
	if c == nil {
		return nil, errors.New("insurance: client is nil")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("insurance: search query is required")
	}

	path := "/v1/policies?query=" + url.QueryEscape(query)
	var policies []Policy
	if err := c.do(ctx, http.MethodGet, path, nil, &policies); err != nil {
		return nil, err
	}
	return policies, nil
}

// SubmitClaim lodges a claim against an issued policy.
func (c *RootClient) SubmitClaim(ctx context.Context, req ClaimRequest) (Claim, error) {
	if c == nil {
		return Claim{}, errors.New("insurance: client is nil")
	}
	if strings.TrimSpace(req.PolicyID) == "" {
		return Claim{}, errors.New("insurance: policy id is required")
	}

	var claim Claim
	if err := c.do(ctx, http.MethodPost, "/v1/claims", req, &claim); err != nil {
		return Claim{}, err
	}

	c.logger(ctx, "insurance.claim.submitted", map[string]any{
		"claimId":  claim.ClaimID,
		"policyId": req.PolicyID,
	})
	return claim, nil
}

func (c *RootClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("insurance: encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("insurance: build request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := c.clock()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("insurance: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("insurance: read response: %w", err)
	}

	c.logger(ctx, "root.request_completed", map[string]any{
		"method":  method,
		"path":    path,
		"status":  resp.StatusCode,
		"elapsed": c.clock().Sub(start).String(),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, payload)
	}

	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("insurance: decode response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, payload []byte) error {
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}
	var envelope struct {
		Code    string `json:"code"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &envelope); err == nil {
		if envelope.Code != "" {
			apiErr.Code = envelope.Code
		} else if envelope.Error != "" {
			apiErr.Code = envelope.Error
		}
		if envelope.Message != "" {
			apiErr.Message = envelope.Message
		}
	}
	return apiErr
}
