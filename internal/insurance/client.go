package insurance

import (
	"context"
	"fmt"
	"net/http"
)

// Logger defines the logging contract for insurance platform operations.
type Logger func(ctx context.Context, event string, fields map[string]any)

// Client abstracts the Root insurance platform for the services layer.
type Client interface {
	CreateQuote(ctx context.Context, req QuoteRequest) ([]QuotePackage, error)
	SearchPolicyholders(ctx context.Context, idNumber string) ([]Policyholder, error)
	CreatePolicyholder(ctx context.Context, draft PolicyholderDraft) (Policyholder, error)
	CreateApplication(ctx context.Context, req ApplicationRequest) (Application, error)
	IssuePolicy(ctx context.Context, req IssuePolicyRequest) (Policy, error)
	CreatePaymentMethod(ctx context.Context, req PaymentMethodRequest) (PaymentMethod, error)
	AssignPaymentMethod(ctx context.Context, policyID, paymentMethodID string) error
	SearchPolicies(ctx context.Context, query string) ([]Policy, error)
	SubmitClaim(ctx context.Context, req ClaimRequest) (Claim, error)
}

// QuoteDevice describes a single device being quoted.
type QuoteDevice struct {
	DeviceType string `json:"device_type"`
	Value      int64  `json:"value"`
}

// QuoteRequest is the payload for a device insurance quote.
type QuoteRequest struct {
	Type          string        `json:"type"`
	Devices       []QuoteDevice `json:"devices"`
	CoverType     string        `json:"cover_type"`
	Excess        string        `json:"excess"`
	AreaCode      string        `json:"area_code"`
	ClaimsHistory string        `json:"claims_history"`
}

// QuotePackage is one quoted package option returned by the platform.
type QuotePackage struct {
	QuotePackageID   string         `json:"quote_package_id"`
	PackageName      string         `json:"package_name,omitempty"`
	BasePremium      int64          `json:"base_premium"`
	SuggestedPremium int64          `json:"suggested_premium,omitempty"`
	Module           map[string]any `json:"module,omitempty"`
}

// Identification is the identity document attached to a policyholder.
type Identification struct {
	Type    string `json:"type"`
	Number  string `json:"number"`
	Country string `json:"country"`
}

// PolicyholderDraft is the payload used to create a policyholder.
type PolicyholderDraft struct {
	Type      string         `json:"type"`
	ID        Identification `json:"id"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Email     string         `json:"email"`
	Cellphone string         `json:"cellphone,omitempty"`
}

// Policyholder is the platform's canonical customer record.
type Policyholder struct {
	PolicyholderID string         `json:"policyholder_id"`
	ID             Identification `json:"id"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	Email          string         `json:"email"`
	Cellphone      string         `json:"cellphone,omitempty"`
}

// ApplicationDevice identifies the physical device an application covers.
type ApplicationDevice struct {
	Make         string `json:"make,omitempty"`
	Model        string `json:"model,omitempty"`
	SerialNumber string `json:"serial_number"`
}

// ApplicationRequest turns an accepted quote package into an application.
type ApplicationRequest struct {
	QuotePackageID string              `json:"quote_package_id"`
	PolicyholderID string              `json:"policyholder_id"`
	BillingDay     int                 `json:"billing_day"`
	Devices        []ApplicationDevice `json:"devices,omitempty"`
}

// Application is a created insurance application.
type Application struct {
	ApplicationID string `json:"application_id"`
	Status        string `json:"status,omitempty"`
}

// IssuePolicyRequest issues a policy from an application.
type IssuePolicyRequest struct {
	ApplicationID string `json:"application_id"`
	BillingDay    int    `json:"billing_day"`
}

// Policy is an issued insurance policy.
type Policy struct {
	PolicyID       string `json:"policy_id"`
	PolicyNumber   string `json:"policy_number,omitempty"`
	PolicyholderID string `json:"policyholder_id,omitempty"`
	Status         string `json:"status,omitempty"`
	MonthlyPremium int64  `json:"monthly_premium,omitempty"`
	StartDate      string `json:"start_date,omitempty"`
}

// BankDetails carries debit order account information.
type BankDetails struct {
	Bank                        string         `json:"bank"`
	AccountHolder               string         `json:"account_holder"`
	AccountNumber               string         `json:"account_number"`
	BranchCode                  string         `json:"branch_code"`
	AccountHolderIdentification Identification `json:"account_holder_identification"`
}

// PaymentMethodRequest creates a collection method for a policyholder.
type PaymentMethodRequest struct {
	PolicyholderID string       `json:"policyholder_id"`
	Type           string       `json:"type"`
	BillingDay     int          `json:"billing_day"`
	BankDetails    *BankDetails `json:"bank_details,omitempty"`
}

// PaymentMethod is a created collection method.
type PaymentMethod struct {
	PaymentMethodID string `json:"payment_method_id"`
	Type            string `json:"type,omitempty"`
}

// Claimant identifies the person lodging a claim.
type Claimant struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Cellphone string `json:"cellphone,omitempty"`
}

// ClaimRequest lodges a claim against an issued policy.
type ClaimRequest struct {
	PolicyID        string   `json:"policy_id"`
	IncidentType    string   `json:"incident_type"`
	IncidentCause   string   `json:"incident_cause,omitempty"`
	IncidentDate    string   `json:"incident_date"`
	Description     string   `json:"description,omitempty"`
	RequestedAmount int64    `json:"requested_amount,omitempty"`
	Claimant        Claimant `json:"claimant"`
}

// Claim is a claim acknowledged by the platform.
type Claim struct {
	ClaimID string `json:"claim_id"`
	Status  string `json:"status,omitempty"`
}

// APIError captures a non-2xx response from the platform.
type APIError struct {
	Status  int
	Code    string
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("insurance: platform returned %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("insurance: platform returned %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether the platform rejected the request as unknown.
func (e *APIError) IsNotFound() bool {
	return e != nil && e.Status == http.StatusNotFound
}
