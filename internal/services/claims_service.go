package services

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/techstore-sa/api/internal/domain"
	"github.com/techstore-sa/api/internal/insurance"
	"github.com/techstore-sa/api/internal/repositories"
)

var (
	// ErrClaimsInvalidInput indicates the caller supplied invalid claim details.
	ErrClaimsInvalidInput = errors.New("claims: invalid input")
	// ErrClaimsDeviceNotFound indicates no catalog device matches the given IMEI.
	ErrClaimsDeviceNotFound = errors.New("claims: device not found")
	// ErrClaimsUpstream indicates the insurance platform failed the operation.
	ErrClaimsUpstream = errors.New("claims: upstream failure")
	// ErrClaimsUnavailable indicates claim dependencies are currently unavailable.
	ErrClaimsUnavailable = errors.New("claims: unavailable")
)

// claimsClient abstracts the platform operations the claims service needs.
type claimsClient interface {
	SearchPolicies(ctx context.Context, query string) ([]insurance.Policy, error)
	SearchPolicyholders(ctx context.Context, idNumber string) ([]insurance.Policyholder, error)
	SubmitClaim(ctx context.Context, req insurance.ClaimRequest) (insurance.Claim, error)
}

// CreateClaimCommand captures a local claim intake.
type CreateClaimCommand struct {
	IMEI           string
	DateOfIncident string
	Description    string
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
}

// SubmitPlatformClaimCommand lodges a claim with the insurance platform
// against exactly one selected policy.
type SubmitPlatformClaimCommand struct {
	PolicyID        string
	ClaimID         int64
	IncidentType    string
	IncidentCause   string
	IncidentDate    string
	Description     string
	RequestedAmount int64
	CustomerEmail   string
}

// ClaimsService captures claims locally and lodges them with the platform.
type ClaimsService interface {
	CreateClaim(ctx context.Context, cmd CreateClaimCommand) (domain.Claim, error)
	ListClaims(ctx context.Context) ([]domain.Claim, error)
	SearchPolicies(ctx context.Context, query string) ([]insurance.Policy, error)
	SubmitPlatformClaim(ctx context.Context, cmd SubmitPlatformClaimCommand) (insurance.Claim, error)
}

// ClaimsServiceDeps wires the dependencies required by the claims service.
type ClaimsServiceDeps struct {
	Claims    repositories.ClaimRepository
	Products  repositories.ProductRepository
	Insurance claimsClient
	Clock     func() time.Time
	Logger    func(ctx context.Context, event string, fields map[string]any)
}

type claimsService struct {
	claims    repositories.ClaimRepository
	products  repositories.ProductRepository
	insurance claimsClient
	logger    func(ctx context.Context, event string, fields map[string]any)
}

// NewClaimsService constructs a ClaimsService validating required dependencies.
func NewClaimsService(deps ClaimsServiceDeps) (ClaimsService, error) {
	if deps.Claims == nil {
		return nil, errors.New("claims service: claim repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("claims service: product repository is required")
	}
	if deps.Insurance == nil {
		return nil, errors.New("claims service: insurance client is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &claimsService{
		claims:    deps.Claims,
		products:  deps.Products,
		insurance: deps.Insurance,
		logger:    logger,
	}, nil
}

// CreateClaim verifies the device exists and stores the claim as submitted.
func (s *claimsService) CreateClaim(ctx context.Context, cmd CreateClaimCommand) (domain.Claim, error) {
	imei := strings.TrimSpace(cmd.IMEI)
	dateOfIncident := strings.TrimSpace(cmd.DateOfIncident)
	description := strings.TrimSpace(cmd.Description)
	customerName := strings.TrimSpace(cmd.CustomerName)
	customerEmail := strings.ToLower(strings.TrimSpace(cmd.CustomerEmail))

	if imei == "" || dateOfIncident == "" || description == "" || customerName == "" || !strings.Contains(customerEmail, "@") {
		return domain.Claim{}, ErrClaimsInvalidInput
	}

	if _, err := s.products.FindByIMEI(ctx, imei); err != nil {
		if repositories.IsNotFound(err) {
			return domain.Claim{}, ErrClaimsDeviceNotFound
		}
		if repositories.IsUnavailable(err) {
			return domain.Claim{}, ErrClaimsUnavailable
		}
		return domain.Claim{}, err
	}

	claim, err := s.claims.Insert(ctx, domain.Claim{
		IMEI:           imei,
		DateOfIncident: dateOfIncident,
		Description:    description,
		CustomerName:   customerName,
		CustomerEmail:  customerEmail,
		CustomerPhone:  strings.TrimSpace(cmd.CustomerPhone),
		Status:         domain.ClaimStatusSubmitted,
	})
	if err != nil {
		if repositories.IsUnavailable(err) {
			return domain.Claim{}, ErrClaimsUnavailable
		}
		return domain.Claim{}, err
	}

	s.logger(ctx, "claims.created", map[string]any{
		"claimId": claim.ID,
		"imei":    imei,
	})
	return claim, nil
}

// ListClaims returns all captured claims, newest first.
func (s *claimsService) ListClaims(ctx context.Context) ([]domain.Claim, error) {
	claims, err := s.claims.List(ctx)
	if err != nil {
		if repositories.IsUnavailable(err) {
			return nil, ErrClaimsUnavailable
		}
		return nil, err
	}
	return claims, nil
}

// SearchPolicies finds the caller's policies eligible for a claim.
func (s *claimsService) SearchPolicies(ctx context.Context, query string) ([]insurance.Policy, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrClaimsInvalidInput
	}
	policies, err := s.insurance.SearchPolicies(ctx, query)
	if err != nil {
		s.logger(ctx, "claims.policy_search_failed", map[string]any{"error": err.Error()})
		return nil, ErrClaimsUpstream
	}
	return policies, nil
}

// SubmitPlatformClaim resolves the claimant from the policyholder record and
// lodges the claim against the selected policy.
func (s *claimsService) SubmitPlatformClaim(ctx context.Context, cmd SubmitPlatformClaimCommand) (insurance.Claim, error) {
	policyID := strings.TrimSpace(cmd.PolicyID)
	email := strings.ToLower(strings.TrimSpace(cmd.CustomerEmail))
	incidentType := strings.TrimSpace(cmd.IncidentType)
	incidentDate := strings.TrimSpace(cmd.IncidentDate)

	if policyID == "" || incidentType == "" || incidentDate == "" || !strings.Contains(email, "@") {
		return insurance.Claim{}, ErrClaimsInvalidInput
	}

	holders, err := s.insurance.SearchPolicyholders(ctx, email)
	if err != nil {
		s.logger(ctx, "claims.policyholder_lookup_failed", map[string]any{"error": err.Error()})
		return insurance.Claim{}, ErrClaimsUpstream
	}
	if len(holders) == 0 {
		return insurance.Claim{}, ErrClaimsInvalidInput
	}
	holder := holders[0]

	claim, err := s.insurance.SubmitClaim(ctx, insurance.ClaimRequest{
		PolicyID:        policyID,
		IncidentType:    incidentType,
		IncidentCause:   strings.TrimSpace(cmd.IncidentCause),
		IncidentDate:    incidentDate,
		Description:     strings.TrimSpace(cmd.Description),
		RequestedAmount: cmd.RequestedAmount,
		Claimant: insurance.Claimant{
			FirstName: holder.FirstName,
			LastName:  holder.LastName,
			Email:     holder.Email,
			Cellphone: holder.Cellphone,
		},
	})
	if err != nil {
		s.logger(ctx, "claims.submit_failed", map[string]any{
			"policyId": policyID,
			"error":    err.Error(),
		})
		return insurance.Claim{}, ErrClaimsUpstream
	}

	if cmd.ClaimID > 0 {
		if err := s.claims.SetRootClaimID(ctx, cmd.ClaimID, claim.ClaimID); err != nil {
			s.logger(ctx, "claims.reference_update_failed", map[string]any{
				"claimId": cmd.ClaimID,
				"error":   err.Error(),
			})
		}
	}

	s.logger(ctx, "claims.submitted", map[string]any{
		"rootClaimId": claim.ClaimID,
		"policyId":    policyID,
	})
	return claim, nil
}
