package services

import (
	"context"
	"errors"
	"strings"

	"github.com/techstore-sa/api/internal/insurance"
)

var (
	// ErrPolicyholderInvalidInput indicates the caller supplied invalid identity details.
	ErrPolicyholderInvalidInput = errors.New("policyholder: invalid input")
	// ErrPolicyholderUpstream indicates the insurance platform failed the lookup or creation.
	ErrPolicyholderUpstream = errors.New("policyholder: upstream failure")
)

const defaultPolicyholderCountry = "ZA"

// policyholderClient abstracts the platform operations the resolver needs.
type policyholderClient interface {
	SearchPolicyholders(ctx context.Context, idNumber string) ([]insurance.Policyholder, error)
	CreatePolicyholder(ctx context.Context, draft insurance.PolicyholderDraft) (insurance.Policyholder, error)
}

// ResolvePolicyholderCommand identifies a customer by contact details. Email is
// the identification number on the platform.
type ResolvePolicyholderCommand struct {
	Email    string
	FullName string
	Phone    string
	Country  string
}

// PolicyholderService resolves customers to canonical platform policyholders.
type PolicyholderService interface {
	Resolve(ctx context.Context, cmd ResolvePolicyholderCommand) (insurance.Policyholder, error)
	Search(ctx context.Context, idNumber string) ([]insurance.Policyholder, error)
	Create(ctx context.Context, draft insurance.PolicyholderDraft) (insurance.Policyholder, error)
}

// PolicyholderServiceDeps wires the dependencies required by the resolver.
type PolicyholderServiceDeps struct {
	Insurance policyholderClient
	Logger    func(ctx context.Context, event string, fields map[string]any)
}

type policyholderService struct {
	insurance policyholderClient
	logger    func(ctx context.Context, event string, fields map[string]any)
}

// NewPolicyholderService constructs a PolicyholderService validating required dependencies.
func NewPolicyholderService(deps PolicyholderServiceDeps) (PolicyholderService, error) {
	if deps.Insurance == nil {
		return nil, errors.New("policyholder service: insurance client is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &policyholderService{
		insurance: deps.Insurance,
		logger:    logger,
	}, nil
}

// Resolve searches the platform by email and returns the first match, creating
// a policyholder when none exists. Repeated calls with the same email converge
// on the same canonical record.
func (s *policyholderService) Resolve(ctx context.Context, cmd ResolvePolicyholderCommand) (insurance.Policyholder, error) {
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if email == "" || !strings.Contains(email, "@") {
		return insurance.Policyholder{}, ErrPolicyholderInvalidInput
	}

	holders, err := s.insurance.SearchPolicyholders(ctx, email)
	if err != nil {
		s.logger(ctx, "policyholder.search_failed", map[string]any{"error": err.Error()})
		return insurance.Policyholder{}, ErrPolicyholderUpstream
	}
	if len(holders) > 0 {
		return holders[0], nil
	}

	firstName, lastName := splitFullName(cmd.FullName)
	if firstName == "" {
		return insurance.Policyholder{}, ErrPolicyholderInvalidInput
	}

	country := strings.ToUpper(strings.TrimSpace(cmd.Country))
	if country == "" {
		country = defaultPolicyholderCountry
	}

	holder, err := s.insurance.CreatePolicyholder(ctx, insurance.PolicyholderDraft{
		Type: "individual",
		ID: insurance.Identification{
			Type:    "email",
			Number:  email,
			Country: country,
		},
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Cellphone: strings.TrimSpace(cmd.Phone),
	})
	if err != nil {
		s.logger(ctx, "policyholder.create_failed", map[string]any{"error": err.Error()})
		return insurance.Policyholder{}, ErrPolicyholderUpstream
	}

	s.logger(ctx, "policyholder.created", map[string]any{
		"policyholderId": holder.PolicyholderID,
	})
	return holder, nil
}

// Search proxies a policyholder lookup by identification number.
func (s *policyholderService) Search(ctx context.Context, idNumber string) ([]insurance.Policyholder, error) {
	idNumber = strings.TrimSpace(idNumber)
	if idNumber == "" {
		return nil, ErrPolicyholderInvalidInput
	}
	holders, err := s.insurance.SearchPolicyholders(ctx, idNumber)
	if err != nil {
		return nil, ErrPolicyholderUpstream
	}
	return holders, nil
}

// Create proxies direct policyholder creation.
func (s *policyholderService) Create(ctx context.Context, draft insurance.PolicyholderDraft) (insurance.Policyholder, error) {
	if strings.TrimSpace(draft.Email) == "" && strings.TrimSpace(draft.ID.Number) == "" {
		return insurance.Policyholder{}, ErrPolicyholderInvalidInput
	}
	holder, err := s.insurance.CreatePolicyholder(ctx, draft)
	if err != nil {
		return insurance.Policyholder{}, ErrPolicyholderUpstream
	}
	return holder, nil
}

func splitFullName(fullName string) (string, string) {
	parts := strings.Fields(strings.TrimSpace(fullName))
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], parts[0]
	}
	return parts[0], strings.Join(parts[1:], " ")
}
