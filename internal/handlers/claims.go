package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/techstore-sa/api/internal/domain"
	"github.com/techstore-sa/api/internal/platform/httpx"
	"github.com/techstore-sa/api/internal/services"
)

const maxClaimBodySize = 32 * 1024

// ClaimHandlers exposes local claim intake and platform claim submission.
type ClaimHandlers struct {
	claims services.ClaimsService
}

// NewClaimHandlers constructs a new ClaimHandlers instance.
func NewClaimHandlers(claims services.ClaimsService) *ClaimHandlers {
	return &ClaimHandlers{claims: claims}
}

// Routes registers the claim endpoints.
func (h *ClaimHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/claims", h.createClaim)
	r.Get("/claims", h.listClaims)
	r.Get("/getClaimPolicies/{search}", h.getClaimPolicies)
	r.Post("/createClaim", h.submitPlatformClaim)
}

type createClaimRequest struct {
	IMEI           string `json:"imei"`
	DateOfIncident string `json:"dateOfIncident"`
	Description    string `json:"description"`
	CustomerName   string `json:"customerName"`
	CustomerEmail  string `json:"customerEmail"`
	CustomerPhone  string `json:"customerPhone"`
}

type claimPayload struct {
	ID             int64  `json:"id"`
	IMEI           string `json:"imei"`
	DateOfIncident string `json:"dateOfIncident"`
	Description    string `json:"description"`
	CustomerName   string `json:"customerName"`
	CustomerEmail  string `json:"customerEmail"`
	CustomerPhone  string `json:"customerPhone,omitempty"`
	Status         string `json:"status"`
	RootClaimID    string `json:"rootClaimId,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

func buildClaimPayload(claim domain.Claim) claimPayload {
	return claimPayload{
		ID:             claim.ID,
		IMEI:           claim.IMEI,
		DateOfIncident: claim.DateOfIncident,
		Description:    claim.Description,
		CustomerName:   claim.CustomerName,
		CustomerEmail:  claim.CustomerEmail,
		CustomerPhone:  claim.CustomerPhone,
		Status:         claim.Status,
		RootClaimID:    claim.RootClaimID,
		CreatedAt:      formatTime(claim.CreatedAt),
	}
}

func (h *ClaimHandlers) createClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.claims == nil {
		httpx.WriteError(ctx, w, httpx.NewError("claims_unavailable", "claims service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req createClaimRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	claim, err := h.claims.CreateClaim(ctx, services.CreateClaimCommand{
		IMEI:           req.IMEI,
		DateOfIncident: req.DateOfIncident,
		Description:    req.Description,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		CustomerPhone:  req.CustomerPhone,
	})
	if err != nil {
		writeClaimsError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildClaimPayload(claim))
}

func (h *ClaimHandlers) listClaims(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.claims == nil {
		httpx.WriteError(ctx, w, httpx.NewError("claims_unavailable", "claims service unavailable", http.StatusServiceUnavailable))
		return
	}

	claims, err := h.claims.ListClaims(ctx)
	if err != nil {
		writeClaimsError(ctx, w, err)
		return
	}

	payload := make([]claimPayload, 0, len(claims))
	for _, claim := range claims {
		payload = append(payload, buildClaimPayload(claim))
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *ClaimHandlers) getClaimPolicies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.claims == nil {
		httpx.WriteError(ctx, w, httpx.NewError("claims_unavailable", "claims service unavailable", http.StatusServiceUnavailable))
		return
	}

	search := strings.TrimSpace(chi.URLParam(r, "search"))
	policies, err := h.claims.SearchPolicies(ctx, search)
	if err != nil {
		writeClaimsError(ctx, w, err)
		return
	}

	payload := make([]policyPayload, 0, len(policies))
	for _, policy := range policies {
		payload = append(payload, buildPolicyPayload(policy))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"policies": payload})
}

type submitClaimRequest struct {
	PolicyID        string `json:"policyId"`
	ClaimID         int64  `json:"claimId"`
	IncidentType    string `json:"incidentType"`
	IncidentCause   string `json:"incidentCause"`
	IncidentDate    string `json:"incidentDate"`
	Description     string `json:"description"`
	RequestedAmount int64  `json:"requestedAmount"`
	CustomerEmail   string `json:"customerEmail"`
}

func (h *ClaimHandlers) submitPlatformClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.claims == nil {
		httpx.WriteError(ctx, w, httpx.NewError("claims_unavailable", "claims service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req submitClaimRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	claim, err := h.claims.SubmitPlatformClaim(ctx, services.SubmitPlatformClaimCommand{
		PolicyID:        req.PolicyID,
		ClaimID:         req.ClaimID,
		IncidentType:    req.IncidentType,
		IncidentCause:   req.IncidentCause,
		IncidentDate:    req.IncidentDate,
		Description:     req.Description,
		RequestedAmount: req.RequestedAmount,
		CustomerEmail:   req.CustomerEmail,
	})
	if err != nil {
		writeClaimsError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]any{
		"claimId": claim.ClaimID,
		"status":  claim.Status,
	})
}

func (h *ClaimHandlers) decode(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) bool {
	body, err := readLimitedBody(r, maxClaimBodySize)
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

func writeClaimsError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrClaimsInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrClaimsDeviceNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("device_not_found", "no device matches the given imei", http.StatusNotFound))
	case errors.Is(err, services.ErrClaimsUpstream):
		httpx.WriteError(ctx, w, httpx.NewError("claims_failed", "insurance platform rejected the claim operation", http.StatusBadGateway))
	case errors.Is(err, services.ErrClaimsUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("claims_unavailable", "claim dependencies unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("claims_error", "failed to process claim request", http.StatusInternalServerError))
	}
}
