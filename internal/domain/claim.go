package domain

import "time"

// ClaimStatusSubmitted is the intake state for locally captured claims.
const ClaimStatusSubmitted = "submitted"

// Claim is a device insurance claim captured by the storefront. RootClaimID is
// set once the claim has been lodged with the insurance platform.
type Claim struct {
	ID             int64
	IMEI           string
	DateOfIncident string
	Description    string
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	Status         string
	RootClaimID    string
	CreatedAt      time.Time
}
