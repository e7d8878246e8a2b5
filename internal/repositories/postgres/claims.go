package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/techstore-sa/api/internal/domain"
)

// ClaimRepository persists claims in postgres.
type ClaimRepository struct {
	pool *pgxpool.Pool
}

const claimColumns = `id, imei, date_of_incident, description, customer_name, customer_email, customer_phone, status, root_claim_id, created_at`

// Insert stores a new claim and returns it with its generated id and timestamp.
func (r *ClaimRepository) Insert(ctx context.Context, claim domain.Claim) (domain.Claim, error) {
	status := claim.Status
	if status == "" {
		status = domain.ClaimStatusSubmitted
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO claims (imei, date_of_incident, description, customer_name, customer_email, customer_phone, status, root_claim_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+claimColumns,
		claim.IMEI, claim.DateOfIncident, claim.Description,
		claim.CustomerName, claim.CustomerEmail, claim.CustomerPhone,
		status, claim.RootClaimID,
	)

	inserted, err := scanClaim(row)
	if err != nil {
		return domain.Claim{}, wrapError("insert claim", err)
	}
	return inserted, nil
}

// List returns all claims, newest first.
func (r *ClaimRepository) List(ctx context.Context) ([]domain.Claim, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+claimColumns+` FROM claims ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, wrapError("list claims", err)
	}
	defer rows.Close()

	var claims []domain.Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, wrapError("scan claim", err)
		}
		claims = append(claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("list claims", err)
	}
	return claims, nil
}

// SetRootClaimID records the platform claim reference after submission.
func (r *ClaimRepository) SetRootClaimID(ctx context.Context, id int64, rootClaimID string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE claims SET root_claim_id = $2 WHERE id = $1`, id, rootClaimID)
	if err != nil {
		return wrapError("set root claim id", err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundError(fmt.Sprintf("set root claim id on claim %d", id))
	}
	return nil
}

func scanClaim(row pgx.Row) (domain.Claim, error) {
	var claim domain.Claim
	err := row.Scan(
		&claim.ID,
		&claim.IMEI,
		&claim.DateOfIncident,
		&claim.Description,
		&claim.CustomerName,
		&claim.CustomerEmail,
		&claim.CustomerPhone,
		&claim.Status,
		&claim.RootClaimID,
		&claim.CreatedAt,
	)
	if err != nil {
		return domain.Claim{}, err
	}
	return claim, nil
}
