package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/techstore-sa/api/internal/domain"
)

// OrderRepository persists orders in postgres. Items and accumulated insurance
// identifiers are stored as JSONB columns on the order row.
type OrderRepository struct {
	pool *pgxpool.Pool
}

const orderColumns = `id, full_name, email, phone, address, postal_code, country,
subtotal, warranty_total, insurance_total, vat, total, status,
items, root_policy_ids, application_ids, policy_holder_id, created_at`

// Insert stores a new order and returns it with its generated id and timestamp.
func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) (domain.Order, error) {
	items, err := json.Marshal(orderItemsOrEmpty(order.Items))
	if err != nil {
		return domain.Order{}, wrapError("encode order items", err)
	}
	policyIDs, err := json.Marshal(stringsOrEmpty(order.RootPolicyIDs))
	if err != nil {
		return domain.Order{}, wrapError("encode policy ids", err)
	}
	applicationIDs, err := json.Marshal(stringsOrEmpty(order.ApplicationIDs))
	if err != nil {
		return domain.Order{}, wrapError("encode application ids", err)
	}

	status := order.Status
	if status == "" {
		status = domain.OrderStatusPending
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO orders (
  full_name, email, phone, address, postal_code, country,
  subtotal, warranty_total, insurance_total, vat, total, status,
  items, root_policy_ids, application_ids, policy_holder_id
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
RETURNING `+orderColumns,
		order.FullName, order.Email, order.Phone, order.Address, order.PostalCode, order.Country,
		order.Subtotal, order.WarrantyTotal, order.InsuranceTotal, order.VAT, order.Total, string(status),
		items, policyIDs, applicationIDs, order.PolicyHolderID,
	)

	inserted, err := scanOrder(row)
	if err != nil {
		return domain.Order{}, wrapError("insert order", err)
	}
	return inserted, nil
}

// FindByID fetches a single order.
func (r *OrderRepository) FindByID(ctx context.Context, id int64) (domain.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		return domain.Order{}, wrapError("find order", err)
	}
	return order, nil
}

// UpdateInsurance replaces the order's status and accumulated insurance
// identifiers. Last write wins.
func (r *OrderRepository) UpdateInsurance(ctx context.Context, id int64, status domain.OrderStatus, policyIDs, applicationIDs []string) (domain.Order, error) {
	encodedPolicies, err := json.Marshal(stringsOrEmpty(policyIDs))
	if err != nil {
		return domain.Order{}, wrapError("encode policy ids", err)
	}
	encodedApplications, err := json.Marshal(stringsOrEmpty(applicationIDs))
	if err != nil {
		return domain.Order{}, wrapError("encode application ids", err)
	}

	row := r.pool.QueryRow(ctx, `
UPDATE orders
SET status = $2, root_policy_ids = $3, application_ids = $4
WHERE id = $1
RETURNING `+orderColumns,
		id, string(status), encodedPolicies, encodedApplications,
	)

	order, err := scanOrder(row)
	if err != nil {
		return domain.Order{}, wrapError("update order insurance", err)
	}
	return order, nil
}

// SetPolicyHolderID records the resolved policyholder on the order.
func (r *OrderRepository) SetPolicyHolderID(ctx context.Context, id int64, policyholderID string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET policy_holder_id = $2 WHERE id = $1`, id, policyholderID)
	if err != nil {
		return wrapError("set policy holder", err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundError(fmt.Sprintf("set policy holder on order %d", id))
	}
	return nil
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		order          domain.Order
		status         string
		items          []byte
		policyIDs      []byte
		applicationIDs []byte
	)
	err := row.Scan(
		&order.ID, &order.FullName, &order.Email, &order.Phone, &order.Address, &order.PostalCode, &order.Country,
		&order.Subtotal, &order.WarrantyTotal, &order.InsuranceTotal, &order.VAT, &order.Total, &status,
		&items, &policyIDs, &applicationIDs, &order.PolicyHolderID, &order.CreatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}

	order.Status = domain.OrderStatus(status)
	if err := json.Unmarshal(items, &order.Items); err != nil {
		return domain.Order{}, fmt.Errorf("decode order items: %w", err)
	}
	if err := json.Unmarshal(policyIDs, &order.RootPolicyIDs); err != nil {
		return domain.Order{}, fmt.Errorf("decode policy ids: %w", err)
	}
	if err := json.Unmarshal(applicationIDs, &order.ApplicationIDs); err != nil {
		return domain.Order{}, fmt.Errorf("decode application ids: %w", err)
	}
	return order, nil
}

func orderItemsOrEmpty(items []domain.OrderItem) []domain.OrderItem {
	if items == nil {
		return []domain.OrderItem{}
	}
	return items
}

func stringsOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
