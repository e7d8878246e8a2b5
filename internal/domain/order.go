package domain

import "time"

// OrderStatus tracks an order through the insurance fulfilment lifecycle.
type OrderStatus string

const (
	// OrderStatusPending is the initial state after checkout persists the order.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusApplied means every insured item has a platform application.
	OrderStatusApplied OrderStatus = "applied"
	// OrderStatusIssued means policies exist for the accumulated applications.
	OrderStatusIssued OrderStatus = "issued"
	// OrderStatusCovered means a payment method is assigned to every policy.
	OrderStatusCovered OrderStatus = "covered"
	// OrderStatusCompleted is a terminal state for orders with no insured items.
	OrderStatusCompleted OrderStatus = "completed"
)

// ValidOrderStatus reports whether the status is a known lifecycle state.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusApplied, OrderStatusIssued, OrderStatusCovered, OrderStatusCompleted:
		return true
	}
	return false
}

// OrderItem is a device line snapshotted onto a persisted order.
type OrderItem struct {
	ProductID   int64               `json:"productId"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Price       int64               `json:"price"`
	Image       string              `json:"image,omitempty"`
	IMEI        string              `json:"imei"`
	Warranty    *WarrantySelection  `json:"warranty,omitempty"`
	Insurance   *InsuranceSelection `json:"insurance,omitempty"`
}

// Order is a placed order with its computed totals and the insurance artefacts
// accumulated over the fulfilment phases.
type Order struct {
	ID             int64
	FullName       string
	Email          string
	Phone          string
	Address        string
	PostalCode     string
	Country        string
	Subtotal       int64
	WarrantyTotal  int64
	InsuranceTotal int64
	VAT            int64
	Total          int64
	Status         OrderStatus
	Items          []OrderItem
	RootPolicyIDs  []string
	ApplicationIDs []string
	PolicyHolderID string
	CreatedAt      time.Time
}

// InsuredItems returns the order lines carrying an insurance selection.
func (o Order) InsuredItems() []OrderItem {
	var insured []OrderItem
	for _, item := range o.Items {
		if item.Insurance != nil {
			insured = append(insured, item)
		}
	}
	return insured
}
