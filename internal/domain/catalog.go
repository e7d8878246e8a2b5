package domain

import "time"

// Product is a catalog entry. Monetary values are integer cents (ZAR).
type Product struct {
	ID            int64
	Name          string
	Description   string
	Price         int64
	OriginalPrice *int64
	Image         string
	Category      string
	Badge         string
	Rating        string
	IMEI          string
	PurchaseDate  *time.Time
}

// WarrantyStatus describes where a device sits in its warranty lifecycle.
type WarrantyStatus struct {
	WithinManufacturerWarranty bool
	WithinExtendedWarranty     bool
	MonthsSincePurchase        int
}

const (
	manufacturerWarrantyMonths = 12
	extendedWarrantyMonths     = 60
)

// warrantyMonth approximates a calendar month for warranty age calculations.
const warrantyMonth = 30 * 24 * time.Hour

// WarrantyStatusAt classifies a device's warranty coverage at the given instant.
// A device with no recorded purchase date is treated as out of warranty.
func WarrantyStatusAt(purchaseDate *time.Time, now time.Time) WarrantyStatus {
	if purchaseDate == nil || purchaseDate.IsZero() {
		return WarrantyStatus{}
	}
	elapsed := now.Sub(*purchaseDate)
	if elapsed < 0 {
		elapsed = 0
	}
	months := int(elapsed / warrantyMonth)
	return WarrantyStatus{
		WithinManufacturerWarranty: months <= manufacturerWarrantyMonths,
		WithinExtendedWarranty:     months <= extendedWarrantyMonths,
		MonthsSincePurchase:        months,
	}
}
