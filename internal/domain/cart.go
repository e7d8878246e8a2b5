package domain

import "github.com/oklog/ulid/v2"

// CoverType enumerates the insurance cover levels offered at point of sale.
type CoverType string

const (
	CoverComprehensive    CoverType = "comprehensive"
	CoverTheft            CoverType = "theft"
	CoverAccidentalDamage CoverType = "accidental_damage"
)

// ValidCoverType reports whether the given cover type is one the platform quotes for.
func ValidCoverType(ct CoverType) bool {
	switch ct {
	case CoverComprehensive, CoverTheft, CoverAccidentalDamage:
		return true
	}
	return false
}

// WarrantySelection is an extended warranty chosen for a single cart item.
type WarrantySelection struct {
	Type  string `json:"type"`
	Price int64  `json:"price"`
}

// InsuranceSelection is a monthly insurance option chosen for a single cart item.
// Price is the monthly premium in cents; QuotePackageID references the platform quote.
type InsuranceSelection struct {
	Type           CoverType `json:"type"`
	Price          int64     `json:"price"`
	QuotePackageID string    `json:"quotePackageId,omitempty"`
}

// CartItem is a single device line in the cart, optionally carrying a warranty
// and an insurance selection. ID identifies the line, not the product.
type CartItem struct {
	ID          string
	ProductID   int64
	Name        string
	Description string
	Price       int64
	Image       string
	IMEI        string
	Warranty    *WarrantySelection
	Insurance   *InsuranceSelection
}

// Cart holds the in-progress selection of devices and add-ons.
type Cart struct {
	Items []CartItem
}

// AddItem appends a line to the cart, assigning a line id when absent.
func (c *Cart) AddItem(item CartItem) {
	if item.ID == "" {
		item.ID = ulid.Make().String()
	}
	c.Items = append(c.Items, item)
}

// RemoveItem drops the line with the given id. Removing an absent id is a no-op.
func (c *Cart) RemoveItem(itemID string) {
	for i, item := range c.Items {
		if item.ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// UpdateItemWarranty sets or clears the warranty selection on a line.
func (c *Cart) UpdateItemWarranty(itemID string, warranty *WarrantySelection) {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items[i].Warranty = warranty
			return
		}
	}
}

// UpdateItemInsurance sets or clears the insurance selection on a line.
func (c *Cart) UpdateItemInsurance(itemID string, insurance *InsuranceSelection) {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items[i].Insurance = insurance
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
}

// Subtotal sums the device prices in cents.
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Price
	}
	return total
}

// WarrantyTotal sums the one-off warranty prices in cents.
func (c *Cart) WarrantyTotal() int64 {
	var total int64
	for _, item := range c.Items {
		if item.Warranty != nil {
			total += item.Warranty.Price
		}
	}
	return total
}

// InsuranceTotal sums the monthly insurance premiums in cents. Premiums are
// billed monthly by the insurer and never feed into the order total.
func (c *Cart) InsuranceTotal() int64 {
	var total int64
	for _, item := range c.Items {
		if item.Insurance != nil {
			total += item.Insurance.Price
		}
	}
	return total
}

// VAT returns the value-added tax on devices plus warranties.
func (c *Cart) VAT() int64 {
	return VAT(c.Subtotal() + c.WarrantyTotal())
}

// Total returns the VAT-inclusive amount payable now.
func (c *Cart) Total() int64 {
	return TotalWithVAT(c.Subtotal() + c.WarrantyTotal())
}

// InsuredItems returns the lines carrying an insurance selection.
func (c *Cart) InsuredItems() []CartItem {
	var insured []CartItem
	for _, item := range c.Items {
		if item.Insurance != nil {
			insured = append(insured, item)
		}
	}
	return insured
}
