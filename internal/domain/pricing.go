package domain

// South African VAT applied to devices and warranties at checkout.
const vatRatePercent = 15

// VAT computes the tax due on a taxable amount in cents, rounding half up.
func VAT(taxable int64) int64 {
	return roundedPercent(taxable, vatRatePercent)
}

// TotalWithVAT computes the VAT-inclusive total for a taxable amount in cents,
// rounding half up. Computed directly from the taxable amount rather than as
// taxable+VAT so the rounding matches a single multiplication.
func TotalWithVAT(taxable int64) int64 {
	return roundedPercent(taxable, 100+vatRatePercent)
}

func roundedPercent(amount int64, percent int64) int64 {
	return (amount*percent + 50) / 100
}
