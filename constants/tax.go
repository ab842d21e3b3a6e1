package constants

// GST split applied to every invoice line.
const (
	CGSTRate     = 0.09
	SGSTRate     = 0.09
	TotalTaxRate = CGSTRate + SGSTRate
)

// DefaultCompanyName is printed when the profile has no name.
const DefaultCompanyName = "BillBot Services"

// CurrencyPrefix is used instead of the rupee sign for PDF font compatibility.
const CurrencyPrefix = "Rs."
