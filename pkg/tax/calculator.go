package tax

import "github.com/shopspring/decimal"

// The Mongolian tax authority treats line amounts as gross, tax-inclusive
// figures. Allocations are therefore derived with divisor formulas
// (amount / 1.10, amount / 1.11, amount / 1.01) rather than naive percentage
// multiplication; the two disagree in the last cent for some amounts and the
// authority validates against the divisor form.

var (
	vatRate     = decimal.NewFromFloat(0.10)
	cityTaxRate = decimal.NewFromFloat(0.01)
	one         = decimal.NewFromInt(1)
)

// Round rounds a monetary value to 2 decimal places, half up. Every computed
// amount crosses this before it is summed or persisted.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// VAT returns the VAT portion of a gross amount when only VAT applies.
// Formula: amount / 1.10 * 0.10.
func VAT(amount decimal.Decimal) decimal.Decimal {
	return Round(amount.Div(one.Add(vatRate)).Mul(vatRate))
}

// VATWithCityTax returns the VAT portion of a gross amount that also carries
// city tax. Formula: amount / 1.11 * 0.10.
func VATWithCityTax(amount decimal.Decimal) decimal.Decimal {
	return Round(amount.Div(one.Add(vatRate).Add(cityTaxRate)).Mul(vatRate))
}

// CityTax returns the city-tax portion of a gross amount that also carries
// VAT. Formula: amount / 1.11 * 0.01.
func CityTax(amount decimal.Decimal) decimal.Decimal {
	return Round(amount.Div(one.Add(vatRate).Add(cityTaxRate)).Mul(cityTaxRate))
}

// CityTaxWithoutVAT returns the city-tax portion of a gross amount that
// carries no VAT. Formula: amount / 1.01 * 0.01.
func CityTaxWithoutVAT(amount decimal.Decimal) decimal.Decimal {
	return Round(amount.Div(one.Add(cityTaxRate)).Mul(cityTaxRate))
}
