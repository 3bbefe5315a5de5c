package enum

import "fmt"

// Currency is the ISO code of a gateway invoice. The core never mixes
// currencies inside one record.
type Currency string

const (
	CurrencyMNT Currency = "MNT"
	CurrencyUSD Currency = "USD"
	CurrencyCNY Currency = "CNY"
)

// ParseCurrency validates a currency code; an empty string defaults to MNT
func ParseCurrency(s string) (Currency, error) {
	switch Currency(s) {
	case "":
		return CurrencyMNT, nil
	case CurrencyMNT, CurrencyUSD, CurrencyCNY:
		return Currency(s), nil
	}
	return CurrencyMNT, fmt.Errorf("unsupported currency %q", s)
}
