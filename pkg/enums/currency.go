package enums

import "fmt"

// Currency represents the monetary denominations stores can report in.
type Currency string

const (
	CurrencyGBP Currency = "GBP"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyCAD Currency = "CAD"
	CurrencyAUD Currency = "AUD"
	CurrencyZAR Currency = "ZAR"
	CurrencyGHS Currency = "GHS"
	CurrencyKES Currency = "KES"
	CurrencyINR Currency = "INR"
	CurrencyCNY Currency = "CNY"
)

var validCurrencies = []Currency{
	CurrencyGBP,
	CurrencyUSD,
	CurrencyEUR,
	CurrencyCAD,
	CurrencyAUD,
	CurrencyZAR,
	CurrencyGHS,
	CurrencyKES,
	CurrencyINR,
	CurrencyCNY,
}

var currencySymbols = map[Currency]string{
	CurrencyGBP: "£",
	CurrencyUSD: "$",
	CurrencyEUR: "€",
	CurrencyCAD: "$",
	CurrencyAUD: "$",
	CurrencyZAR: "R",
	CurrencyGHS: "GH₵",
	CurrencyKES: "KSh",
	CurrencyINR: "₹",
	CurrencyCNY: "¥",
}

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}

// IsValid reports whether the currency is recognized.
func (c Currency) IsValid() bool {
	for _, candidate := range validCurrencies {
		if candidate == c {
			return true
		}
	}
	return false
}

// Symbol returns the display symbol, falling back to the ISO code.
func (c Currency) Symbol() string {
	if symbol, ok := currencySymbols[c]; ok {
		return symbol
	}
	return string(c)
}

// ParseCurrency converts a raw string into a Currency.
func ParseCurrency(value string) (Currency, error) {
	for _, candidate := range validCurrencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid currency %q", value)
}
