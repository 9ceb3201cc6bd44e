package domain

import (
	"fmt"
	"strings"
)

// Currency is an ISO 4217 code from the closed set the gateway accepts.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyJPY Currency = "JPY"
	CurrencyCHF Currency = "CHF"
	CurrencyAUD Currency = "AUD"
	CurrencyCAD Currency = "CAD"
	CurrencyNZD Currency = "NZD"
	CurrencyMXN Currency = "MXN"
)

var SupportedCurrency = map[Currency]bool{
	CurrencyUSD: true,
	CurrencyEUR: true,
	CurrencyGBP: true,
	CurrencyJPY: true,
	CurrencyCHF: true,
	CurrencyAUD: true,
	CurrencyCAD: true,
	CurrencyNZD: true,
	CurrencyMXN: true,
}

// ParseCurrency matches s case-insensitively against SupportedCurrency.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !SupportedCurrency[c] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, s)
	}
	return c, nil
}

func (c Currency) String() string { return string(c) }

func (c Currency) MarshalText() ([]byte, error) { return []byte(c), nil }

func (c *Currency) UnmarshalText(b []byte) error {
	parsed, err := ParseCurrency(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
