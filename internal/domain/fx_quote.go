package domain

import "github.com/shopspring/decimal"

// FxQuote is a two-sided price for a currency.
type FxQuote struct {
	Currency Currency
	Bid      decimal.Decimal
	Ask      decimal.Decimal
}

var _ Contribution = FxQuote{}

func (FxQuote) MarketDataType() MarketDataType { return MarketDataTypeFxQuote }

// Equal compares prices by value, so 1.0 and 1.00 are the same quote.
func (q FxQuote) Equal(o FxQuote) bool {
	return q.Currency == o.Currency && q.Bid.Equal(o.Bid) && q.Ask.Equal(o.Ask)
}
