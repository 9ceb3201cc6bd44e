package contract

import (
	"encoding/json"

	"marketdata-gateway/internal/domain"

	"github.com/shopspring/decimal"
)

// FxQuotePayload is the wire form of domain.FxQuote. Prices are decoded
// exactly from JSON numbers or numeric strings and written back as numbers.
type FxQuotePayload struct {
	Currency domain.Currency `json:"currency"`
	Bid      decimal.Decimal `json:"bid"`
	Ask      decimal.Decimal `json:"ask"`
}

type fxQuoteJSON struct {
	Currency domain.Currency `json:"currency"`
	Bid      json.Number     `json:"bid"`
	Ask      json.Number     `json:"ask"`
}

func (p FxQuotePayload) MarshalJSON() ([]byte, error) {
	return json.Marshal(fxQuoteJSON{
		Currency: p.Currency,
		Bid:      json.Number(p.Bid.String()),
		Ask:      json.Number(p.Ask.String()),
	})
}

func (p FxQuotePayload) ToDomain() domain.FxQuote {
	return domain.FxQuote{Currency: p.Currency, Bid: p.Bid, Ask: p.Ask}
}

func FromFxQuote(q domain.FxQuote) FxQuotePayload {
	return FxQuotePayload{Currency: q.Currency, Bid: q.Bid, Ask: q.Ask}
}

// EncodePayload returns the wire form of a stored contribution.
func EncodePayload(c domain.Contribution) (any, error) {
	switch c.MarketDataType() {
	case domain.MarketDataTypeFxQuote:
		q, ok := c.(domain.FxQuote)
		if !ok {
			return nil, ErrInvalidPayload
		}
		return FromFxQuote(q), nil
	case domain.MarketDataTypeUnrecognized:
		return nil, ErrUnrecognizedType
	default:
		return nil, ErrUnrecognizedType
	}
}
