package domain

import "strings"

// MarketDataType tags the payload carried by a contribution envelope.
type MarketDataType int

const (
	// MarketDataTypeUnrecognized is the sentinel for any tag the gateway
	// does not know. It is never routed to the pipeline.
	MarketDataTypeUnrecognized MarketDataType = iota - 1
	MarketDataTypeFxQuote
)

var marketDataTypeNames = map[MarketDataType]string{
	MarketDataTypeFxQuote: "FxQuote",
}

// ParseMarketDataType is case-insensitive. Unknown or empty tags map to
// MarketDataTypeUnrecognized.
func ParseMarketDataType(s string) MarketDataType {
	s = strings.TrimSpace(s)
	for t, name := range marketDataTypeNames {
		if strings.EqualFold(name, s) {
			return t
		}
	}
	return MarketDataTypeUnrecognized
}

func (t MarketDataType) String() string {
	if name, ok := marketDataTypeNames[t]; ok {
		return name
	}
	return "Unrecognized"
}

// Contribution is a unit of market data submitted to the gateway.
type Contribution interface {
	MarketDataType() MarketDataType
}
