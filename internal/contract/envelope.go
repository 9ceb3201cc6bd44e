package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"strings"

	"marketdata-gateway/internal/domain"
)

// Envelope pairs a declared market data type with the one payload that
// matches it.
type Envelope struct {
	Type    domain.MarketDataType
	FxQuote *FxQuotePayload
}

type envelopeJSON struct {
	MarketDataType json.RawMessage `json:"marketDataType"`
	FxQuote        json.RawMessage `json:"fxQuote"`
}

// NewEnvelope wraps a contribution for the wire, e.g. for a remote validator.
func NewEnvelope(c domain.Contribution) (Envelope, error) {
	switch c.MarketDataType() {
	case domain.MarketDataTypeFxQuote:
		q, ok := c.(domain.FxQuote)
		if !ok {
			return Envelope{}, ErrInvalidPayload
		}
		p := FromFxQuote(q)
		return Envelope{Type: domain.MarketDataTypeFxQuote, FxQuote: &p}, nil
	case domain.MarketDataTypeUnrecognized:
		return Envelope{}, ErrUnrecognizedType
	default:
		return Envelope{}, ErrUnrecognizedType
	}
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	tag, err := json.Marshal(e.Type.String())
	if err != nil {
		return nil, err
	}
	out := envelopeJSON{MarketDataType: tag}
	if e.FxQuote != nil {
		if out.FxQuote, err = json.Marshal(e.FxQuote); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

// Contribution returns the typed payload selected by the tag.
func (e Envelope) Contribution() (domain.Contribution, error) {
	switch e.Type {
	case domain.MarketDataTypeFxQuote:
		if e.FxQuote == nil {
			return nil, fmt.Errorf("%w: missing fxQuote", ErrInvalidPayload)
		}
		return e.FxQuote.ToDomain(), nil
	case domain.MarketDataTypeUnrecognized:
		return nil, ErrUnrecognizedType
	default:
		return nil, ErrUnrecognizedType
	}
}

// Decode classifies a request body. An empty body, a non-JSON content type
// or malformed JSON yields ErrUnsupportedContent; well-formed JSON without a
// known tag yields ErrUnrecognizedType; a known tag with a payload that does
// not fit yields ErrInvalidPayload.
func Decode(contentType string, body []byte) (Envelope, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Envelope{}, fmt.Errorf("%w: empty body", ErrUnsupportedContent)
	}
	if !isJSONContentType(contentType) {
		return Envelope{}, fmt.Errorf("%w: content type %q", ErrUnsupportedContent, contentType)
	}
	if !json.Valid(body) {
		return Envelope{}, fmt.Errorf("%w: malformed JSON", ErrUnsupportedContent)
	}

	var raw envelopeJSON
	if err := json.Unmarshal(body, &raw); err != nil {
		// valid JSON but not an object: there is no tag to read
		return Envelope{}, fmt.Errorf("%w: %v", ErrUnrecognizedType, err)
	}

	env := Envelope{Type: parseTag(raw.MarketDataType)}
	switch env.Type {
	case domain.MarketDataTypeFxQuote:
		if isAbsent(raw.FxQuote) {
			return Envelope{}, fmt.Errorf("%w: missing fxQuote", ErrInvalidPayload)
		}
		var p FxQuotePayload
		if err := json.Unmarshal(raw.FxQuote, &p); err != nil {
			return Envelope{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		if p.Currency == "" {
			return Envelope{}, fmt.Errorf("%w: missing currency", ErrInvalidPayload)
		}
		env.FxQuote = &p
		return env, nil
	case domain.MarketDataTypeUnrecognized:
		return Envelope{}, ErrUnrecognizedType
	default:
		return Envelope{}, ErrUnrecognizedType
	}
}

// parseTag accepts only JSON strings; numbers, null and absence are all
// unrecognized.
func parseTag(raw json.RawMessage) domain.MarketDataType {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.MarketDataTypeUnrecognized
	}
	return domain.ParseMarketDataType(s)
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func isJSONContentType(ct string) bool {
	if ct == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	switch mt {
	case "application/json", "text/json":
		return true
	}
	return strings.HasSuffix(mt, "+json")
}
