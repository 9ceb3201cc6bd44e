package contract

import "errors"

var (
	// ErrUnsupportedContent means the body is empty or not JSON at all. It is
	// a transport-level failure, reported before any tag is looked at.
	ErrUnsupportedContent = errors.New("unsupported content")
	ErrUnrecognizedType   = errors.New("unrecognized market data type")
	ErrInvalidPayload     = errors.New("invalid payload")
)
