package contract

import (
	"context"
	"errors"
	"fmt"

	"marketdata-gateway/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MsgUnrecognizedType   = "Unrecognized Market Data Type provided"
	MsgUnsupportedContent = "Unsupported content; expected a JSON contribution envelope"
	MsgInvalidPayload     = "Invalid payload provided for the declared Market Data Type"
	MsgEmptyIdentifier    = "Null or empty unique identifier provided"
)

// Pipeline is the part of the gateway service the dispatcher drives.
type Pipeline interface {
	Process(ctx context.Context, c domain.Contribution) (domain.ValidationResult, error)
	Retrieve(ctx context.Context, id uuid.UUID) (domain.Contribution, bool)
}

// State is the caller-facing classification of a request.
type State int

const (
	StateCreated State = iota
	StateFound
	StateNotFound
	StateBadRequest
	StateUnsupportedContent
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateFound:
		return "found"
	case StateNotFound:
		return "not_found"
	case StateBadRequest:
		return "bad_request"
	case StateUnsupportedContent:
		return "unsupported_content"
	default:
		return "unknown"
	}
}

type Result struct {
	State State
	// Type is the declared market data type; Unrecognized when the request
	// never reached the pipeline.
	Type    domain.MarketDataType
	Outcome domain.ValidationResult
	Payload any
	Message string
}

type Dispatcher struct {
	pipeline Pipeline
	log      *zap.Logger
}

func NewDispatcher(p Pipeline, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{pipeline: p, log: log}
}

// Submit decodes body and routes it to the pipeline. Caller errors come back
// as a Result; the returned error is reserved for unexpected pipeline
// failures.
func (d *Dispatcher) Submit(ctx context.Context, contentType string, body []byte) (Result, error) {
	env, err := Decode(contentType, body)
	if err != nil {
		return d.rejected(err), nil
	}
	c, err := env.Contribution()
	if err != nil {
		return d.rejected(err), nil
	}

	out, err := d.pipeline.Process(ctx, c)
	if err != nil {
		return Result{Type: env.Type}, fmt.Errorf("process %s: %w", env.Type, err)
	}
	// A failed validation is still a created result carrying the outcome.
	return Result{State: StateCreated, Type: env.Type, Outcome: out}, nil
}

func (d *Dispatcher) rejected(err error) Result {
	res := Result{Type: domain.MarketDataTypeUnrecognized}
	switch {
	case errors.Is(err, ErrUnsupportedContent):
		res.State, res.Message = StateUnsupportedContent, MsgUnsupportedContent
	case errors.Is(err, ErrInvalidPayload):
		res.State, res.Message = StateBadRequest, MsgInvalidPayload
	default:
		res.State, res.Message = StateBadRequest, MsgUnrecognizedType
	}
	d.log.Debug("dispatch.rejected", zap.String("state", res.State.String()), zap.Error(err))
	return res
}

// Lookup parses uniqueID and reads the stored contribution. Identifier
// validation happens here so the pipeline only ever sees well-formed keys.
func (d *Dispatcher) Lookup(ctx context.Context, uniqueID string) (Result, error) {
	if uniqueID == "" {
		return Result{State: StateBadRequest, Message: MsgEmptyIdentifier}, nil
	}
	id, err := uuid.Parse(uniqueID)
	if err != nil {
		d.log.Warn("dispatch.invalid_unique_id", zap.String("unique_id", uniqueID), zap.Error(err))
		return Result{State: StateBadRequest, Message: "Invalid uniqueId provided - " + uniqueID}, nil
	}

	c, ok := d.pipeline.Retrieve(ctx, id)
	if !ok {
		d.log.Warn("dispatch.not_found", zap.String("unique_id", uniqueID))
		return Result{State: StateNotFound}, nil
	}
	payload, err := EncodePayload(c)
	if err != nil {
		return Result{}, fmt.Errorf("encode %s: %w", c.MarketDataType(), err)
	}
	return Result{State: StateFound, Type: c.MarketDataType(), Payload: payload}, nil
}
