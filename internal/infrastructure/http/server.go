package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"marketdata-gateway/internal/application"
	"marketdata-gateway/internal/contract"
	infraconfig "marketdata-gateway/internal/infrastructure/config"
	"marketdata-gateway/internal/infrastructure/http/openapi"
	"marketdata-gateway/internal/infrastructure/logx"
	"marketdata-gateway/internal/infrastructure/metrics"

	"go.uber.org/zap"
)

var _ openapi.ServerInterface = (*Server)(nil)

const headerReplayed = "Idempotent-Replayed"

type Server struct {
	dispatcher *contract.Dispatcher
	idem       application.IdempotencyStore
	ping       func(ctx context.Context) error
}

func NewServer(d *contract.Dispatcher, idem application.IdempotencyStore) *Server {
	if idem == nil {
		idem = application.NoopIdempotency{}
	}
	return &Server{dispatcher: d, idem: idem}
}

// SetReadyCheck installs the probe behind /readyz.
func (s *Server) SetReadyCheck(fn func(ctx context.Context) error) { s.ping = fn }

func (s *Server) ProcessContribution(w http.ResponseWriter, r *http.Request, params openapi.ProcessContributionParams) {
	ctx := r.Context()
	log := logx.FromContext(ctx)

	var key string
	if params.XIdempotencyKey != nil {
		key = *params.XIdempotencyKey
	}
	if key != "" {
		ok, err := s.idem.TryReserve(ctx, key)
		if err != nil {
			log.Error("gateway.idempotency_failed", zap.Error(err))
			internalError(w)
			return
		}
		if !ok {
			s.replay(w, r, key)
			return
		}
		// Only an issued outcome keeps the key; anything else frees it for a retry.
		completed := false
		defer func() {
			if completed {
				return
			}
			if err := s.idem.Release(context.WithoutCancel(ctx), key); err != nil {
				log.Error("gateway.idempotency_release_failed", zap.String("key", key), zap.Error(err))
			}
		}()
		s.submit(w, r, func(outcome []byte) {
			completed = true
			if err := s.idem.Complete(ctx, key, outcome); err != nil {
				log.Error("gateway.idempotency_complete_failed", zap.String("key", key), zap.Error(err))
			}
		})
		return
	}
	s.submit(w, r, nil)
}

// submit runs the body through the dispatcher. onCreated sees the 201 body
// before it is written.
func (s *Server) submit(w http.ResponseWriter, r *http.Request, onCreated func(outcome []byte)) {
	ctx := r.Context()
	log := logx.FromContext(ctx)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, infraconfig.MaxRequestBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
			return
		}
		badRequest(w, "failed to read request body")
		return
	}

	res, err := s.dispatcher.Submit(ctx, r.Header.Get("Content-Type"), body)
	if err != nil {
		log.Error("gateway.process_failed", zap.Error(err))
		metrics.IncContribution(res.Type.String(), "error")
		internalError(w)
		return
	}

	switch res.State {
	case contract.StateCreated:
		result := "rejected"
		if res.Outcome.IsSuccessful {
			result = "stored"
		}
		metrics.IncContribution(res.Type.String(), result)
		outcome, err := json.Marshal(openapi.ValidationOutcome{
			Id:           res.Outcome.ID,
			IsSuccessful: res.Outcome.IsSuccessful,
		})
		if err != nil {
			log.Error("gateway.encode_failed", zap.Error(err))
			internalError(w)
			return
		}
		if onCreated != nil {
			onCreated(outcome)
		}
		// 201 is returned for rejected outcomes as well; callers inspect isSuccessful.
		writeRaw(w, http.StatusCreated, outcome)
	case contract.StateUnsupportedContent:
		http.Error(w, res.Message, http.StatusUnsupportedMediaType)
	default:
		log.Warn("gateway.bad_request", zap.String("message", res.Message))
		badRequest(w, res.Message)
	}
}

// replay answers a repeated key with the outcome recorded for it, or 409
// while the first submission is still running.
func (s *Server) replay(w http.ResponseWriter, r *http.Request, key string) {
	log := logx.FromContext(r.Context())
	outcome, err := s.idem.Recall(r.Context(), key)
	if err != nil {
		log.Error("gateway.idempotency_recall_failed", zap.String("key", key), zap.Error(err))
		internalError(w)
		return
	}
	if outcome == nil {
		writeError(w, http.StatusConflict, application.ErrConflict.Error()+": submission with this idempotency key is in progress")
		return
	}
	log.Info("gateway.replayed", zap.String("key", key))
	w.Header().Set(headerReplayed, "true")
	writeRaw(w, http.StatusCreated, outcome)
}

func (s *Server) RetrieveContribution(w http.ResponseWriter, r *http.Request, params openapi.RetrieveContributionParams) {
	var uniqueID string
	if params.UniqueId != nil {
		uniqueID = *params.UniqueId
	}

	res, err := s.dispatcher.Lookup(r.Context(), uniqueID)
	if err != nil {
		logx.FromContext(r.Context()).Error("gateway.retrieve_failed", zap.Error(err))
		internalError(w)
		return
	}

	switch res.State {
	case contract.StateFound:
		metrics.IncLookup("found")
		writeJSON(w, http.StatusOK, res.Payload)
	case contract.StateNotFound:
		metrics.IncLookup("not_found")
		notFound(w)
	default:
		badRequest(w, res.Message)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, status int, b []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, openapi.ErrorEnvelope{Code: status, Message: msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	http.Error(w, msg, http.StatusBadRequest)
}

func notFound(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

func internalError(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
