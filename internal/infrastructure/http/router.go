package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"marketdata-gateway/internal/infrastructure/http/openapi"
	"marketdata-gateway/internal/infrastructure/logx"
	"marketdata-gateway/internal/infrastructure/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Use(correlate, observe, recoverPanics)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if s.ping != nil {
			if err := s.ping(r.Context()); err != nil {
				logx.FromContext(r.Context()).Warn("readyz.failed", zap.Error(err))
				writeError(w, http.StatusServiceUnavailable, "validator not ready")
				return
			}
		}
		_, _ = w.Write([]byte("READY"))
	})

	r.Handle("/metrics", promhttp.Handler())

	// Parameter binding failures (e.g. a repeated uniqueId) are caller errors.
	openapi.HandlerWithOptions(s, openapi.ChiServerOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			logx.FromContext(r.Context()).Warn("http.bind_failed", zap.Error(err))
			badRequest(w, err.Error())
		},
	})
	return r
}

const (
	headerRequestID = "X-Request-ID"
	headerTraceID   = "X-Trace-Id"
)

// correlate carries caller-supplied request and trace ids through to the
// logger, minting uuids for the ones that are missing.
func correlate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		for _, h := range []struct {
			name string
			with func(context.Context, string) context.Context
		}{
			{headerRequestID, logx.WithRequestID},
			{headerTraceID, logx.WithTraceID},
		} {
			id := r.Header.Get(h.name)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(h.name, id)
			ctx = h.with(ctx, id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logx.FromContext(r.Context()).Error("http.panic", zap.Any("panic", rec), zap.String("path", r.URL.Path))
			internalError(w)
		}()
		next.ServeHTTP(w, r)
	})
}

// observe logs every request and feeds the http collectors. Routes are
// labelled by chi pattern so ids in the query never reach a label.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		metrics.ObserveDuration(metrics.HTTPRequestDuration, start, r.Method, route)

		logx.FromContext(r.Context()).Info("http_request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
