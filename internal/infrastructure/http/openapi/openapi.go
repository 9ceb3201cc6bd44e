// Package openapi binds the gateway's HTTP operations to a chi router and
// decodes their parameters with the oapi-codegen runtime.
package openapi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

const GatewayPath = "/api/gateway"

// ValidationOutcome is the body of a 201 response.
type ValidationOutcome struct {
	Id           string `json:"id"`
	IsSuccessful bool   `json:"isSuccessful"`
}

// ErrorEnvelope is the JSON error body used outside the gateway contract.
type ErrorEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type ProcessContributionParams struct {
	XIdempotencyKey *string
}

type RetrieveContributionParams struct {
	UniqueId *string
}

type ServerInterface interface {
	// (POST /api/gateway)
	ProcessContribution(w http.ResponseWriter, r *http.Request, params ProcessContributionParams)
	// (GET /api/gateway)
	RetrieveContribution(w http.ResponseWriter, r *http.Request, params RetrieveContributionParams)
}

type MiddlewareFunc func(http.Handler) http.Handler

type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

type ParamError struct {
	ParamName string
	Err       error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err)
}

func (e *ParamError) Unwrap() error { return e.Err }

func (siw *ServerInterfaceWrapper) ProcessContribution(w http.ResponseWriter, r *http.Request) {
	var params ProcessContributionParams

	if valueList, found := r.Header[http.CanonicalHeaderKey("X-Idempotency-Key")]; found {
		if n := len(valueList); n != 1 {
			siw.ErrorHandlerFunc(w, r, &ParamError{ParamName: "X-Idempotency-Key", Err: fmt.Errorf("expected one value, got %d", n)})
			return
		}
		var key string
		err := runtime.BindStyledParameterWithLocation("simple", false, "X-Idempotency-Key", runtime.ParamLocationHeader, valueList[0], &key)
		if err != nil {
			siw.ErrorHandlerFunc(w, r, &ParamError{ParamName: "X-Idempotency-Key", Err: err})
			return
		}
		params.XIdempotencyKey = &key
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ProcessContribution(w, r, params)
	})
}

func (siw *ServerInterfaceWrapper) RetrieveContribution(w http.ResponseWriter, r *http.Request) {
	var params RetrieveContributionParams

	if err := runtime.BindQueryParameter("form", true, false, "uniqueId", r.URL.Query(), &params.UniqueId); err != nil {
		siw.ErrorHandlerFunc(w, r, &ParamError{ParamName: "uniqueId", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.RetrieveContribution(w, r, params)
	})
}

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, fn http.HandlerFunc) {
	var handler http.Handler = fn
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions registers si's operations on options.BaseRouter (or a
// fresh router) and returns it.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+GatewayPath, wrapper.ProcessContribution)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+GatewayPath, wrapper.RetrieveContribution)
	})
	return r
}
