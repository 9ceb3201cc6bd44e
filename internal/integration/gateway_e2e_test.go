package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"marketdata-gateway/internal/bootstrap"
	"marketdata-gateway/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	readyTimeout       = 5 * time.Second
	readyPollInterval  = 50 * time.Millisecond
	requestContentType = "application/json"
	idempotencyHeader  = "X-Idempotency-Key"
	validatorToken     = "e2e-token"
)

type validationOutcome struct {
	ID           string `json:"id"`
	IsSuccessful bool   `json:"isSuccessful"`
}

type fxQuote struct {
	Currency string  `json:"currency"`
	Bid      float64 `json:"bid"`
	Ask      float64 `json:"ask"`
}

// fakeValidationService accepts a quote only when bid <= ask. While down is
// set it answers 503.
func fakeValidationService(t *testing.T, calls *atomic.Int32, down *atomic.Bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /validate", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if down != nil && down.Load() {
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+validatorToken {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var env struct {
			MarketDataType string  `json:"marketDataType"`
			FxQuote        fxQuote `json:"fxQuote"`
		}
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(validationOutcome{
			ID:           uuid.NewString(),
			IsSuccessful: env.FxQuote.Bid <= env.FxQuote.Ask,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func startGateway(t *testing.T, validatorURL string) string {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := config.Config{
		ServiceName:        "marketdata-gateway-e2e",
		StoreShards:        8,
		Validator:          "http",
		ValidatorURL:       validatorURL,
		ValidatorToken:     validatorToken,
		RequestTimeout:     2 * time.Second,
		IdempotencyBackend: "redis",
		RedisAddr:          mr.Addr(),
		RedisTTL:           time.Minute,
	}
	h, cleanup, err := bootstrap.BuildAPI(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("bootstrap api: %v", err)
	}
	t.Cleanup(cleanup)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestE2E_RemoteValidatorRoundTrip(t *testing.T) {
	var calls atomic.Int32
	validator := fakeValidationService(t, &calls, nil)
	baseURL := startGateway(t, validator.URL)

	waitForReady(t, baseURL)

	out := postContribution(t, baseURL, `{"marketDataType":"FxQuote","fxQuote":{"currency":"jpy","bid":151.25,"ask":151.30}}`, "e2e-1")
	if !out.IsSuccessful {
		t.Fatalf("expected successful validation")
	}
	q := getContribution(t, baseURL, out.ID)
	if q.Currency != "JPY" || q.Bid != 151.25 || q.Ask != 151.30 {
		t.Fatalf("unexpected stored quote: %+v", q)
	}

	rejected := postContribution(t, baseURL, `{"marketDataType":"FxQuote","fxQuote":{"currency":"USD","bid":2,"ask":1}}`, "e2e-2")
	if rejected.IsSuccessful {
		t.Fatalf("expected failed validation for crossed quote")
	}
	resp, err := http.Get(baseURL + "/api/gateway?uniqueId=" + rejected.ID)
	if err != nil {
		t.Fatalf("GET /api/gateway failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("rejected quote should not be stored: got %d", resp.StatusCode)
	}

	if got := calls.Load(); got != 2 {
		t.Fatalf("unexpected validator calls: got %d, want 2", got)
	}
}

func TestE2E_DuplicateIdempotencyKey(t *testing.T) {
	var calls atomic.Int32
	validator := fakeValidationService(t, &calls, nil)
	baseURL := startGateway(t, validator.URL)

	body := `{"marketDataType":"FxQuote","fxQuote":{"currency":"EUR","bid":1.08,"ask":1.09}}`
	first := postContribution(t, baseURL, body, "dup")
	again := postContribution(t, baseURL, body, "dup")

	if again != first {
		t.Fatalf("duplicate key should replay the first outcome: got %+v, want %+v", again, first)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("duplicate should not reach the validator: got %d calls", got)
	}
}

func TestE2E_IdempotencyKeySurvivesValidatorOutage(t *testing.T) {
	var calls atomic.Int32
	var down atomic.Bool
	down.Store(true)
	validator := fakeValidationService(t, &calls, &down)
	baseURL := startGateway(t, validator.URL)

	body := `{"marketDataType":"FxQuote","fxQuote":{"currency":"NZD","bid":0.61,"ask":0.62}}`
	req, _ := http.NewRequest(http.MethodPost, baseURL+"/api/gateway", strings.NewReader(body))
	req.Header.Set("Content-Type", requestContentType)
	req.Header.Set(idempotencyHeader, "retry")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /api/gateway failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected status during outage: got %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}

	down.Store(false)
	out := postContribution(t, baseURL, body, "retry")
	if !out.IsSuccessful {
		t.Fatalf("expected successful validation after recovery")
	}
	q := getContribution(t, baseURL, out.ID)
	if q.Currency != "NZD" {
		t.Fatalf("unexpected stored quote: %+v", q)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("unexpected validator calls: got %d, want 2", got)
	}
}

func TestE2E_ValidatorDown(t *testing.T) {
	var calls atomic.Int32
	validator := fakeValidationService(t, &calls, nil)
	baseURL := startGateway(t, validator.URL)
	validator.Close()

	resp, err := http.Get(baseURL + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("unexpected readiness: got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodPost, baseURL+"/api/gateway",
		strings.NewReader(`{"marketDataType":"FxQuote","fxQuote":{"currency":"EUR","bid":1,"ask":1}}`))
	req.Header.Set("Content-Type", requestContentType)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /api/gateway failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected status with validator down: got %d", resp.StatusCode)
	}
}

func waitForReady(t *testing.T, baseURL string) {
	t.Helper()
	deadline := time.Now().Add(readyTimeout)
	client := &http.Client{Timeout: 2 * time.Second}
	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/readyz")
		if err == nil && resp.StatusCode == http.StatusOK {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(readyPollInterval)
	}
	t.Fatalf("API did not become ready within %s", readyTimeout)
}

func postContribution(t *testing.T, baseURL, body, idem string) validationOutcome {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/gateway", bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", requestContentType)
	req.Header.Set(idempotencyHeader, idem)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("POST /api/gateway failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status for POST /api/gateway: got %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	var out validationOutcome
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, err := uuid.Parse(out.ID); err != nil {
		t.Fatalf("response id is not a uuid: %q", out.ID)
	}
	return out
}

func getContribution(t *testing.T, baseURL, id string) fxQuote {
	t.Helper()
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(baseURL + "/api/gateway?uniqueId=" + id)
	if err != nil {
		t.Fatalf("GET /api/gateway failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status for GET /api/gateway: got %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var out fxQuote
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode quote: %v", err)
	}
	return out
}
