package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/maajod/maajod-backend/pkg/config"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{Secret: "test-secret", Issuer: "maajod", ExpirationMinutes: 60},
	}
	return NewRouter(Dependencies{Config: cfg})
}

func TestHealthEndpointsAnswerLive(t *testing.T) {
	router := newTestRouter(t)

	// Both the bare path and the explicit liveness path answer without auth.
	for _, path := range []string{"/health", "/health/live"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, rec.Code)
		}

		var body struct {
			Data struct {
				Status string `json:"status"`
			} `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("GET %s: decode body: %v", path, err)
		}
		if body.Data.Status != "live" {
			t.Fatalf("GET %s: unexpected body %s", path, rec.Body.String())
		}
	}
}

func TestProtectedRoutesRejectAnonymousRequests(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stores", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous request, got %d", rec.Code)
	}
}
