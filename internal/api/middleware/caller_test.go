package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lexmitra/lexmitra/backend/internal/api/middleware"
)

func TestCallerFromBearerToken(t *testing.T) {
	var got string
	h := middleware.CallerExtractor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = middleware.GetCallerID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", nil)
	req.Header.Set("Authorization", "Bearer adv-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got != "adv-42" {
		t.Fatalf("caller id = %q", got)
	}
}

func TestCallerFromHeader(t *testing.T) {
	var got string
	h := middleware.CallerExtractor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = middleware.GetCallerID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", nil)
	req.Header.Set("X-Caller-Id", "adv-7")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got != "adv-7" {
		t.Fatalf("caller id = %q", got)
	}
}

func TestMissingCallerRejected(t *testing.T) {
	called := false
	h := middleware.CallerExtractor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/query", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if called {
		t.Fatal("handler must not run without a caller identity")
	}
}
