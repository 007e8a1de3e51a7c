package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

// CallerIDKey is the context key for the authenticated caller id.
const CallerIDKey contextKey = "caller_id"

// CallerExtractor extracts the caller identity from the request.
// It checks the Authorization bearer token, then the X-Caller-Id
// header. Requests without an identity are rejected; every pipeline
// operation is caller-scoped (quota, history, audit).
func CallerExtractor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callerID := ""

		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			callerID = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		}
		if callerID == "" {
			callerID = strings.TrimSpace(r.Header.Get("X-Caller-Id"))
		}

		if callerID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"missing caller identity"}`))
			return
		}

		ctx := context.WithValue(r.Context(), CallerIDKey, callerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCallerID retrieves the caller id from the request context.
func GetCallerID(ctx context.Context) string {
	if v, ok := ctx.Value(CallerIDKey).(string); ok {
		return v
	}
	return ""
}
