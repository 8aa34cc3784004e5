package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Mobile clients authenticate with an opaque session token issued at login:
// session_<salesId>_<epochMs>, valid for 24 hours. The format is a wire
// contract with deployed devices, so it stays as-is.

const sessionTTL = 24 * time.Hour

// unexported type prevents collisions in context
type ctxKey int

const salesIDKey ctxKey = iota

// GenerateSessionToken issues a fresh token for a salesman.
func GenerateSessionToken(salesID int64) string {
	return fmt.Sprintf("session_%d_%d", salesID, time.Now().UnixMilli())
}

// ParseSessionToken validates the token shape and expiry and returns the
// embedded sales id.
func ParseSessionToken(token string) (int64, error) {
	parts := strings.Split(token, "_")
	if len(parts) != 3 || parts[0] != "session" {
		return 0, fmt.Errorf("malformed session token")
	}
	salesID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed sales id in token")
	}
	issuedMs, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed issue time in token")
	}
	issued := time.UnixMilli(issuedMs)
	if time.Since(issued) > sessionTTL {
		return 0, fmt.Errorf("session expired")
	}
	return salesID, nil
}

// unauthorized replies with the same JSON error envelope the handlers use.
func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// SessionMiddleware validates the bearer token and stashes the sales id in ctx.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			unauthorized(w, "missing Authorization header")
			return
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			unauthorized(w, "invalid auth header")
			return
		}
		salesID, err := ParseSessionToken(parts[1])
		if err != nil {
			unauthorized(w, "invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), salesIDKey, salesID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSalesID returns the authenticated sales id, 0 when unauthenticated.
func GetSalesID(r *http.Request) int64 {
	if v, ok := r.Context().Value(salesIDKey).(int64); ok {
		return v
	}
	return 0
}
