package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	token := GenerateSessionToken(1000000)
	salesID, err := ParseSessionToken(token)
	if err != nil {
		t.Fatalf("ParseSessionToken: %v", err)
	}
	if salesID != 1000000 {
		t.Errorf("salesID = %d, want 1000000", salesID)
	}
}

func TestParseSessionTokenRejects(t *testing.T) {
	expired := fmt.Sprintf("session_5_%d", time.Now().Add(-25*time.Hour).UnixMilli())
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"wrong prefix", "token_5_12345"},
		{"too few parts", "session_5"},
		{"too many parts", "session_5_123_456"},
		{"non numeric sales id", "session_abc_12345"},
		{"non numeric issue time", "session_5_abc"},
		{"expired", expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSessionToken(tt.token); err == nil {
				t.Errorf("ParseSessionToken(%q) should fail", tt.token)
			}
		})
	}
}

func TestParseSessionTokenJustUnderExpiry(t *testing.T) {
	token := fmt.Sprintf("session_7_%d", time.Now().Add(-23*time.Hour).UnixMilli())
	if _, err := ParseSessionToken(token); err != nil {
		t.Errorf("token inside the 24h window rejected: %v", err)
	}
}

func TestSessionMiddlewareRejectsWithJSONEnvelope(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler must not run without a valid token")
	})
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"bad token", "Bearer nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/salesmen", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			SessionMiddleware(next).ServeHTTP(w, r)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["error"] == "" {
				t.Error("body must carry an error message")
			}
		})
	}
}

func TestSessionMiddlewarePassesSalesID(t *testing.T) {
	var got int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetSalesID(r)
	})
	r := httptest.NewRequest(http.MethodGet, "/api/salesmen", nil)
	r.Header.Set("Authorization", "Bearer "+GenerateSessionToken(42))
	w := httptest.NewRecorder()
	SessionMiddleware(next).ServeHTTP(w, r)
	if got != 42 {
		t.Errorf("sales id in context = %d, want 42", got)
	}
}
