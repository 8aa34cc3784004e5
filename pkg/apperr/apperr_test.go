package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", New(Validation, "deviceId is required"), http.StatusBadRequest},
		{"not found", New(NotFound, "salesman %d not found", 7), http.StatusNotFound},
		{"unauthorized", New(Unauthorized, "device mismatch"), http.StatusUnauthorized},
		{"conflict", New(Conflict, "phone already registered"), http.StatusConflict},
		{"internal", New(Internal, "boom"), http.StatusInternalServerError},
		{"plain error", errors.New("plain"), http.StatusInternalServerError},
		{"wrapped keeps kind", fmt.Errorf("outer: %w", New(NotFound, "gone")), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.expected {
				t.Errorf("Status() = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestPublicMasksInternal(t *testing.T) {
	err := Wrap(Internal, errors.New("pq: connection refused"), "load failed")
	if got := Public(err); got != "internal server error" {
		t.Errorf("Public() leaked internal message: %q", got)
	}
	nf := New(NotFound, "customer 5 not found")
	if got := Public(nf); got != "customer 5 not found" {
		t.Errorf("Public() = %q", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := Wrap(Conflict, cause, "duplicate invoice")
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the wrapped cause")
	}
}
