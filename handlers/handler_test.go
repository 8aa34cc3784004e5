package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/omarstateECS/ECS-Mobisales-sub001/pkg/apperr"
)

func TestParsePagination(t *testing.T) {
	cases := []struct {
		name  string
		url   string
		page  int
		limit int
		off   int
	}{
		{"defaults", "/x", 1, 100, 0},
		{"page two", "/x?page=2&limit=50", 2, 50, 50},
		{"limit capped", "/x?limit=9999", 1, 100, 0},
		{"garbage ignored", "/x?page=abc&limit=-3", 1, 100, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tc.url, nil)
			page, limit, off := parsePagination(r)
			if page != tc.page || limit != tc.limit || off != tc.off {
				t.Errorf("got (%d,%d,%d), want (%d,%d,%d)", page, limit, off, tc.page, tc.limit, tc.off)
			}
		})
	}
}

func TestPathID(t *testing.T) {
	if _, err := pathID(map[string]string{"id": "x1"}, "id"); err == nil {
		t.Error("expected error for non-numeric id")
	}
	id, err := pathID(map[string]string{"id": "1000001"}, "id")
	if err != nil || id != 1000001 {
		t.Errorf("got (%d, %v)", id, err)
	}
}

func TestCreateAuthorityRejectsMissingName(t *testing.T) {
	h := &Handler{Log: logrus.New(), Validate: validator.New()}
	h.Log.SetOutput(io.Discard)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/authorities", strings.NewReader(`{"authorityId":9}`))
	h.CreateAuthority(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRespondErrorMasksInternals(t *testing.T) {
	h := &Handler{Log: logrus.New()}
	h.Log.SetOutput(io.Discard)

	cases := []struct {
		err     error
		status  int
		message string
	}{
		{apperr.New(apperr.NotFound, "salesman 7 not found"), http.StatusNotFound, "salesman 7 not found"},
		{apperr.New(apperr.Validation, "bad payload"), http.StatusBadRequest, "bad payload"},
		{apperr.New(apperr.Internal, "connection refused"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/x", nil)
		h.respondError(w, r, tc.err)
		if w.Code != tc.status {
			t.Errorf("status = %d, want %d", w.Code, tc.status)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["error"] != tc.message {
			t.Errorf("error = %q, want %q", body["error"], tc.message)
		}
	}
}
