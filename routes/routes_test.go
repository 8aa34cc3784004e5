package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/omarstateECS/ECS-Mobisales-sub001/handlers"
)

func testRouter(t *testing.T) *mux.Router {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	r, ok := RegisterRoutes(handlers.New(nil, log)).(*mux.Router)
	if !ok {
		t.Fatal("RegisterRoutes must return the mux router")
	}
	return r
}

// Route matching only; nothing here reaches a handler or the database.
func TestRouteTable(t *testing.T) {
	router := testRouter(t)
	tests := []struct {
		name   string
		method string
		path   string
		idVar  string
	}{
		{"device load path", http.MethodGet, "/api/salesmen/load/7", "7"},
		{"resource load path", http.MethodGet, "/api/salesmen/7/load", "7"},
		{"checkin", http.MethodPost, "/api/salesmen/7/checkin", "7"},
		{"create authority", http.MethodPost, "/api/authorities", ""},
		{"login", http.MethodPost, "/api/auth/login", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.path, nil)
			var m mux.RouteMatch
			if !router.Match(r, &m) || m.MatchErr != nil {
				t.Fatalf("%s %s did not match: %v", tt.method, tt.path, m.MatchErr)
			}
			if tt.idVar != "" && m.Vars["id"] != tt.idVar {
				t.Errorf("id var = %q, want %q", m.Vars["id"], tt.idVar)
			}
		})
	}
}
