package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/omarstateECS/ECS-Mobisales-sub001/pkg/apperr"
	"github.com/omarstateECS/ECS-Mobisales-sub001/services"
)

// Handler carries the shared dependencies for every HTTP handler. Everything
// is injected from main; there are no package-level connections.
type Handler struct {
	DB       *gorm.DB
	Log      *logrus.Logger
	Validate *validator.Validate

	CheckIns *services.CheckInService
	Loads    *services.LoadService
	Invoices *services.InvoiceService
	Journeys *services.JourneyService
	Fillups  *services.FillupService
}

func New(db *gorm.DB, log *logrus.Logger) *Handler {
	invoices := services.NewInvoiceService(db, log)
	return &Handler{
		DB:       db,
		Log:      log,
		Validate: validator.New(),
		CheckIns: services.NewCheckInService(db, log, invoices),
		Loads:    services.NewLoadService(db, log),
		Invoices: invoices,
		Journeys: services.NewJourneyService(db, log),
		Fillups:  services.NewFillupService(db, log),
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// respondError is the single place errors become HTTP responses.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		h.Log.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Error("request failed")
	}
	h.respondJSON(w, status, map[string]string{"error": apperr.Public(err)})
}

// decodeBody parses JSON and runs struct validation, mapping both failure
// modes to a Validation error.
func (h *Handler) decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.Validation, err, "invalid JSON body")
	}
	if err := h.Validate.Struct(v); err != nil {
		return apperr.Wrap(apperr.Validation, err, "request validation failed")
	}
	return nil
}

// pathID parses a numeric path parameter.
func pathID(vars map[string]string, name string) (int64, error) {
	id, err := strconv.ParseInt(vars[name], 10, 64)
	if err != nil {
		return 0, apperr.New(apperr.Validation, "invalid %s", name)
	}
	return id, nil
}

// parsePagination reads ?page= and ?limit= with the usual defaults.
func parsePagination(r *http.Request) (page, limit, offset int) {
	page = 1
	limit = 100
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 500 {
		limit = l
	}
	offset = (page - 1) * limit
	return page, limit, offset
}

// listResponse is the standard paginated list envelope.
func listResponse(total int64, page, limit int, data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"total": total,
		"page":  page,
		"limit": limit,
		"data":  data,
	}
}
