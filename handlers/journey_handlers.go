package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/omarstateECS/ECS-Mobisales-sub001/models"
	"github.com/omarstateECS/ECS-Mobisales-sub001/pkg/apperr"
	"github.com/omarstateECS/ECS-Mobisales-sub001/services"
)

func (h *Handler) ListJourneys(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := parsePagination(r)
	q := h.DB.Model(&models.Journey{})
	if sales := r.URL.Query().Get("salesId"); sales != "" {
		q = q.Where("sales_id = ?", sales)
	}
	if r.URL.Query().Get("open") == "true" {
		q = q.Where("end_journey IS NULL")
	}
	var total int64
	q.Count(&total)

	var journeys []models.Journey
	if err := q.Order("sales_id ASC, journey_id DESC").Limit(limit).Offset(offset).Find(&journeys).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query journeys"))
		return
	}
	h.respondJSON(w, http.StatusOK, listResponse(total, page, limit, journeys))
}

// GetJourney looks up by the composite key; journeyId alone is ambiguous
// because the counter restarts per salesman.
func (h *Handler) GetJourney(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	salesID, err := pathID(vars, "salesId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	journeyID, err := pathID(vars, "journeyId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var j models.Journey
	if err := h.DB.First(&j, "journey_id = ? AND sales_id = ?", journeyID, salesID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.respondError(w, r, apperr.New(apperr.NotFound, "journey (%d,%d) not found", journeyID, salesID))
			return
		}
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query journey"))
		return
	}

	var visits []models.Visit
	if err := h.DB.Where("journey_id = ? AND sales_id = ?", journeyID, salesID).
		Order("visit_id ASC").Find(&visits).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query journey visits"))
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"journey": j,
		"visits":  visits,
	})
}

func (h *Handler) CreateJourney(w http.ResponseWriter, r *http.Request) {
	var req services.JourneyInput
	if err := h.decodeBody(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	j, err := h.Journeys.Create(&req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, j)
}
