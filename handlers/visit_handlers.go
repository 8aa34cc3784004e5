package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/omarstateECS/ECS-Mobisales-sub001/models"
	"github.com/omarstateECS/ECS-Mobisales-sub001/pkg/apperr"
)

func (h *Handler) ListVisits(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := parsePagination(r)
	q := h.DB.Model(&models.Visit{})
	if sales := r.URL.Query().Get("salesId"); sales != "" {
		q = q.Where("sales_id = ?", sales)
	}
	if journey := r.URL.Query().Get("journeyId"); journey != "" {
		q = q.Where("journey_id = ?", journey)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	q.Count(&total)

	var visits []models.Visit
	if err := q.Order("sales_id ASC, journey_id ASC, visit_id ASC").
		Limit(limit).Offset(offset).Find(&visits).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query visits"))
		return
	}
	h.respondJSON(w, http.StatusOK, listResponse(total, page, limit, visits))
}

func (h *Handler) GetVisit(w http.ResponseWriter, r *http.Request) {
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
	visitID, err := pathID(vars, "visitId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var v models.Visit
	err = h.DB.First(&v, "visit_id = ? AND sales_id = ? AND journey_id = ?",
		visitID, salesID, journeyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.respondError(w, r, apperr.New(apperr.NotFound, "visit (%d,%d,%d) not found", visitID, salesID, journeyID))
			return
		}
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query visit"))
		return
	}
	h.respondJSON(w, http.StatusOK, v)
}

// CreateVisit plans a WAIT visit for an open journey. The visit counter is
// per (salesId, journeyId).
func (h *Handler) CreateVisit(w http.ResponseWriter, r *http.Request) {
	var v models.Visit
	if err := h.decodeBody(r, &v); err != nil {
		h.respondError(w, r, err)
		return
	}
	if v.SalesID == 0 || v.JourneyID == 0 || v.CustID == 0 {
		h.respondError(w, r, apperr.New(apperr.Validation, "salesId, journeyId and custId are required"))
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var j models.Journey
		if err := tx.First(&j, "journey_id = ? AND sales_id = ?", v.JourneyID, v.SalesID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.NotFound, "journey (%d,%d) not found", v.JourneyID, v.SalesID)
			}
			return apperr.Wrap(apperr.Internal, err, "query journey")
		}
		if !j.Open() {
			return apperr.New(apperr.Conflict, "journey (%d,%d) is closed", v.JourneyID, v.SalesID)
		}
		if v.VisitID == 0 {
			var maxID int64
			if err := tx.Model(&models.Visit{}).
				Where("sales_id = ? AND journey_id = ?", v.SalesID, v.JourneyID).
				Select("COALESCE(MAX(visit_id), 0)").Scan(&maxID).Error; err != nil {
				return apperr.Wrap(apperr.Internal, err, "query max visit id")
			}
			v.VisitID = maxID + 1
		}
		v.Status = models.VisitWait
		if err := tx.Create(&v).Error; err != nil {
			return apperr.Wrap(apperr.Internal, err, "create visit")
		}
		return nil
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, v)
}
