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

func (h *Handler) ListFillups(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := parsePagination(r)
	q := h.DB.Model(&models.Fillup{})
	if sales := r.URL.Query().Get("salesId"); sales != "" {
		q = q.Where("sales_id = ?", sales)
	}
	if journey := r.URL.Query().Get("journeyId"); journey != "" {
		q = q.Where("journey_id = ?", journey)
	}
	var total int64
	q.Count(&total)

	var fillups []models.Fillup
	if err := q.Preload("Items").Order("fillup_id DESC").Limit(limit).Offset(offset).Find(&fillups).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query fillups"))
		return
	}
	h.respondJSON(w, http.StatusOK, listResponse(total, page, limit, fillups))
}

func (h *Handler) GetFillup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var f models.Fillup
	if err := h.DB.Preload("Items").First(&f, "fillup_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.respondError(w, r, apperr.New(apperr.NotFound, "fillup %d not found", id))
			return
		}
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query fillup"))
		return
	}
	h.respondJSON(w, http.StatusOK, f)
}

func (h *Handler) CreateFillup(w http.ResponseWriter, r *http.Request) {
	var in services.FillupInput
	if err := h.decodeBody(r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}
	f, err := h.Fillups.Create(&in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, f)
}
