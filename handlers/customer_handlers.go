package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/omarstateECS/ECS-Mobisales-sub001/models"
	"github.com/omarstateECS/ECS-Mobisales-sub001/pkg/apperr"
	"github.com/omarstateECS/ECS-Mobisales-sub001/utils"
)

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := parsePagination(r)
	q := h.DB.Model(&models.Customer{})
	if region := r.URL.Query().Get("regionId"); region != "" {
		q = q.Where("region_id = ?", region)
	}
	var total int64
	q.Count(&total)

	var customers []models.Customer
	if err := q.Order("cust_id ASC").Limit(limit).Offset(offset).Find(&customers).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query customers"))
		return
	}
	h.respondJSON(w, http.StatusOK, listResponse(total, page, limit, customers))
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var c models.Customer
	if err := h.DB.First(&c, "cust_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.respondError(w, r, apperr.New(apperr.NotFound, "customer %d not found", id))
			return
		}
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query customer"))
		return
	}
	h.respondJSON(w, http.StatusOK, c)
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var c models.Customer
	if err := h.decodeBody(r, &c); err != nil {
		h.respondError(w, r, err)
		return
	}
	if c.Name == "" {
		h.respondError(w, r, apperr.New(apperr.Validation, "customer name is required"))
		return
	}
	if err := utils.ValidateCoordinate(c.Latitude, c.Longitude); err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Validation, err, "invalid customer location"))
		return
	}
	c.IsActive = true
	if err := h.DB.Create(&c).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "create customer"))
		return
	}
	h.respondJSON(w, http.StatusCreated, c)
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var c models.Customer
	if err := h.DB.First(&c, "cust_id = ?", id).Error; err != nil {
		h.respondError(w, r, apperr.New(apperr.NotFound, "customer %d not found", id))
		return
	}
	if err := h.decodeBody(r, &c); err != nil {
		h.respondError(w, r, err)
		return
	}
	c.CustID = id
	if err := utils.ValidateCoordinate(c.Latitude, c.Longitude); err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Validation, err, "invalid customer location"))
		return
	}
	if err := h.DB.Save(&c).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "update customer"))
		return
	}
	h.respondJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	res := h.DB.Model(&models.Customer{}).Where("cust_id = ?", id).Update("is_active", false)
	if res.Error != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, res.Error, "deactivate customer"))
		return
	}
	if res.RowsAffected == 0 {
		h.respondError(w, r, apperr.New(apperr.NotFound, "customer %d not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
