package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/omarstateECS/ECS-Mobisales-sub001/models"
	"github.com/omarstateECS/ECS-Mobisales-sub001/pkg/apperr"
	"github.com/omarstateECS/ECS-Mobisales-sub001/services"
)

func (h *Handler) ListSalesmen(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := parsePagination(r)
	var total int64
	h.DB.Model(&models.Salesman{}).Count(&total)

	var salesmen []models.Salesman
	if err := h.DB.Order("sales_id ASC").Limit(limit).Offset(offset).Find(&salesmen).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query salesmen"))
		return
	}
	h.respondJSON(w, http.StatusOK, listResponse(total, page, limit, salesmen))
}

func (h *Handler) GetSalesman(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var sm models.Salesman
	if err := h.DB.First(&sm, "sales_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.respondError(w, r, apperr.New(apperr.NotFound, "salesman %d not found", id))
			return
		}
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query salesman"))
		return
	}
	h.respondJSON(w, http.StatusOK, sm)
}

type salesmanReq struct {
	SalesID  int64  `json:"salesId" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password"`
	Status   string `json:"status"`
	Address  string `json:"address"`
	RegionID *int64 `json:"regionId"`
}

func (h *Handler) CreateSalesman(w http.ResponseWriter, r *http.Request) {
	var req salesmanReq
	if err := h.decodeBody(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.Password == "" {
		h.respondError(w, r, apperr.New(apperr.Validation, "password is required"))
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "hash password"))
		return
	}
	status := req.Status
	if status == "" {
		status = models.SalesmanActive
	}
	sm := models.Salesman{
		SalesID:      req.SalesID,
		Name:         req.Name,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Status:       status,
		Available:    true,
		Address:      req.Address,
		RegionID:     req.RegionID,
	}
	if err := h.DB.Create(&sm).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			h.respondError(w, r, apperr.New(apperr.Conflict, "phone or sales id already registered"))
			return
		}
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "create salesman"))
		return
	}
	sm.PasswordHash = ""
	h.respondJSON(w, http.StatusCreated, sm)
}

func (h *Handler) UpdateSalesman(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var sm models.Salesman
	if err := h.DB.First(&sm, "sales_id = ?", id).Error; err != nil {
		h.respondError(w, r, apperr.New(apperr.NotFound, "salesman %d not found", id))
		return
	}

	var updates struct {
		Name     *string `json:"name"`
		Phone    *string `json:"phone"`
		Password *string `json:"password"`
		Status   *string `json:"status"`
		Address  *string `json:"address"`
		RegionID *int64  `json:"regionId"`
	}
	if err := h.decodeBody(r, &updates); err != nil {
		h.respondError(w, r, err)
		return
	}
	if updates.Name != nil {
		sm.Name = *updates.Name
	}
	if updates.Phone != nil {
		sm.Phone = *updates.Phone
	}
	if updates.Status != nil {
		sm.Status = *updates.Status
	}
	if updates.Address != nil {
		sm.Address = *updates.Address
	}
	if updates.RegionID != nil {
		sm.RegionID = updates.RegionID
	}
	if updates.Password != nil && *updates.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*updates.Password), bcrypt.DefaultCost)
		if err != nil {
			h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "hash password"))
			return
		}
		sm.PasswordHash = string(hash)
	}
	if err := h.DB.Save(&sm).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "update salesman"))
		return
	}
	sm.PasswordHash = ""
	h.respondJSON(w, http.StatusOK, sm)
}

// ResetSalesmanDevice clears the device binding so the next login can claim
// the account from a replacement phone.
func (h *Handler) ResetSalesmanDevice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	res := h.DB.Model(&models.Salesman{}).Where("sales_id = ?", id).
		Updates(map[string]interface{}{"device_id": "", "device_info": nil})
	if res.Error != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, res.Error, "reset device"))
		return
	}
	if res.RowsAffected == 0 {
		h.respondError(w, r, apperr.New(apperr.NotFound, "salesman %d not found", id))
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "device binding cleared"})
}

func (h *Handler) DeleteSalesman(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	res := h.DB.Delete(&models.Salesman{}, "sales_id = ?", id)
	if res.Error != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, res.Error, "delete salesman"))
		return
	}
	if res.RowsAffected == 0 {
		h.respondError(w, r, apperr.New(apperr.NotFound, "salesman %d not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LoadSalesman hands a device everything it needs to start the day.
func (h *Handler) LoadSalesman(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	payload, err := h.Loads.Load(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, payload)
}

// CheckInSalesman applies a device's day batch in one transaction.
func (h *Handler) CheckInSalesman(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req services.CheckInRequest
	if err := h.decodeBody(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.SalesmanID != id {
		h.respondError(w, r, apperr.New(apperr.Validation, "salesmanId does not match path"))
		return
	}
	summary, err := h.CheckIns.CheckIn(&req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, summary)
}
