package handlers

import (
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/omarstateECS/ECS-Mobisales-sub001/middleware"
	"github.com/omarstateECS/ECS-Mobisales-sub001/models"
	"github.com/omarstateECS/ECS-Mobisales-sub001/pkg/apperr"
)

type loginReq struct {
	Phone      string         `json:"phone" validate:"required"`
	Password   string         `json:"password" validate:"required"`
	DeviceID   string         `json:"deviceId"`
	DeviceInfo datatypes.JSON `json:"deviceInfo"`
}

type loginData struct {
	Token         string             `json:"token"`
	Salesman      *models.Salesman   `json:"salesman"`
	Authorities   []models.Authority `json:"authorities"`
	LastJourneyID int64              `json:"lastJourneyId"`
}

type loginResp struct {
	Success bool      `json:"success"`
	Data    loginData `json:"data"`
}

// Login authenticates a salesman by phone and password. The first device to
// log in claims the account: an empty registered deviceId is bound to the
// submitted one, and every later login must match it.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := h.decodeBody(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	var sm models.Salesman
	if err := h.DB.Where("phone = ?", req.Phone).First(&sm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.respondError(w, r, apperr.New(apperr.Unauthorized, "invalid credentials"))
			return
		}
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query salesman"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(sm.PasswordHash), []byte(req.Password)); err != nil {
		h.respondError(w, r, apperr.New(apperr.Unauthorized, "invalid credentials"))
		return
	}
	if sm.Status != models.SalesmanActive {
		h.respondError(w, r, apperr.New(apperr.Validation, "account is not active"))
		return
	}

	if req.DeviceID != "" {
		switch {
		case sm.DeviceID == "":
			updates := map[string]interface{}{"device_id": req.DeviceID}
			if len(req.DeviceInfo) > 0 {
				updates["device_info"] = req.DeviceInfo
			}
			if err := h.DB.Model(&models.Salesman{}).
				Where("sales_id = ?", sm.SalesID).Updates(updates).Error; err != nil {
				h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "register device"))
				return
			}
			sm.DeviceID = req.DeviceID
		case sm.DeviceID != req.DeviceID:
			h.respondError(w, r, apperr.New(apperr.Unauthorized, "device not authorized for this account"))
			return
		}
	}

	var authorities []models.Authority
	if err := h.DB.
		Joins("JOIN salesman_authorities ON salesman_authorities.authority_id = authorities.authority_id").
		Where("salesman_authorities.sales_id = ?", sm.SalesID).
		Find(&authorities).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query authorities"))
		return
	}

	var lastJourneyID *int64
	if err := h.DB.Model(&models.Journey{}).
		Select("MAX(journey_id)").Where("sales_id = ?", sm.SalesID).
		Scan(&lastJourneyID).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query last journey"))
		return
	}

	sm.PasswordHash = ""
	out := loginResp{Success: true, Data: loginData{
		Token:       middleware.GenerateSessionToken(sm.SalesID),
		Salesman:    &sm,
		Authorities: authorities,
	}}
	if lastJourneyID != nil {
		out.Data.LastJourneyID = *lastJourneyID
	}
	h.respondJSON(w, http.StatusOK, out)
}
