package handlers

import (
	"net/http"

	"gorm.io/gorm/clause"

	"github.com/omarstateECS/ECS-Mobisales-sub001/models"
	"github.com/omarstateECS/ECS-Mobisales-sub001/pkg/apperr"
)

// Reference-data endpoints. These tables are small, so no pagination.

func (h *Handler) ListRegions(w http.ResponseWriter, r *http.Request) {
	var regions []models.Region
	if err := h.DB.Order("region_id ASC").Find(&regions).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query regions"))
		return
	}
	h.respondJSON(w, http.StatusOK, regions)
}

func (h *Handler) CreateRegion(w http.ResponseWriter, r *http.Request) {
	var region models.Region
	if err := h.decodeBody(r, &region); err != nil {
		h.respondError(w, r, err)
		return
	}
	if region.Name == "" {
		h.respondError(w, r, apperr.New(apperr.Validation, "region name is required"))
		return
	}
	if err := h.DB.Create(&region).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "create region"))
		return
	}
	h.respondJSON(w, http.StatusCreated, region)
}

func (h *Handler) ListIndustries(w http.ResponseWriter, r *http.Request) {
	var industries []models.Industry
	if err := h.DB.Order("industry_id ASC").Find(&industries).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query industries"))
		return
	}
	h.respondJSON(w, http.StatusOK, industries)
}

func (h *Handler) CreateIndustry(w http.ResponseWriter, r *http.Request) {
	var industry models.Industry
	if err := h.decodeBody(r, &industry); err != nil {
		h.respondError(w, r, err)
		return
	}
	if industry.Name == "" {
		h.respondError(w, r, apperr.New(apperr.Validation, "industry name is required"))
		return
	}
	if err := h.DB.Create(&industry).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "create industry"))
		return
	}
	h.respondJSON(w, http.StatusCreated, industry)
}

func (h *Handler) ListAuthorities(w http.ResponseWriter, r *http.Request) {
	var authorities []models.Authority
	if err := h.DB.Order("authority_id ASC").Find(&authorities).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query authorities"))
		return
	}
	h.respondJSON(w, http.StatusOK, authorities)
}

func (h *Handler) CreateAuthority(w http.ResponseWriter, r *http.Request) {
	var authority models.Authority
	if err := h.decodeBody(r, &authority); err != nil {
		h.respondError(w, r, err)
		return
	}
	if authority.Name == "" {
		h.respondError(w, r, apperr.New(apperr.Validation, "authority name is required"))
		return
	}
	if err := h.DB.Create(&authority).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "create authority"))
		return
	}
	h.respondJSON(w, http.StatusCreated, authority)
}

func (h *Handler) listReasonsByKind(w http.ResponseWriter, r *http.Request, kind string) {
	q := h.DB.Model(&models.Reason{})
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	var reasons []models.Reason
	if err := q.Order("reason_id ASC").Find(&reasons).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query reasons"))
		return
	}
	h.respondJSON(w, http.StatusOK, reasons)
}

func (h *Handler) ListReasons(w http.ResponseWriter, r *http.Request) {
	h.listReasonsByKind(w, r, r.URL.Query().Get("kind"))
}

func (h *Handler) ListReturnReasons(w http.ResponseWriter, r *http.Request) {
	h.listReasonsByKind(w, r, models.ReasonReturn)
}

func (h *Handler) ListCancelReasons(w http.ResponseWriter, r *http.Request) {
	h.listReasonsByKind(w, r, models.ReasonCancel)
}

func (h *Handler) CreateReason(w http.ResponseWriter, r *http.Request) {
	var reason models.Reason
	if err := h.decodeBody(r, &reason); err != nil {
		h.respondError(w, r, err)
		return
	}
	switch reason.Kind {
	case models.ReasonReturn, models.ReasonCancel, models.ReasonVisitCancel:
	default:
		h.respondError(w, r, apperr.New(apperr.Validation, "unknown reason kind %q", reason.Kind))
		return
	}
	if reason.Description == "" {
		h.respondError(w, r, apperr.New(apperr.Validation, "reason description is required"))
		return
	}
	if err := h.DB.Create(&reason).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "create reason"))
		return
	}
	h.respondJSON(w, http.StatusCreated, reason)
}

func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	var settings []models.Setting
	if err := h.DB.Order("name ASC").Find(&settings).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query settings"))
		return
	}
	h.respondJSON(w, http.StatusOK, settings)
}

// UpsertSetting writes one named setting, inserting or replacing by name.
func (h *Handler) UpsertSetting(w http.ResponseWriter, r *http.Request) {
	var setting models.Setting
	if err := h.decodeBody(r, &setting); err != nil {
		h.respondError(w, r, err)
		return
	}
	if setting.Name == "" {
		h.respondError(w, r, apperr.New(apperr.Validation, "setting name is required"))
		return
	}
	err := h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "text_value"}),
	}).Create(&setting).Error
	if err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "upsert setting"))
		return
	}
	h.respondJSON(w, http.StatusOK, setting)
}
