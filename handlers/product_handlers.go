package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/omarstateECS/ECS-Mobisales-sub001/models"
	"github.com/omarstateECS/ECS-Mobisales-sub001/pkg/apperr"
)

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := parsePagination(r)
	q := h.DB.Model(&models.Product{})
	if r.URL.Query().Get("active") == "true" {
		q = q.Where("is_active = true")
	}
	var total int64
	q.Count(&total)

	var products []models.Product
	if err := q.Preload("Uoms").Order("product_id ASC").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query products"))
		return
	}
	h.respondJSON(w, http.StatusOK, listResponse(total, page, limit, products))
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var p models.Product
	if err := h.DB.Preload("Uoms").First(&p, "product_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.respondError(w, r, apperr.New(apperr.NotFound, "product %d not found", id))
			return
		}
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "query product"))
		return
	}
	h.respondJSON(w, http.StatusOK, p)
}

// CreateProduct inserts the product together with its unit rows. A base unit
// row (ratio 1/1) is added when the payload does not carry one.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var p models.Product
	if err := h.decodeBody(r, &p); err != nil {
		h.respondError(w, r, err)
		return
	}
	if p.Name == "" || p.BaseUom == 0 {
		h.respondError(w, r, apperr.New(apperr.Validation, "name and baseUom are required"))
		return
	}
	hasBase := false
	for i := range p.Uoms {
		p.Uoms[i].ProductID = p.ProductID
		if p.Uoms[i].UomID == p.BaseUom {
			hasBase = true
		}
	}
	if !hasBase {
		p.Uoms = append(p.Uoms, models.ProductUOM{
			UomID:       p.BaseUom,
			Name:        "EA",
			Numerator:   1,
			Denominator: 1,
		})
	}
	p.IsActive = true
	if err := h.DB.Create(&p).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "create product"))
		return
	}
	h.respondJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var p models.Product
	if err := h.DB.First(&p, "product_id = ?", id).Error; err != nil {
		h.respondError(w, r, apperr.New(apperr.NotFound, "product %d not found", id))
		return
	}
	var in models.Product
	if err := h.decodeBody(r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}
	in.ProductID = id
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Uoms").Save(&in).Error; err != nil {
			return err
		}
		if len(in.Uoms) == 0 {
			return nil
		}
		for i := range in.Uoms {
			in.Uoms[i].ProductID = id
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "uom_id"}},
			UpdateAll: true,
		}).Create(&in.Uoms).Error
	})
	if err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "update product"))
		return
	}
	h.respondJSON(w, http.StatusOK, in)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	res := h.DB.Model(&models.Product{}).Where("product_id = ?", id).Update("is_active", false)
	if res.Error != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, res.Error, "deactivate product"))
		return
	}
	if res.RowsAffected == 0 {
		h.respondError(w, r, apperr.New(apperr.NotFound, "product %d not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
