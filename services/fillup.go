package services

import (
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/omarstateECS/ECS-Mobisales-sub001/models"
	"github.com/omarstateECS/ECS-Mobisales-sub001/pkg/apperr"
)

type FillupService struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewFillupService(db *gorm.DB, log *logrus.Logger) *FillupService {
	return &FillupService{db: db, log: log}
}

type FillupItemInput struct {
	ProductID int64   `json:"productId" validate:"required"`
	Qty       float64 `json:"qty" validate:"required,gt=0"`
}

type FillupInput struct {
	SalesID   int64             `json:"salesId" validate:"required"`
	JourneyID int64             `json:"journeyId" validate:"required"`
	Items     []FillupItemInput `json:"items" validate:"required,min=1,dive"`
}

// Create records a vehicle load-up and draws the quantities down from central
// product stock. Stock may not go negative; the whole fillup is rejected when
// any product cannot cover its quantity.
func (s *FillupService) Create(in *FillupInput) (*models.Fillup, error) {
	var out models.Fillup
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, it := range in.Items {
			res := tx.Model(&models.Product{}).
				Where("product_id = ? AND stock >= ?", it.ProductID, it.Qty).
				UpdateColumn("stock", gorm.Expr("stock - ?", it.Qty))
			if res.Error != nil {
				return apperr.Wrap(apperr.Internal, res.Error, "decrement stock")
			}
			if res.RowsAffected == 0 {
				var p models.Product
				if err := tx.First(&p, "product_id = ?", it.ProductID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return apperr.New(apperr.NotFound, "product %d not found", it.ProductID)
					}
					return apperr.Wrap(apperr.Internal, err, "query product")
				}
				return apperr.New(apperr.Conflict,
					"insufficient stock for product %d: have %.2f, need %.2f", it.ProductID, p.Stock, it.Qty)
			}
		}

		out = models.Fillup{SalesID: in.SalesID, JourneyID: in.JourneyID}
		if err := tx.Omit("Items").Create(&out).Error; err != nil {
			return apperr.Wrap(apperr.Internal, err, "create fillup")
		}
		items := make([]models.FillupItem, len(in.Items))
		for i, it := range in.Items {
			items[i] = models.FillupItem{FillupID: out.FillupID, ProductID: it.ProductID, Qty: it.Qty}
		}
		if err := tx.Create(&items).Error; err != nil {
			return apperr.Wrap(apperr.Internal, err, "create fillup items")
		}
		out.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// fillupQuantities sums allocated quantities per product across every fillup
// of one salesman's journey.
func fillupQuantities(tx *gorm.DB, salesID, journeyID int64) (map[int64]float64, error) {
	type row struct {
		ProductID int64
		Qty       float64
	}
	var rows []row
	err := tx.Model(&models.FillupItem{}).
		Select("fillup_items.product_id AS product_id, SUM(fillup_items.qty) AS qty").
		Joins("JOIN fillups ON fillups.fillup_id = fillup_items.fillup_id").
		Where("fillups.sales_id = ? AND fillups.journey_id = ?", salesID, journeyID).
		Group("fillup_items.product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[int64]float64, len(rows))
	for _, r := range rows {
		out[r.ProductID] = r.Qty
	}
	return out, nil
}
