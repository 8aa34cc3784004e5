package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/omarstateECS/ECS-Mobisales-sub001/models"
	"github.com/omarstateECS/ECS-Mobisales-sub001/pkg/apperr"
)

// LoadService assembles the working set a device needs to start or resume a
// day in the field. Read-only.
type LoadService struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewLoadService(db *gorm.DB, log *logrus.Logger) *LoadService {
	return &LoadService{db: db, log: log}
}

// LoadProduct is a catalog row plus the quantity still on this salesman's
// vehicle (fillups minus invoiced) for the current journey.
type LoadProduct struct {
	models.Product
	RemainingQty float64 `json:"remainingQty"`
}

type LoadPayload struct {
	Salesman       *models.Salesman  `json:"salesman"`
	Journey        *models.Journey   `json:"journey,omitempty"`
	Visits         []models.Visit    `json:"visits"`
	Customers      []models.Customer `json:"customers"`
	Products       []LoadProduct     `json:"products"`
	Reasons        []models.Reason   `json:"reasons"`
	Industries     []models.Industry `json:"industries"`
	Settings       []models.Setting  `json:"settings"`
	NextVisitID    int64             `json:"nextVisitId"`
	StartIDInvoice string            `json:"startIdInvoice"`
}

// deriveStartInvoiceID seeds the device invoice counter when the salesman has
// never issued an invoice: the last five digits of the sales id followed by
// five zeros.
func deriveStartInvoiceID(salesID int64) string {
	return fmt.Sprintf("%05d00000", salesID%100000)
}

// Load gathers the payload. The independent reads run in parallel against
// the pool; the dependent reads (remaining stock, customer filter, next ids)
// follow once the journey is known.
func (s *LoadService) Load(ctx context.Context, salesID int64) (*LoadPayload, error) {
	var sm models.Salesman
	if err := s.db.WithContext(ctx).First(&sm, "sales_id = ?", salesID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "salesman %d not found", salesID)
		}
		return nil, apperr.Wrap(apperr.Internal, err, "query salesman")
	}
	sm.PasswordHash = ""

	journey, err := latestJourney(s.db.WithContext(ctx), salesID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "query latest journey")
	}
	var journeyID int64
	if journey != nil {
		journeyID = journey.JourneyID
	}

	payload := &LoadPayload{Salesman: &sm, Journey: journey}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if journey == nil {
			payload.Visits = []models.Visit{}
			return nil
		}
		return s.db.WithContext(gctx).
			Where("sales_id = ? AND journey_id = ?", salesID, journeyID).
			Order("visit_id ASC").Find(&payload.Visits).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Order("reason_id ASC").Find(&payload.Reasons).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Find(&payload.Settings).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Order("industry_id ASC").Find(&payload.Industries).Error
	})
	var catalog []models.Product
	g.Go(func() error {
		return s.db.WithContext(gctx).Preload("Uoms").
			Where("is_active = ?", true).Order("product_id ASC").Find(&catalog).Error
	})
	var lastInvoice *models.InvoiceHeader
	g.Go(func() error {
		var h models.InvoiceHeader
		err := s.db.WithContext(gctx).
			Where("sales_id = ?", salesID).Order("created_at DESC").First(&h).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err == nil {
			lastInvoice = &h
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "load working set")
	}

	remaining, err := s.remainingStock(ctx, salesID, journeyID)
	if err != nil {
		return nil, err
	}
	payload.Products = make([]LoadProduct, len(catalog))
	for i, p := range catalog {
		payload.Products[i] = LoadProduct{Product: p, RemainingQty: remaining[p.ProductID]}
	}

	payload.Customers, err = s.customerList(ctx, salesID, journey)
	if err != nil {
		return nil, err
	}

	payload.NextVisitID, err = s.nextVisitID(ctx, salesID, journeyID)
	if err != nil {
		return nil, err
	}

	if lastInvoice != nil {
		payload.StartIDInvoice = lastInvoice.InvID
	} else {
		payload.StartIDInvoice = deriveStartInvoiceID(salesID)
	}
	return payload, nil
}

// remainingStock is what the vehicle still carries per product: everything
// loaded by fillups for the journey minus everything invoiced in it.
func (s *LoadService) remainingStock(ctx context.Context, salesID, journeyID int64) (map[int64]float64, error) {
	if journeyID == 0 {
		return map[int64]float64{}, nil
	}
	db := s.db.WithContext(ctx)
	out, err := fillupQuantities(db, salesID, journeyID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "query fillup quantities")
	}

	type row struct {
		ProductID int64
		Qty       float64
	}
	var sold []row
	err = db.Model(&models.InvoiceItem{}).
		Select("invoice_items.product_id AS product_id, SUM(invoice_items.qty) AS qty").
		Joins("JOIN invoice_headers ON invoice_headers.inv_id = invoice_items.inv_id AND invoice_headers.sales_id = invoice_items.sales_id").
		Where("invoice_headers.sales_id = ? AND invoice_headers.journey_id = ?", salesID, journeyID).
		Group("invoice_items.product_id").
		Scan(&sold).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "query invoiced quantities")
	}
	for _, r := range sold {
		out[r.ProductID] -= r.Qty
	}
	for id, qty := range out {
		if qty < 0 {
			out[id] = 0
		}
	}
	return out, nil
}

// customerList filters by the journey's region when the setting asks for it;
// otherwise it returns active customers not yet visited in this journey.
func (s *LoadService) customerList(ctx context.Context, salesID int64, journey *models.Journey) ([]models.Customer, error) {
	db := s.db.WithContext(ctx)
	byRegion, err := settingEnabled(db, models.SettingFilterCustomersByRegion)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "read customer filter setting")
	}

	var customers []models.Customer
	q := db.Where("is_active = ?", true).Order("cust_id ASC")
	if byRegion && journey != nil && journey.RegionID != nil {
		err = q.Where("region_id = ?", *journey.RegionID).Find(&customers).Error
	} else if journey != nil {
		err = q.Where("cust_id NOT IN (?)",
			db.Model(&models.Visit{}).Select("cust_id").
				Where("sales_id = ? AND journey_id = ?", salesID, journey.JourneyID),
		).Find(&customers).Error
	} else {
		err = q.Find(&customers).Error
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "query customers")
	}
	return customers, nil
}

func (s *LoadService) nextVisitID(ctx context.Context, salesID, journeyID int64) (int64, error) {
	if journeyID == 0 {
		return 1, nil
	}
	var max *int64
	err := s.db.WithContext(ctx).Model(&models.Visit{}).
		Select("MAX(visit_id)").
		Where("sales_id = ? AND journey_id = ?", salesID, journeyID).
		Scan(&max).Error
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, err, "query max visit id")
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}
