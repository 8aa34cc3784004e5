package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/omarstateECS/ECS-Mobisales-sub001/models"
	"github.com/omarstateECS/ECS-Mobisales-sub001/pkg/apperr"
	"github.com/omarstateECS/ECS-Mobisales-sub001/utils"
)

const defaultInvoicePattern = "{year}{month}{day}{salesId}{number}"

type InvoiceService struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewInvoiceService(db *gorm.DB, log *logrus.Logger) *InvoiceService {
	return &InvoiceService{db: db, log: log}
}

type InvoiceItemInput struct {
	ProductID int64           `json:"productId" validate:"required"`
	UomID     int64           `json:"uomId"`
	Qty       float64         `json:"qty"`
	Net       decimal.Decimal `json:"net"`
	Tax       decimal.Decimal `json:"tax"`
	Disc      decimal.Decimal `json:"disc"`
	Total     decimal.Decimal `json:"total"`
	ReasonID  int64           `json:"reasonId"`
}

type InvoiceInput struct {
	InvID     string             `json:"invId"`
	SalesID   int64              `json:"salesId"`
	CustID    int64              `json:"custId" validate:"required"`
	JourneyID int64              `json:"journeyId"`
	VisitID   int64              `json:"visitId"`
	Type      string             `json:"type"`
	ReasonID  int64              `json:"reasonId"`
	CreatedAt string             `json:"createdAt"`
	Items     []InvoiceItemInput `json:"items" validate:"required,min=1,dive"`
}

// normalizeReasons maps the mobile sentinel 0 to null on header and items.
// A nonzero header reason is the only reason an invoice may carry, so item
// reasons are cleared when one is present.
func normalizeReasons(in *InvoiceInput) (header *int64, items []*int64) {
	if in.ReasonID != 0 {
		r := in.ReasonID
		header = &r
	}
	items = make([]*int64, len(in.Items))
	if header != nil {
		return header, items
	}
	for i := range in.Items {
		if in.Items[i].ReasonID != 0 {
			r := in.Items[i].ReasonID
			items[i] = &r
		}
	}
	return header, items
}

// renderInvoicePrefix substitutes every placeholder except {number}, which is
// stripped; the result is the fixed prefix shared by all ids issued for this
// salesman on this date.
func renderInvoicePrefix(pattern string, now time.Time, salesID int64) string {
	r := strings.NewReplacer(
		"{year}", now.Format("2006"),
		"{month}", now.Format("01"),
		"{day}", now.Format("02"),
		"{salesId}", strconv.FormatInt(salesID, 10),
		"{number}", "",
	)
	return r.Replace(pattern)
}

// parseTrailingNumber returns the numeric run at the end of id, 0 when none.
func parseTrailingNumber(id string) int {
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	if i == len(id) {
		return 0
	}
	n, err := strconv.Atoi(id[i:])
	if err != nil {
		return 0
	}
	return n
}

// nextInvoiceID renders the follow-up id for a prefix given the highest
// existing id, zero-padded to at least 3 digits.
func nextInvoiceID(prefix, highest string) string {
	n := 0
	if highest != "" {
		n = parseTrailingNumber(highest)
	}
	return fmt.Sprintf("%s%03d", prefix, n+1)
}

// customInvoiceID returns the next formatted id when the customInvoice
// setting is on, nil otherwise so the caller falls back to the submitted id.
func (s *InvoiceService) customInvoiceID(tx *gorm.DB, salesID int64) (*string, error) {
	enabled, err := settingEnabled(tx, models.SettingCustomInvoice)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "read invoice settings")
	}
	if !enabled {
		return nil, nil
	}
	pattern := defaultInvoicePattern
	if ps, err := getSetting(tx, models.SettingInvoicePattern); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "read invoice pattern")
	} else if ps != nil && ps.TextValue != "" {
		pattern = ps.TextValue
	}

	prefix := renderInvoicePrefix(pattern, utils.Now(), salesID)
	var last models.InvoiceHeader
	err = tx.Where("inv_id LIKE ? AND sales_id = ?", prefix+"%", salesID).
		Order("inv_id DESC").First(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Wrap(apperr.Internal, err, "query last invoice id")
	}
	id := nextInvoiceID(prefix, last.InvID)
	return &id, nil
}

// CreateTx creates an invoice header plus items on the given transaction.
// Resubmitting an invoice that already exists under (invId, salesId) returns
// the stored document unchanged, so a retried check-in never double-books.
func (s *InvoiceService) CreateTx(tx *gorm.DB, in *InvoiceInput) (*models.InvoiceHeader, error) {
	if len(in.Items) == 0 {
		return nil, apperr.New(apperr.Validation, "invoice items are required")
	}
	if in.SalesID == 0 {
		return nil, apperr.New(apperr.Validation, "invoice salesId is required")
	}

	invID := in.InvID
	if custom, err := s.customInvoiceID(tx, in.SalesID); err != nil {
		return nil, err
	} else if custom != nil {
		invID = *custom
	}
	if invID == "" {
		return nil, apperr.New(apperr.Validation, "invoice id is required")
	}

	var existing models.InvoiceHeader
	err := tx.Preload("Items").
		Where("inv_id = ? AND sales_id = ?", invID, in.SalesID).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Wrap(apperr.Internal, err, "query invoice")
	}

	headerReason, itemReasons := normalizeReasons(in)

	header := models.InvoiceHeader{
		InvID:     invID,
		SalesID:   in.SalesID,
		CustID:    in.CustID,
		JourneyID: in.JourneyID,
		VisitID:   in.VisitID,
		Type:      in.Type,
		ReasonID:  headerReason,
		CreatedAt: in.CreatedAt,
	}
	items := make([]models.InvoiceItem, len(in.Items))
	for i, it := range in.Items {
		items[i] = models.InvoiceItem{
			InvID:     invID,
			SalesID:   in.SalesID,
			LineNo:    i + 1,
			ProductID: it.ProductID,
			UomID:     it.UomID,
			Qty:       it.Qty,
			Net:       it.Net,
			Tax:       it.Tax,
			Disc:      it.Disc,
			Total:     it.Total,
			ReasonID:  itemReasons[i],
		}
		header.NetTotal = header.NetTotal.Add(it.Net)
		header.TaxTotal = header.TaxTotal.Add(it.Tax)
		header.DiscTotal = header.DiscTotal.Add(it.Disc)
		header.Total = header.Total.Add(it.Total)
	}

	if err := tx.Omit("Items").Create(&header).Error; err != nil {
		// Two devices racing on the same document: fall back to the winner's row.
		if strings.Contains(err.Error(), "duplicate key") {
			if ferr := tx.Preload("Items").
				Where("inv_id = ? AND sales_id = ?", invID, in.SalesID).
				First(&existing).Error; ferr == nil {
				return &existing, nil
			}
		}
		return nil, apperr.Wrap(apperr.Internal, err, "create invoice header")
	}
	if err := tx.Create(&items).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "create invoice items")
	}
	header.Items = items
	return &header, nil
}

// Create runs CreateTx in its own transaction, for the admin API path.
func (s *InvoiceService) Create(in *InvoiceInput) (*models.InvoiceHeader, error) {
	var out *models.InvoiceHeader
	err := s.db.Transaction(func(tx *gorm.DB) error {
		h, err := s.CreateTx(tx, in)
		if err != nil {
			return err
		}
		out = h
		return nil
	})
	return out, err
}
