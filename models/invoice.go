package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omarstateECS/ECS-Mobisales-sub001/utils"
)

const (
	InvoiceSale   = "SALE"
	InvoiceReturn = "RETURN"
)

// InvoiceHeader is a sale or return document. The composite key
// (invId, salesId) makes resubmission of the same document idempotent.
type InvoiceHeader struct {
	InvID     string          `gorm:"column:inv_id;size:40;primaryKey" json:"invId"`
	SalesID   int64           `gorm:"column:sales_id;primaryKey;autoIncrement:false" json:"salesId"`
	CustID    int64           `gorm:"column:cust_id;not null" json:"custId"`
	JourneyID int64           `gorm:"column:journey_id;not null" json:"journeyId"`
	VisitID   int64           `gorm:"column:visit_id;not null" json:"visitId"`
	Type      string          `gorm:"size:10;not null;default:SALE" json:"type"`
	ReasonID  *int64          `gorm:"column:reason_id" json:"reasonId,omitempty"`
	NetTotal  decimal.Decimal `gorm:"column:net_total;type:numeric(14,4)" json:"netTotal"`
	TaxTotal  decimal.Decimal `gorm:"column:tax_total;type:numeric(14,4)" json:"taxTotal"`
	DiscTotal decimal.Decimal `gorm:"column:disc_total;type:numeric(14,4)" json:"discTotal"`
	Total     decimal.Decimal `gorm:"type:numeric(14,4)" json:"total"`
	CreatedAt string          `gorm:"size:30" json:"createdAt"`

	Items []InvoiceItem `gorm:"foreignKey:InvID,SalesID;references:InvID,SalesID" json:"items,omitempty"`
}

func (h *InvoiceHeader) BeforeCreate(tx *gorm.DB) error {
	if h.CreatedAt == "" {
		h.CreatedAt = utils.Stamp()
	}
	if h.Type == "" {
		h.Type = InvoiceSale
	}
	return nil
}

// InvoiceItem is one product line. ReasonID tags a return reason; the
// sentinel value 0 from mobile clients is normalized to null before insert.
type InvoiceItem struct {
	InvID     string          `gorm:"column:inv_id;size:40;primaryKey" json:"invId"`
	SalesID   int64           `gorm:"column:sales_id;primaryKey;autoIncrement:false" json:"salesId"`
	LineNo    int             `gorm:"column:line_no;primaryKey;autoIncrement:false" json:"lineNo"`
	ProductID int64           `gorm:"column:product_id;not null" json:"productId"`
	UomID     int64           `gorm:"column:uom_id;not null" json:"uomId"`
	Qty       float64         `gorm:"not null" json:"qty"`
	Net       decimal.Decimal `gorm:"type:numeric(14,4)" json:"net"`
	Tax       decimal.Decimal `gorm:"type:numeric(14,4)" json:"tax"`
	Disc      decimal.Decimal `gorm:"type:numeric(14,4)" json:"disc"`
	Total     decimal.Decimal `gorm:"type:numeric(14,4)" json:"total"`
	ReasonID  *int64          `gorm:"column:reason_id" json:"reasonId,omitempty"`
}
