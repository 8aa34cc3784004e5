package models

import (
	"gorm.io/gorm"

	"github.com/omarstateECS/ECS-Mobisales-sub001/utils"
)

// Fillup records the stock loaded onto a salesman's vehicle for one journey.
// End-of-journey reconciliation reads these rows to compute what comes back.
type Fillup struct {
	FillupID  int64  `gorm:"column:fillup_id;primaryKey" json:"fillupId"`
	SalesID   int64  `gorm:"column:sales_id;not null;index" json:"salesId"`
	JourneyID int64  `gorm:"column:journey_id;not null;index" json:"journeyId"`
	CreatedAt string `gorm:"size:30" json:"createdAt"`

	Items []FillupItem `gorm:"foreignKey:FillupID" json:"items,omitempty"`
}

func (f *Fillup) BeforeCreate(tx *gorm.DB) error {
	if f.CreatedAt == "" {
		f.CreatedAt = utils.Stamp()
	}
	return nil
}

type FillupItem struct {
	FillupID  int64   `gorm:"column:fillup_id;primaryKey;autoIncrement:false" json:"fillupId"`
	ProductID int64   `gorm:"column:product_id;primaryKey;autoIncrement:false" json:"productId"`
	Qty       float64 `gorm:"not null" json:"qty"`
}
