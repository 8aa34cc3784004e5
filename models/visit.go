package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/omarstateECS/ECS-Mobisales-sub001/utils"
)

const (
	VisitWait   = "WAIT"
	VisitStart  = "START"
	VisitEnd    = "END"
	VisitCancel = "CANCEL"
)

// Visit is one customer stop within a journey, keyed by
// (visitId, salesId, journeyId). Status is derived from which timestamp is
// populated; cancelTime wins over endTime, endTime over startTime.
type Visit struct {
	VisitID        int64          `gorm:"column:visit_id;primaryKey;autoIncrement:false" json:"visitId"`
	SalesID        int64          `gorm:"column:sales_id;primaryKey;autoIncrement:false" json:"salesId"`
	JourneyID      int64          `gorm:"column:journey_id;primaryKey;autoIncrement:false" json:"journeyId"`
	CustID         int64          `gorm:"column:cust_id;not null" json:"custId"`
	Status         string         `gorm:"size:10;not null;default:WAIT" json:"status"`
	StartTime      *string        `gorm:"column:start_time;size:30" json:"startTime,omitempty"`
	EndTime        *string        `gorm:"column:end_time;size:30" json:"endTime,omitempty"`
	CancelTime     *string        `gorm:"column:cancel_time;size:30" json:"cancelTime,omitempty"`
	CancelReasonID *int64         `gorm:"column:cancel_reason_id" json:"cancelReasonId,omitempty"`
	DistanceKm     *float64       `gorm:"column:distance_km" json:"distanceKm,omitempty"`
	Photos         pq.StringArray `gorm:"type:text[]" json:"photos,omitempty"`
	CreatedAt      string         `gorm:"size:30" json:"createdAt"`
}

func (v *Visit) BeforeCreate(tx *gorm.DB) error {
	if v.CreatedAt == "" {
		v.CreatedAt = utils.Stamp()
	}
	if v.Status == "" {
		v.Status = VisitWait
	}
	return nil
}
