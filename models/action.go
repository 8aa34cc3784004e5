package models

import (
	"gorm.io/gorm"

	"github.com/omarstateECS/ECS-Mobisales-sub001/utils"
)

const (
	ActionStartJourney int64 = 1
	ActionEndJourney   int64 = 2
)

// ActionDetails logs one discrete field event tied to a visit. Clients may
// submit journey start/end actions with visitId 0 when they do not know the
// visit yet; check-in resolves those to a real visit before persisting.
type ActionDetails struct {
	ID        int64  `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	JourneyID int64  `gorm:"column:journey_id;primaryKey;autoIncrement:false" json:"journeyId"`
	VisitID   int64  `gorm:"column:visit_id;primaryKey;autoIncrement:false" json:"visitId"`
	SalesID   int64  `gorm:"column:sales_id;not null;index" json:"salesId"`
	ActionID  int64  `gorm:"column:action_id;not null" json:"actionId"`
	CreatedAt string `gorm:"size:30" json:"createdAt"`
}

func (a *ActionDetails) BeforeCreate(tx *gorm.DB) error {
	if a.CreatedAt == "" {
		a.CreatedAt = utils.Stamp()
	}
	return nil
}
