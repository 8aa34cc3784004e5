package models

import (
	"gorm.io/gorm"

	"github.com/omarstateECS/ECS-Mobisales-sub001/utils"
)

// Journey is one sales trip. JourneyID is scoped per salesman, so the
// composite key (journeyId, salesId) is the identity, never journeyId alone.
type Journey struct {
	JourneyID    int64   `gorm:"column:journey_id;primaryKey;autoIncrement:false" json:"journeyId"`
	SalesID      int64   `gorm:"column:sales_id;primaryKey;autoIncrement:false" json:"salesId"`
	StartJourney *string `gorm:"column:start_journey;size:30" json:"startJourney,omitempty"`
	EndJourney   *string `gorm:"column:end_journey;size:30" json:"endJourney,omitempty"`
	RegionID     *int64  `gorm:"column:region_id" json:"regionId,omitempty"`
	CreatedAt    string  `gorm:"size:30" json:"createdAt"`
}

func (j *Journey) BeforeCreate(tx *gorm.DB) error {
	if j.CreatedAt == "" {
		j.CreatedAt = utils.Stamp()
	}
	return nil
}

// Open reports whether the journey has not been closed yet.
func (j *Journey) Open() bool {
	return j.EndJourney == nil || *j.EndJourney == ""
}
