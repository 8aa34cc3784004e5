package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/omarstateECS/ECS-Mobisales-sub001/utils"
)

const (
	SalesmanActive   = "ACTIVE"
	SalesmanInactive = "INACTIVE"
	SalesmanBlocked  = "BLOCKED"
)

// Salesman is a mobile field-sales user. DeviceID is bound on first
// successful login and must match on every check-in afterwards.
type Salesman struct {
	SalesID      int64          `gorm:"column:sales_id;primaryKey;autoIncrement:false" json:"salesId"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Phone        string         `gorm:"size:15;uniqueIndex;not null" json:"phone"`
	PasswordHash string         `gorm:"size:255;not null" json:"-"`
	DeviceID     string         `gorm:"column:device_id;size:100" json:"deviceId"`
	DeviceInfo   datatypes.JSON `gorm:"column:device_info;type:jsonb" json:"deviceInfo,omitempty"`
	Status       string         `gorm:"size:10;not null;default:ACTIVE" json:"status"`
	Available    bool           `gorm:"not null;default:true" json:"available"`
	Address      string         `gorm:"size:255" json:"address"`
	RegionID     *int64         `gorm:"column:region_id" json:"regionId,omitempty"`
	CreatedAt    string         `gorm:"size:30" json:"createdAt"`
	UpdatedAt    string         `gorm:"size:30" json:"updatedAt"`
}

func (s *Salesman) BeforeCreate(tx *gorm.DB) error {
	if s.CreatedAt == "" {
		s.CreatedAt = utils.Stamp()
	}
	s.UpdatedAt = utils.Stamp()
	return nil
}

func (s *Salesman) BeforeUpdate(tx *gorm.DB) error {
	s.UpdatedAt = utils.Stamp()
	return nil
}
