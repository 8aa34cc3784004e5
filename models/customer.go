package models

import (
	"gorm.io/gorm"

	"github.com/omarstateECS/ECS-Mobisales-sub001/utils"
)

type Customer struct {
	CustID     int64   `gorm:"column:cust_id;primaryKey" json:"custId"`
	Name       string  `gorm:"size:150;not null" json:"name"`
	Address    string  `gorm:"size:255" json:"address"`
	Phone      string  `gorm:"size:15" json:"phone"`
	RegionID   *int64  `gorm:"column:region_id;index" json:"regionId,omitempty"`
	IndustryID *int64  `gorm:"column:industry_id" json:"industryId,omitempty"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	IsActive   bool    `gorm:"not null;default:true" json:"isActive"`
	CreatedAt  string  `gorm:"size:30" json:"createdAt"`
	UpdatedAt  string  `gorm:"size:30" json:"updatedAt"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.CreatedAt == "" {
		c.CreatedAt = utils.Stamp()
	}
	c.UpdatedAt = utils.Stamp()
	return nil
}

func (c *Customer) BeforeUpdate(tx *gorm.DB) error {
	c.UpdatedAt = utils.Stamp()
	return nil
}
