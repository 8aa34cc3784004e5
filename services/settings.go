package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/omarstateECS/ECS-Mobisales-sub001/models"
)

// getSetting returns the row for name, or nil when it was never written.
func getSetting(db *gorm.DB, name string) (*models.Setting, error) {
	var s models.Setting
	err := db.First(&s, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// settingEnabled treats a missing row as disabled.
func settingEnabled(db *gorm.DB, name string) (bool, error) {
	s, err := getSetting(db, name)
	if err != nil || s == nil {
		return false, err
	}
	return s.Enabled(), nil
}
