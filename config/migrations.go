package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/omarstateECS/ECS-Mobisales-sub001/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20240115_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&models.Salesman{}, &models.Journey{}, &models.Visit{},
					&models.InvoiceHeader{}, &models.InvoiceItem{},
					&models.Product{}, &models.ProductUOM{},
					&models.Fillup{}, &models.FillupItem{},
					&models.ActionDetails{}, &models.Customer{},
				)
			},
		},
		{
			ID: "20240115_create_reference_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&models.Region{}, &models.Industry{}, &models.Authority{},
					&models.SalesmanAuthority{}, &models.Reason{}, &models.Setting{},
				)
			},
		},
		{
			ID: "20240116_seed_default_settings",
			Migrate: func(tx *gorm.DB) error {
				defaults := []models.Setting{
					{Name: models.SettingCustomInvoice, Value: "0"},
					{Name: models.SettingInvoicePattern, TextValue: "{year}{month}{day}{salesId}{number}"},
					{Name: models.SettingVisitSequence, Value: "0"},
					{Name: models.SettingFilterCustomersByRegion, Value: "0"},
				}
				return tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "name"}},
					DoNothing: true,
				}).Create(&defaults).Error
			},
		},
	})
	return m.Migrate()
}
