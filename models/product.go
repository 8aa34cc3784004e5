package models

import (
	"github.com/shopspring/decimal"
)

// Product is a sellable item. Stock is the central warehouse counter:
// decremented when a fillup loads a salesman's vehicle, incremented when an
// ended journey returns unconsumed quantities.
type Product struct {
	ProductID      int64           `gorm:"column:product_id;primaryKey" json:"productId"`
	Name           string          `gorm:"size:150;not null" json:"name"`
	BaseUom        int64           `gorm:"column:base_uom;not null" json:"baseUom"`
	Stock          float64         `gorm:"not null;default:0" json:"stock"`
	NonSellableQty float64         `gorm:"column:non_sellable_qty;not null;default:0" json:"nonSellableQty"`
	Price          decimal.Decimal `gorm:"type:numeric(14,4)" json:"price"`
	ImageURL       string          `gorm:"column:image_url;size:255" json:"imageUrl,omitempty"`
	IsActive       bool            `gorm:"not null;default:true" json:"isActive"`

	Uoms []ProductUOM `gorm:"foreignKey:ProductID" json:"uoms,omitempty"`
}

// ProductUOM is one unit of measure for a product. The conversion to the
// base unit is Numerator/Denominator; the row whose UomID equals the
// product's BaseUom has ratio 1/1.
type ProductUOM struct {
	ProductID   int64   `gorm:"column:product_id;primaryKey;autoIncrement:false" json:"productId"`
	UomID       int64   `gorm:"column:uom_id;primaryKey;autoIncrement:false" json:"uomId"`
	Name        string  `gorm:"size:50;not null" json:"name"`
	Barcode     string  `gorm:"size:64" json:"barcode,omitempty"`
	Numerator   float64 `gorm:"not null;default:1" json:"numerator"`
	Denominator float64 `gorm:"not null;default:1" json:"denominator"`
}
