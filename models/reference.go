package models

// Reference data maintained by the admin dashboard.

type Region struct {
	RegionID int64  `gorm:"column:region_id;primaryKey" json:"regionId"`
	Name     string `gorm:"size:100;not null" json:"name"`
}

type Industry struct {
	IndustryID int64  `gorm:"column:industry_id;primaryKey" json:"industryId"`
	Name       string `gorm:"size:100;not null" json:"name"`
}

type Authority struct {
	AuthorityID int64  `gorm:"column:authority_id;primaryKey" json:"authorityId"`
	Name        string `gorm:"size:100;not null" json:"name"`
}

// SalesmanAuthority grants one authority to one salesman.
type SalesmanAuthority struct {
	SalesID     int64 `gorm:"column:sales_id;primaryKey;autoIncrement:false" json:"salesId"`
	AuthorityID int64 `gorm:"column:authority_id;primaryKey;autoIncrement:false" json:"authorityId"`
}

const (
	ReasonReturn      = "RETURN"
	ReasonCancel      = "CANCEL"
	ReasonVisitCancel = "VISIT_CANCEL"
)

// Reason covers return reasons, invoice cancel reasons and visit cancel
// reasons in one table, discriminated by Kind.
type Reason struct {
	ReasonID    int64  `gorm:"column:reason_id;primaryKey" json:"reasonId"`
	Kind        string `gorm:"size:20;not null;index" json:"kind"`
	Description string `gorm:"size:255;not null" json:"description"`
}
