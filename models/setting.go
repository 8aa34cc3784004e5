package models

// Setting is one name/value configuration row, written through
// upsert-by-name. Value holds short flags, TextValue longer payloads such as
// the invoice id template.
type Setting struct {
	Name      string `gorm:"size:50;primaryKey" json:"name"`
	Value     string `gorm:"size:100" json:"value"`
	TextValue string `gorm:"column:text_value;size:255" json:"textValue"`
}

// Known setting names.
const (
	SettingCustomInvoice           = "customInvoice"
	SettingInvoicePattern          = "invoicePattern"
	SettingVisitSequence           = "visitSequence"
	SettingFilterCustomersByRegion = "filterCustomersByRegion"
)

// Enabled interprets the Value column as a boolean flag.
func (s *Setting) Enabled() bool {
	switch s.Value {
	case "1", "true", "TRUE", "yes", "Y":
		return true
	}
	return false
}
