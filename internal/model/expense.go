package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseCategory enum constants
const (
	CategoryGlass         = "glass"
	CategoryHardware      = "hardware"
	CategoryConsumables   = "consumables"
	CategorySubcontractor = "subcontractor"
	CategoryGasFuel       = "gas_fuel"
	CategoryVehicle       = "vehicle"
	CategoryTools         = "tools_equipment"
	CategoryOfficeAdmin   = "office_admin"
	CategoryFoodMeals     = "food_meals"
	CategoryOther         = "other"

	// Legacy vendor-named categories still accepted on input
	CategoryCRL              = "crl"
	CategoryGlassFabrication = "glass_fabrication"
	CategoryMrGlass          = "mr_glass"
)

// PaymentMethod enum constants (shared with Payment)
const (
	MethodStripe  = "stripe"
	MethodCheck   = "check"
	MethodZelle   = "zelle"
	MethodVenmo   = "venmo"
	MethodCashApp = "cashapp"
	MethodCash    = "cash"
	MethodOther   = "other"
)

// Expense represents a cost entry, optionally tied to a job. Expenses
// without a job are general business overhead.
type Expense struct {
	ID    uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	JobID *uuid.UUID `gorm:"type:uuid;index" json:"job_id"`
	Job   *Job       `gorm:"foreignKey:JobID" json:"job,omitempty"`

	Date            time.Time       `gorm:"type:date;not null;index" json:"date"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Vendor          string          `gorm:"type:varchar(255);not null" json:"vendor"`
	Category        string          `gorm:"type:varchar(30);not null;default:'other';index" json:"category"`
	PaymentMethod   string          `gorm:"type:varchar(20);not null;default:'other'" json:"payment_method"`
	Note            *string         `gorm:"type:text" json:"note"`
	ReceiptImageURL *string         `gorm:"type:text" json:"receipt_image_url"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsGlassCategory reports whether the category counts as a glass order
// for job attention purposes.
func IsGlassCategory(category string) bool {
	switch category {
	case CategoryGlass, CategoryGlassFabrication, CategoryMrGlass:
		return true
	}
	return false
}
