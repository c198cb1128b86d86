package model

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus enum constants — the install pipeline, in order
const (
	JobStatusEstimate        = "estimate"
	JobStatusDepositReceived = "deposit_received"
	JobStatusMeasured        = "measured"
	JobStatusOrdered         = "ordered"
	JobStatusInstalled       = "installed"
	JobStatusClosed          = "closed"
)

// GlassType enum constants
const (
	GlassTypeClear        = "clear"
	GlassTypeLowIron      = "low_iron"
	GlassTypeFrosted      = "frosted"
	GlassTypeRain         = "rain"
	GlassTypeTintedGray   = "tinted_gray"
	GlassTypeTintedBronze = "tinted_bronze"
	GlassTypeOther        = "other"
)

// Job represents one installation project. Expenses, payments and
// invoices all hang off a job.
type Job struct {
	ID       uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClientID *uuid.UUID `gorm:"type:uuid;index" json:"client_id"`
	Client   *Client    `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	JobName string  `gorm:"type:varchar(255);not null" json:"job_name"`
	Address string  `gorm:"type:text;not null" json:"address"`
	Area    *string `gorm:"type:varchar(100)" json:"area"`
	Status  string  `gorm:"type:varchar(20);not null;default:'estimate';index" json:"status"`

	InstallDate    *time.Time `gorm:"type:date" json:"install_date"`
	InstallEndDate *time.Time `gorm:"type:date" json:"install_end_date"`
	Notes          *string    `gorm:"type:text" json:"notes"`

	// Glass specification
	GlassType      *string `gorm:"type:varchar(20)" json:"glass_type"`
	GlassThickness *string `gorm:"type:varchar(10)" json:"glass_thickness"` // 1/4", 3/8", 1/2", ...
	HardwareFinish *string `gorm:"type:varchar(30)" json:"hardware_finish"`
	Configuration  *string `gorm:"type:varchar(255)" json:"configuration"`
	Dimensions     *string `gorm:"type:varchar(255)" json:"dimensions"`

	Payments []Payment `gorm:"foreignKey:JobID" json:"payments,omitempty"`
	Expenses []Expense `gorm:"foreignKey:JobID" json:"expenses,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
