package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType enum constants
const (
	PaymentTypeDeposit = "deposit"
	PaymentTypeFinal   = "final"
	PaymentTypeOther   = "other"
)

// Payment represents money received against a job, optionally linked
// to an invoice. Amount is always the net received; for Stripe
// payments GrossAmount holds what the customer was charged and
// StripeFee the difference.
type Payment struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	JobID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"job_id"`
	Job       *Job       `gorm:"foreignKey:JobID" json:"job,omitempty"`
	InvoiceID *uuid.UUID `gorm:"type:uuid;index" json:"invoice_id"`

	Date        time.Time        `gorm:"type:date;not null;index" json:"date"`
	Amount      decimal.Decimal  `gorm:"type:decimal(18,4);not null" json:"amount"`
	GrossAmount *decimal.Decimal `gorm:"type:decimal(18,4)" json:"gross_amount"`
	StripeFee   decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0" json:"stripe_fee"`

	PaymentType          string  `gorm:"type:varchar(20);not null;default:'other'" json:"payment_type"`
	Method               string  `gorm:"type:varchar(20);not null;default:'other'" json:"method"`
	Note                 *string `gorm:"type:text" json:"note"`
	ConfirmationImageURL *string `gorm:"type:text" json:"confirmation_image_url"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
