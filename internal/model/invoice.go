package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus enum constants. Transitions are monotonic:
// sent -> deposit_paid -> paid, no reverse.
const (
	InvoiceStatusSent        = "sent"
	InvoiceStatusDepositPaid = "deposit_paid"
	InvoiceStatusPaid        = "paid"
)

// LineItem is one billed row on an invoice. LineTotal is always
// recomputed from Qty and UnitPrice, never set independently.
type LineItem struct {
	Description string          `json:"description"`
	Qty         decimal.Decimal `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// LineItems is stored as a JSONB column. Order is display-significant.
type LineItems []LineItem

func (l LineItems) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *LineItems) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type for LineItems: %T", value)
	}
}

// Invoice represents the financial document issued for a job. Line
// items, rate flags and money fields are frozen at creation; the
// customer fields are a snapshot copied from the client at that time,
// not a live reference.
type Invoice struct {
	ID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	JobID uuid.UUID `gorm:"type:uuid;not null;index" json:"job_id"`
	Job   *Job      `gorm:"foreignKey:JobID" json:"job,omitempty"`

	InvoiceNumber int64     `gorm:"uniqueIndex;not null" json:"invoice_number"`
	InvoiceDate   time.Time `gorm:"type:date;not null" json:"invoice_date"`
	DueDate       time.Time `gorm:"type:date;not null" json:"due_date"`

	CustomerName    string  `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerAddress *string `gorm:"type:text" json:"customer_address"`
	Notes           *string `gorm:"type:text" json:"notes"`

	LineItems LineItems `gorm:"type:jsonb;not null;default:'[]'" json:"line_items"`

	Subtotal        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"subtotal"`
	DiscountApplied bool            `gorm:"not null;default:false" json:"discount_applied"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"discount_percent"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"discount_amount"`
	TaxApplied      bool            `gorm:"not null;default:false" json:"tax_applied"`
	TaxRate         decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"tax_rate"`
	Tax             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"tax"`
	Total           decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total"`

	Status string  `gorm:"type:varchar(20);not null;default:'sent';index" json:"status"`
	PDFURL *string `gorm:"type:text" json:"pdf_url"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// InvoiceSequence backs invoice_number assignment. A single row
// (ID = 1) holds the last used number and is locked FOR UPDATE while
// the next one is taken.
type InvoiceSequence struct {
	ID         int   `gorm:"primaryKey" json:"id"`
	LastNumber int64 `gorm:"not null;default:0" json:"last_number"`
}

func (InvoiceSequence) TableName() string { return "invoice_sequence" }

// CanTransitionInvoiceStatus reports whether moving from one invoice
// status to another is allowed. Only forward movement is defined.
func CanTransitionInvoiceStatus(from, to string) bool {
	order := map[string]int{
		InvoiceStatusSent:        0,
		InvoiceStatusDepositPaid: 1,
		InvoiceStatusPaid:        2,
	}
	f, okF := order[from]
	t, okT := order[to]
	return okF && okT && t > f
}
