package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JSONMap is a generic JSONB column for report breakdowns.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(JSONMap{})
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported type for JSONMap: %T", value)
	}
}

// MonthlyReport is a persisted snapshot of one month's aggregates.
// Regenerating a month replaces the previous snapshot.
type MonthlyReport struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReportMonth string    `gorm:"type:varchar(7);uniqueIndex;not null" json:"report_month"` // YYYY-MM

	TotalRevenue  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_revenue"`
	TotalExpenses decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_expenses"`
	NetProfit     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"net_profit"`
	JobsCompleted int             `gorm:"not null;default:0" json:"jobs_completed"`
	JobsCreated   int             `gorm:"not null;default:0" json:"jobs_created"`

	ExpensesByCategory JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"expenses_by_category"`
	PaymentsByMethod   JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"payments_by_method"`
	TopClients         JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"top_clients"`

	GeneratedAt time.Time `gorm:"autoCreateTime" json:"generated_at"`
}
