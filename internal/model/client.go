package model

import (
	"time"

	"github.com/google/uuid"
)

// Client represents a customer the business does installation work for.
type Client struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	Email          *string   `gorm:"type:varchar(255)" json:"email"`
	Phone          *string   `gorm:"type:varchar(20)" json:"phone"`
	BillingAddress *string   `gorm:"type:text" json:"billing_address"`
	Notes          *string   `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
