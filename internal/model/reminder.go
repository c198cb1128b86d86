package model

import (
	"time"

	"github.com/google/uuid"
)

// ReminderPriority enum constants
const (
	PriorityHigh     = "high"
	PriorityModerate = "moderate"
	PriorityLow      = "low"
)

// Reminder is a dated todo, optionally attached to a job. Due
// reminders surface on the Today dashboard until marked done.
type Reminder struct {
	ID    uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	JobID *uuid.UUID `gorm:"type:uuid;index" json:"job_id"`
	Job   *Job       `gorm:"foreignKey:JobID" json:"job,omitempty"`

	Title        string    `gorm:"type:varchar(255);not null" json:"title"`
	ReminderDate time.Time `gorm:"type:date;not null;index" json:"reminder_date"`
	Priority     string    `gorm:"type:varchar(10);not null;default:'moderate'" json:"priority"`
	Done         bool      `gorm:"not null;default:false;index" json:"done"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
