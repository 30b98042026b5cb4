package models

import "time"

// Priority orders notes by urgency.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// IsValid reports whether the priority is a known value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Status tracks where a note sits in its workflow.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusArchived  Status = "ARCHIVED"
)

// IsValid reports whether the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// Field length limits enforced on create and update.
const (
	MaxTitleLength    = 100
	MaxContentLength  = 5000
	MaxCategoryLength = 50
)

// Note is a record exclusively owned by one user. Ownership never changes
// after creation. CompletedAt is non-nil only while the note carries an
// unreverted COMPLETED transition.
type Note struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"size:100;not null"`
	Content     string     `json:"content" gorm:"size:5000;not null"`
	Priority    Priority   `json:"priority" gorm:"size:10;not null;default:MEDIUM"`
	Status      Status     `json:"status" gorm:"size:10;not null;default:ACTIVE"`
	Category    *string    `json:"category,omitempty" gorm:"size:50"`
	UserID      int64      `json:"user_id" gorm:"not null;index"`
	User        User       `json:"-" gorm:"foreignKey:UserID"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TableName returns the database table name for the Note model.
func (Note) TableName() string {
	return "notes"
}
