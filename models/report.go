package models

import (
	"time"

	"gorm.io/gorm"
)

// Report status lifecycle. A report starts out pending, is confirmed to
// active, may be escalated to urgent and back, and ends resolved.
const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusUrgent   = "urgent"
	StatusResolved = "resolved"
)

const (
	CategoryChild  = "child"
	CategoryAdult  = "adult"
	CategorySenior = "senior"
	CategoryOther  = "other"
)

// Genders accepted on report submissions.
var Genders = []string{"Male", "Female", "Non-binary", "Other", "Prefer not to say"}

// Categories accepted on report submissions.
var Categories = []string{CategoryChild, CategoryAdult, CategorySenior, CategoryOther}

// Report is a missing-person record. Reports are never physically deleted;
// resolved reports are retained for history.
type Report struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name       string     `gorm:"not null;index" json:"name"`
	Age        int        `gorm:"not null" json:"age"`
	Gender     string     `gorm:"not null" json:"gender"`
	Location   string     `gorm:"not null;index" json:"location"`
	LastSeenAt *time.Time `json:"last_seen_at"`

	Description string `gorm:"type:text;not null" json:"description"`
	PhotoURL    string `json:"photo_url"`

	Status   string `gorm:"not null;default:'pending';index" json:"status"`
	Category string `gorm:"not null;default:'other'" json:"category"`

	ReporterID uint `gorm:"not null;index" json:"reporter_id"`
	Reporter   User `gorm:"foreignKey:ReporterID" json:"-"`
}
