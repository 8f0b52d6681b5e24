package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User owns zero or more missing-person reports. Accounts are soft-deleted so
// report authorship survives account removal.
type User struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Username string  `gorm:"unique;not null" json:"username"`
	Email    string  `gorm:"unique;not null" json:"email"`
	Password *string `json:"-"`
	Avatar   string  `json:"avatar"`
	Role     string  `gorm:"not null;default:'user'" json:"role"`

	// Social links shown on the profile page.
	Twitter  string `json:"twitter"`
	Facebook string `json:"facebook"`
	LinkedIn string `json:"linkedin"`

	// Notification preferences. Delivery is handled outside this service.
	EmailNotifications bool `gorm:"default:true" json:"email_notifications"`
	PushNotifications  bool `gorm:"default:true" json:"push_notifications"`

	GoogleID   *string   `json:"-"`
	Provider   string    `gorm:"default:'email'" json:"-"`
	LastSeenAt time.Time `json:"last_seen_at"`

	Reports       []Report       `json:"reports,omitempty" gorm:"foreignKey:ReporterID"`
	RefreshTokens []RefreshToken `json:"-" gorm:"foreignKey:UserID"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
