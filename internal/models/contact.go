package models

import "time"

// MaxContactsPerUser caps how many contacts one user may register.
const MaxContactsPerUser = 5

// EmergencyContact is a ranked guardian notified when the owner's device
// fires an SOS. Priority 1 is highest.
type EmergencyContact struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    uint   `gorm:"index:idx_user_priority;not null" json:"userId"`
	Name      string `gorm:"size:50;not null" json:"name"`
	Phone     string `gorm:"size:20;not null" json:"phone"`
	Email     string `gorm:"size:100" json:"email,omitempty"`
	Priority  int    `gorm:"index:idx_user_priority;default:1" json:"priority"`
	// no gorm default: a default tag makes the ORM drop zero values from
	// INSERT, which would flip a deliberately inactive contact back on.
	// Callers set Active explicitly.
	Active bool `gorm:"not null" json:"active"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
