package models

import "time"

// User owns a wearable device and a ranked set of emergency contacts.
type User struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Email        string  `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password     string  `gorm:"size:255;not null" json:"-"` // bcrypt hash
	Name         string  `gorm:"size:50;not null" json:"name"`
	Phone        string  `gorm:"size:20;not null" json:"phone"`
	DeviceSerial *string `gorm:"size:100;uniqueIndex" json:"deviceSerial"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Contacts []EmergencyContact `gorm:"foreignKey:UserID" json:"contacts,omitempty"`
}
