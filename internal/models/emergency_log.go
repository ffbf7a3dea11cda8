package models

import (
	"encoding/json"
	"strings"
	"time"
)

// DangerLevel is the coarse severity of one alert.
type DangerLevel string

const (
	DangerHigh   DangerLevel = "HIGH"
	DangerMedium DangerLevel = "MEDIUM"
	DangerLow    DangerLevel = "LOW"
)

// ParseDangerLevel maps a classifier answer to a level, case-insensitively.
// Anything unrecognizable becomes MEDIUM: a failed classification must still
// yield an actionable severity, and MEDIUM errs toward caution.
func ParseDangerLevel(s string) DangerLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH":
		return DangerHigh
	case "MEDIUM":
		return DangerMedium
	case "LOW":
		return DangerLow
	default:
		return DangerMedium
	}
}

// SentContact is one notified contact as recorded in the audit log.
type SentContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// EmergencyLog is the immutable audit record of one alert. It is written
// once after notification fan-out and never updated.
type EmergencyLog struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"index:idx_user_created;not null" json:"userId"`

	Latitude        float64 `gorm:"type:decimal(10,8)" json:"latitude"`
	Longitude       float64 `gorm:"type:decimal(11,8)" json:"longitude"`
	LocationAddress string  `gorm:"size:500" json:"locationAddress"`

	AudioText         string      `gorm:"type:text" json:"audioText"`
	SituationAnalysis string      `gorm:"type:text" json:"situationAnalysis"`
	DangerLevel       DangerLevel `gorm:"size:20;index" json:"dangerLevel"`

	SentContacts        string    `gorm:"type:text" json:"-"` // JSON [{"name":...,"phone":...}]
	SentAt              time.Time `json:"sentAt"`
	NotificationSuccess bool      `json:"notificationSuccess"`

	DeviceSerial string    `gorm:"size:100" json:"deviceSerial"`
	CreatedAt    time.Time `gorm:"index:idx_user_created" json:"createdAt"`
}

// SetSentContacts stores the ordered contact list as JSON.
func (l *EmergencyLog) SetSentContacts(contacts []SentContact) error {
	b, err := json.Marshal(contacts)
	if err != nil {
		return err
	}
	l.SentContacts = string(b)
	return nil
}

// SentContactList decodes the persisted contact list.
func (l *EmergencyLog) SentContactList() []SentContact {
	var out []SentContact
	if l.SentContacts == "" {
		return out
	}
	_ = json.Unmarshal([]byte(l.SentContacts), &out)
	return out
}
