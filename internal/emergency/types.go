package emergency

import (
	"context"
	"time"

	"github.com/guji3/ping/internal/models"
)

// AlertRequest is one SOS signal as received from a device.
type AlertRequest struct {
	DeviceSerial string
	Latitude     float64
	Longitude    float64
	Audio        []byte
	AudioName    string // original filename, used for format detection
	Test         bool   // drill run: skip audio analysis, still notify and audit
}

// AnalysisResult is the outcome of the two-stage audio analysis. Immutable
// once produced.
type AnalysisResult struct {
	Transcript      string             `json:"transcript"`
	Situation       string             `json:"situation"`
	DangerLevel     models.DangerLevel `json:"dangerLevel"`
	Analysis        string             `json:"analysis"`
	RecommendAction string             `json:"recommendAction"`
}

// AlertResponse is returned to the device after the pipeline completes.
type AlertResponse struct {
	LogID               uint                 `json:"logId"`
	UserName            string               `json:"userName"`
	UserPhone           string               `json:"userPhone"`
	Latitude            float64              `json:"latitude"`
	Longitude           float64              `json:"longitude"`
	LocationAddress     string               `json:"locationAddress"`
	AudioText           string               `json:"audioText"`
	SituationAnalysis   string               `json:"situationAnalysis"`
	DangerLevel         models.DangerLevel   `json:"dangerLevel"`
	SentTo              []models.SentContact `json:"sentTo"`
	NotificationSuccess bool                 `json:"notificationSuccess"`
	CreatedAt           time.Time            `json:"createdAt"`
}

// DeviceResolver maps a device serial to its owner.
type DeviceResolver interface {
	ResolveDevice(ctx context.Context, serial string) (*models.User, error)
}

// ContactSource lists a user's active contacts, highest priority first.
type ContactSource interface {
	ActiveContacts(ctx context.Context, userID uint) ([]models.EmergencyContact, error)
}

// Analyzer runs speech-to-text and situation classification.
type Analyzer interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
	Classify(ctx context.Context, transcript string) (*AnalysisResult, error)
}

// Geocoder resolves coordinates to a display address. It never fails: on
// any problem it returns a fallback string built from the coordinates.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) string
}

// Notifier fans an alert out to every contact and reports delivery per
// phone number.
type Notifier interface {
	Dispatch(ctx context.Context, contacts []models.EmergencyContact, userName string, lat, lon float64, address, situation string) map[string]bool
}

// AuditStore persists the immutable alert record.
type AuditStore interface {
	Insert(ctx context.Context, log *models.EmergencyLog) error
}
