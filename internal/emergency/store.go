package emergency

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/guji3/ping/internal/models"
	apperrors "github.com/guji3/ping/pkg/errors"
)

// Store backs the pipeline's read and write boundaries with gorm. It
// implements DeviceResolver, ContactSource and AuditStore.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ResolveDevice(ctx context.Context, serial string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("device_serial = ?", serial).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, deviceNotRegistered(serial)
		}
		return nil, apperrors.Wrap(err, "device lookup failed")
	}
	return &user, nil
}

func (s *Store) ActiveContacts(ctx context.Context, userID uint) ([]models.EmergencyContact, error) {
	var contacts []models.EmergencyContact
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Order("priority asc").
		Find(&contacts).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "contact lookup failed")
	}
	return contacts, nil
}

func (s *Store) Insert(ctx context.Context, log *models.EmergencyLog) error {
	return s.db.WithContext(ctx).Create(log).Error
}

// RecentCount reports how many of the user's alerts were logged in the
// trailing window.
func (s *Store) RecentCount(ctx context.Context, userID uint, since time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.EmergencyLog{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&n).Error
	return n, err
}

// CountSince is the fleet-wide variant, for the daily stats job.
func (s *Store) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.EmergencyLog{}).
		Where("created_at >= ?", since).
		Count(&n).Error
	return n, err
}
