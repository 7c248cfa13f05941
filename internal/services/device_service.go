package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/isdelr/taskmaster-be/internal/models"
)

// DeviceServiceProvider defines the interface for notification device services.
type DeviceServiceProvider interface {
	RegisterDevice(ctx context.Context, userID int64, token string, deviceType *string) (models.NotificationDevice, bool, error)
	GetDevices(ctx context.Context, userID int64) ([]models.NotificationDevice, error)
	DeleteDevice(ctx context.Context, userID int64, token string) error
}

// DeviceService stores the push tokens of a user's clients.
type DeviceService struct {
	db *sql.DB
}

// NewDeviceService creates a new DeviceService.
func NewDeviceService(db *sql.DB) *DeviceService {
	return &DeviceService{db: db}
}

const deviceColumns = "id, user_id, device_token, device_type, created_at"

func scanDevice(row interface{ Scan(...any) error }) (models.NotificationDevice, error) {
	var d models.NotificationDevice
	err := row.Scan(&d.ID, &d.UserID, &d.DeviceToken, &d.DeviceType, &d.CreatedAt)
	return d, err
}

// RegisterDevice records token for the user. Registering a token twice
// returns the existing record and created == false.
func (s *DeviceService) RegisterDevice(ctx context.Context, userID int64, token string, deviceType *string) (models.NotificationDevice, bool, error) {
	if token == "" {
		return models.NotificationDevice{}, false, fmt.Errorf("device token is required: %w", ErrValidation)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO notification_devices (user_id, device_token, device_type) VALUES (?, ?, ?) ON CONFLICT (user_id, device_token) DO NOTHING",
		userID, token, deviceType)
	if err != nil {
		return models.NotificationDevice{}, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.NotificationDevice{}, false, err
	}

	d, err := scanDevice(s.db.QueryRowContext(ctx,
		"SELECT "+deviceColumns+" FROM notification_devices WHERE user_id = ? AND device_token = ?", userID, token))
	if err != nil {
		return models.NotificationDevice{}, false, err
	}
	return d, n > 0, nil
}

// GetDevices lists the user's registered devices.
func (s *DeviceService) GetDevices(ctx context.Context, userID int64) ([]models.NotificationDevice, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+deviceColumns+" FROM notification_devices WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	devices := []models.NotificationDevice{}
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// DeleteDevice unregisters a token.
func (s *DeviceService) DeleteDevice(ctx context.Context, userID int64, token string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM notification_devices WHERE user_id = ? AND device_token = ?", userID, token)
	if err != nil {
		return err
	}
	if err := expectRow(res, "device", token); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("device token not registered: %w", ErrNotFound)
		}
		return err
	}
	return nil
}
