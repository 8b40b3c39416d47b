package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/homehub/panel/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrDeviceNotFound = errors.New("device not found")
)

type DeviceRepository struct {
	db *sqlx.DB
}

func NewDeviceRepository(db *sqlx.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// Upsert records a login device. Devices are keyed by (user_id, user_agent);
// a repeat login from a known device only refreshes last_active and the IP.
func (r *DeviceRepository) Upsert(ctx context.Context, device *model.Device) error {
	now := time.Now().UTC()

	var existing model.Device
	err := r.db.GetContext(ctx, &existing,
		`SELECT * FROM devices WHERE user_id = ? AND user_agent = ?`,
		device.UserID, device.UserAgent)
	if err == nil {
		device.ID = existing.ID
		device.FirstSeen = existing.FirstSeen
		device.LastActive = now
		_, err = r.db.ExecContext(ctx,
			`UPDATE devices SET device_name = ?, device_type = ?, ip_address = ?, is_active = 1, last_active = ? WHERE id = ?`,
			device.DeviceName, device.DeviceType, device.IPAddress, device.LastActive, device.ID)
		if err != nil {
			return fmt.Errorf("failed to update device: %w", err)
		}
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to look up device: %w", err)
	}

	device.FirstSeen = now
	device.LastActive = now
	device.IsActive = true

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO devices (user_id, device_name, device_type, ip_address, user_agent, is_active, first_seen, last_active)
		 VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
		device.UserID, device.DeviceName, device.DeviceType, device.IPAddress,
		device.UserAgent, device.FirstSeen, device.LastActive)
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}

	device.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get device id: %w", err)
	}

	return nil
}

// ListByUserID lists a user's devices, most recently active first
func (r *DeviceRepository) ListByUserID(ctx context.Context, userID int64) ([]*model.Device, error) {
	var devices []*model.Device
	query := `SELECT * FROM devices WHERE user_id = ? ORDER BY last_active DESC`

	if err := r.db.SelectContext(ctx, &devices, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	return devices, nil
}

// CountActiveByUserID counts a user's active devices
func (r *DeviceRepository) CountActiveByUserID(ctx context.Context, userID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM devices WHERE user_id = ? AND is_active = 1`

	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count devices: %w", err)
	}

	return count, nil
}

// Revoke marks a device inactive
func (r *DeviceRepository) Revoke(ctx context.Context, userID, deviceID int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE devices SET is_active = 0 WHERE id = ? AND user_id = ?`, deviceID, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke device: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrDeviceNotFound
	}

	return nil
}

// Delete removes a device record
func (r *DeviceRepository) Delete(ctx context.Context, userID, deviceID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM devices WHERE id = ? AND user_id = ?`, deviceID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrDeviceNotFound
	}

	return nil
}
