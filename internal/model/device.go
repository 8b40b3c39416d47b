package model

import "time"

type Device struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	DeviceName string    `db:"device_name" json:"device_name"`
	DeviceType string    `db:"device_type" json:"device_type"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	FirstSeen  time.Time `db:"first_seen" json:"first_seen"`
	LastActive time.Time `db:"last_active" json:"last_active"`
}
