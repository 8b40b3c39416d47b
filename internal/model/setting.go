package model

import "time"

type Setting struct {
	ID        int64     `db:"id" json:"id"`
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Well-known setting keys
const (
	SettingAllowRegistration = "allow_registration"
	SettingAIRateLimit       = "ai_rate_limit"
	SettingStoragePerUser    = "storage_per_user"
	SettingMaxDevicesPerUser = "max_devices_per_user"
)
