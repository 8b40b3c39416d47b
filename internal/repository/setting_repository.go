package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/homehub/panel/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrSettingNotFound = errors.New("setting not found")
)

type SettingRepository struct {
	db *sqlx.DB
}

func NewSettingRepository(db *sqlx.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get retrieves a setting by key
func (r *SettingRepository) Get(ctx context.Context, key string) (*model.Setting, error) {
	var setting model.Setting
	query := `SELECT * FROM settings WHERE key = ?`

	if err := r.db.GetContext(ctx, &setting, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettingNotFound
		}
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}

	return &setting, nil
}

// GetString returns the value for key, or fallback when the key is absent
func (r *SettingRepository) GetString(ctx context.Context, key, fallback string) (string, error) {
	setting, err := r.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrSettingNotFound) {
			return fallback, nil
		}
		return "", err
	}
	return setting.Value, nil
}

// GetBool returns the value for key parsed as a bool, or fallback
func (r *SettingRepository) GetBool(ctx context.Context, key string, fallback bool) (bool, error) {
	setting, err := r.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrSettingNotFound) {
			return fallback, nil
		}
		return false, err
	}
	v, err := strconv.ParseBool(setting.Value)
	if err != nil {
		return fallback, nil
	}
	return v, nil
}

// GetInt returns the value for key parsed as an int, or fallback
func (r *SettingRepository) GetInt(ctx context.Context, key string, fallback int) (int, error) {
	setting, err := r.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrSettingNotFound) {
			return fallback, nil
		}
		return 0, err
	}
	v, err := strconv.Atoi(setting.Value)
	if err != nil {
		return fallback, nil
	}
	return v, nil
}

// Set inserts or replaces a setting
func (r *SettingRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	if _, err := r.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}

	return nil
}

// List lists all settings
func (r *SettingRepository) List(ctx context.Context) ([]*model.Setting, error) {
	var settings []*model.Setting
	query := `SELECT * FROM settings ORDER BY key ASC`

	if err := r.db.SelectContext(ctx, &settings, query); err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}

	return settings, nil
}
