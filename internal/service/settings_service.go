package service

import (
	"context"
	"strconv"

	"github.com/homehub/panel/internal/model"
	apperrors "github.com/homehub/panel/internal/pkg/errors"
	"github.com/homehub/panel/internal/repository"
	"go.uber.org/zap"
)

// HubSettings is the typed view over the settings table
type HubSettings struct {
	AllowRegistration bool `json:"allow_registration"`
	AIRateLimit       int  `json:"ai_rate_limit"`
	StoragePerUser    int  `json:"storage_per_user"`
	MaxDevicesPerUser int  `json:"max_devices_per_user"`
}

// Defaults applied when a key was never written
const (
	defaultAIRateLimit       = 30
	defaultStoragePerUser    = 1024
	defaultMaxDevicesPerUser = 10
)

type SettingsService struct {
	settingRepo *repository.SettingRepository
	logger      *zap.Logger
}

func NewSettingsService(settingRepo *repository.SettingRepository, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		settingRepo: settingRepo,
		logger:      logger,
	}
}

// Get returns the hub settings with defaults filled in
func (s *SettingsService) Get(ctx context.Context) (*HubSettings, error) {
	allow, err := s.settingRepo.GetBool(ctx, model.SettingAllowRegistration, false)
	if err != nil {
		s.logger.Error("Failed to read settings", zap.Error(err))
		return nil, apperrors.ErrInternal
	}
	rate, err := s.settingRepo.GetInt(ctx, model.SettingAIRateLimit, defaultAIRateLimit)
	if err != nil {
		return nil, apperrors.ErrInternal
	}
	storage, err := s.settingRepo.GetInt(ctx, model.SettingStoragePerUser, defaultStoragePerUser)
	if err != nil {
		return nil, apperrors.ErrInternal
	}
	devices, err := s.settingRepo.GetInt(ctx, model.SettingMaxDevicesPerUser, defaultMaxDevicesPerUser)
	if err != nil {
		return nil, apperrors.ErrInternal
	}

	return &HubSettings{
		AllowRegistration: allow,
		AIRateLimit:       rate,
		StoragePerUser:    storage,
		MaxDevicesPerUser: devices,
	}, nil
}

// UpdateSettingsInput represents settings update input; nil fields are left
// unchanged.
type UpdateSettingsInput struct {
	Actor             *Actor
	AllowRegistration *bool
	AIRateLimit       *int
	StoragePerUser    *int
	MaxDevicesPerUser *int
}

// Update writes the supplied hub settings. Global admins only.
func (s *SettingsService) Update(ctx context.Context, input *UpdateSettingsInput) (*HubSettings, error) {
	if !input.Actor.Role.IsGlobalAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}

	if input.AllowRegistration != nil {
		if err := s.settingRepo.Set(ctx, model.SettingAllowRegistration, strconv.FormatBool(*input.AllowRegistration)); err != nil {
			s.logger.Error("Failed to write setting", zap.Error(err))
			return nil, apperrors.ErrInternal
		}
	}
	if input.AIRateLimit != nil {
		if *input.AIRateLimit < 0 {
			return nil, apperrors.ErrValidation.WithDetails("ai_rate_limit must not be negative")
		}
		if err := s.settingRepo.Set(ctx, model.SettingAIRateLimit, strconv.Itoa(*input.AIRateLimit)); err != nil {
			return nil, apperrors.ErrInternal
		}
	}
	if input.StoragePerUser != nil {
		if *input.StoragePerUser < 0 {
			return nil, apperrors.ErrValidation.WithDetails("storage_per_user must not be negative")
		}
		if err := s.settingRepo.Set(ctx, model.SettingStoragePerUser, strconv.Itoa(*input.StoragePerUser)); err != nil {
			return nil, apperrors.ErrInternal
		}
	}
	if input.MaxDevicesPerUser != nil {
		if *input.MaxDevicesPerUser < 1 {
			return nil, apperrors.ErrValidation.WithDetails("max_devices_per_user must be at least 1")
		}
		if err := s.settingRepo.Set(ctx, model.SettingMaxDevicesPerUser, strconv.Itoa(*input.MaxDevicesPerUser)); err != nil {
			return nil, apperrors.ErrInternal
		}
	}

	s.logger.Info("Hub settings updated", zap.Int64("updated_by", input.Actor.UserID))

	return s.Get(ctx)
}
