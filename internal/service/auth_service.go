package service

import (
	"context"
	"errors"

	"github.com/homehub/panel/internal/model"
	apperrors "github.com/homehub/panel/internal/pkg/errors"
	"github.com/homehub/panel/internal/pkg/utils"
	"github.com/homehub/panel/internal/repository"
	"go.uber.org/zap"
)

type AuthService struct {
	userRepo    *repository.UserRepository
	inviteRepo  *repository.InviteRepository
	settingRepo *repository.SettingRepository
	deviceRepo  *repository.DeviceRepository
	jwtManager  *utils.JWTManager
	logger      *zap.Logger
}

func NewAuthService(
	userRepo *repository.UserRepository,
	inviteRepo *repository.InviteRepository,
	settingRepo *repository.SettingRepository,
	deviceRepo *repository.DeviceRepository,
	jwtManager *utils.JWTManager,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		inviteRepo:  inviteRepo,
		settingRepo: settingRepo,
		deviceRepo:  deviceRepo,
		jwtManager:  jwtManager,
		logger:      logger,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Handle     string
	Name       string
	Email      string
	Password   string
	InviteCode string
}

// AuthResult represents a successful authentication
type AuthResult struct {
	User      *model.User
	TokenPair *utils.TokenPair
}

// Register registers a new user. The very first account becomes the global
// owner and bypasses the registration gate. Everyone else needs either open
// registration or a redeemable invite; the invite is consumed only after the
// account was actually created.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResult, error) {
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		s.logger.Error("Failed to count users", zap.Error(err))
		return nil, apperrors.ErrInternal
	}
	bootstrap := total == 0

	var invite *model.Invite
	if !bootstrap {
		open, err := s.settingRepo.GetBool(ctx, model.SettingAllowRegistration, false)
		if err != nil {
			s.logger.Error("Failed to read registration setting", zap.Error(err))
			return nil, apperrors.ErrInternal
		}

		if !open {
			if input.InviteCode == "" {
				return nil, apperrors.ErrRegistrationClosed
			}
			invite, err = s.inviteRepo.GetByCode(ctx, input.InviteCode)
			if err != nil {
				if errors.Is(err, repository.ErrInviteNotFound) {
					return nil, apperrors.ErrInviteNotRedeemable
				}
				s.logger.Error("Failed to get invite", zap.Error(err))
				return nil, apperrors.ErrInternal
			}
			if !invite.Redeemable() {
				return nil, apperrors.ErrInviteNotRedeemable
			}
		}
	}

	passwordHash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, apperrors.ErrValidation.WithDetails(map[string]string{
			"password": err.Error(),
		})
	}

	user := &model.User{
		Handle:       input.Handle,
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: passwordHash,
	}
	if bootstrap {
		user.Role = model.GlobalRoleOwner
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrHandleTaken):
			return nil, apperrors.ErrHandleExists
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, apperrors.ErrEmailExists
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	if invite != nil {
		if _, err := s.inviteRepo.Redeem(ctx, invite.Code); err != nil {
			s.logger.Warn("Failed to redeem invite after registration",
				zap.String("code", invite.Code),
				zap.Error(err),
			)
		}
	}

	tokenPair, err := s.jwtManager.GenerateTokenPair(user.ID, user.Handle, user.Role)
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	s.logger.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("handle", user.Handle),
		zap.Bool("bootstrap", bootstrap),
	)

	return &AuthResult{User: user, TokenPair: tokenPair}, nil
}

// LoginInput represents login input
type LoginInput struct {
	Handle    string
	Password  string
	UserAgent string
	IPAddress string
}

// Login authenticates a user and records the device it came from
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByHandle(ctx, input.Handle)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidPassword
		}
		s.logger.Error("Failed to get user", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	if !utils.CheckPassword(input.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidPassword
	}

	if user.Status == model.UserStatusSuspended {
		return nil, apperrors.ErrSuspended
	}

	tokenPair, err := s.jwtManager.GenerateTokenPair(user.ID, user.Handle, user.Role)
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	if err := s.userRepo.UpdateStatus(ctx, user.ID, model.UserStatusOnline); err != nil {
		s.logger.Warn("Failed to update user status", zap.Error(err))
	}

	if input.UserAgent != "" {
		device := &model.Device{
			UserID:     user.ID,
			DeviceName: utils.DeviceNameFromUserAgent(input.UserAgent),
			DeviceType: utils.DeviceTypeFromUserAgent(input.UserAgent),
			IPAddress:  input.IPAddress,
			UserAgent:  input.UserAgent,
		}
		if err := s.deviceRepo.Upsert(ctx, device); err != nil {
			s.logger.Warn("Failed to record login device", zap.Error(err))
		}
	}

	s.logger.Info("User logged in",
		zap.Int64("user_id", user.ID),
		zap.String("handle", user.Handle),
	)

	return &AuthResult{User: user, TokenPair: tokenPair}, nil
}

// RefreshToken exchanges a refresh token for a new token pair. The user's
// current global role is re-read so a role change takes effect on refresh.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, utils.ErrExpiredToken) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		s.logger.Error("Failed to get user", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	if user.Status == model.UserStatusSuspended {
		return nil, apperrors.ErrSuspended
	}

	tokenPair, err := s.jwtManager.GenerateTokenPair(user.ID, user.Handle, user.Role)
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	return tokenPair, nil
}

// Logout marks the user offline
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	if err := s.userRepo.UpdateStatus(ctx, userID, model.UserStatusOffline); err != nil {
		s.logger.Warn("Failed to update user status on logout", zap.Error(err))
	}

	s.logger.Info("User logged out", zap.Int64("user_id", userID))
	return nil
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	UserID          int64
	CurrentPassword string
	NewPassword     string
}

// ChangePassword changes the user's password
func (s *AuthService) ChangePassword(ctx context.Context, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		s.logger.Error("Failed to get user", zap.Error(err))
		return apperrors.ErrInternal
	}

	if !utils.CheckPassword(input.CurrentPassword, user.PasswordHash) {
		return apperrors.ErrInvalidPassword
	}

	if err := utils.ValidatePassword(input.NewPassword); err != nil {
		return apperrors.ErrValidation.WithDetails(map[string]string{
			"new_password": err.Error(),
		})
	}

	passwordHash, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return apperrors.ErrInternal
	}

	if err := s.userRepo.UpdatePassword(ctx, input.UserID, passwordHash); err != nil {
		s.logger.Error("Failed to update password", zap.Error(err))
		return apperrors.ErrInternal
	}

	s.logger.Info("User changed password", zap.Int64("user_id", input.UserID))
	return nil
}

// ValidateToken validates an access token and returns the user it names
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.jwtManager.ValidateAccessToken(token)
	if err != nil {
		if errors.Is(err, utils.ErrExpiredToken) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		s.logger.Error("Failed to get user", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	return user, nil
}

// ListDevices lists the user's known login devices
func (s *AuthService) ListDevices(ctx context.Context, userID int64) ([]*model.Device, error) {
	devices, err := s.deviceRepo.ListByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list devices", zap.Error(err))
		return nil, apperrors.ErrInternal
	}
	return devices, nil
}

// RevokeDevice marks one of the user's devices inactive
func (s *AuthService) RevokeDevice(ctx context.Context, userID, deviceID int64) error {
	if err := s.deviceRepo.Revoke(ctx, userID, deviceID); err != nil {
		if errors.Is(err, repository.ErrDeviceNotFound) {
			return apperrors.ErrNotFound
		}
		s.logger.Error("Failed to revoke device", zap.Error(err))
		return apperrors.ErrInternal
	}
	return nil
}
