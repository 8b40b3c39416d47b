package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/homehub/panel/internal/model"
	apperrors "github.com/homehub/panel/internal/pkg/errors"
	"github.com/homehub/panel/internal/repository"
	"go.uber.org/zap"
)

type UserService struct {
	userRepo *repository.UserRepository
	logger   *zap.Logger
}

func NewUserService(userRepo *repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		s.logger.Error("Failed to get user", zap.Error(err))
		return nil, apperrors.ErrInternal
	}
	return user, nil
}

// GetByHandle retrieves a user by handle
func (s *UserService) GetByHandle(ctx context.Context, handle string) (*model.User, error) {
	user, err := s.userRepo.GetByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		s.logger.Error("Failed to get user", zap.Error(err))
		return nil, apperrors.ErrInternal
	}
	return user, nil
}

// List lists users, newest first
func (s *UserService) List(ctx context.Context, limit, offset int) ([]*model.User, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return nil, apperrors.ErrInternal
	}
	return users, nil
}

// UpdateProfileInput represents profile update input
type UpdateProfileInput struct {
	UserID int64
	Name   *string
	Email  *string
	Bio    *string
}

// UpdateProfile updates a user's own profile fields
func (s *UserService) UpdateProfile(ctx context.Context, input *UpdateProfileInput) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.ErrInternal
	}

	if input.Name != nil && *input.Name != "" {
		user.Name = *input.Name
	}
	if input.Email != nil && *input.Email != "" {
		user.Email = *input.Email
	}
	if input.Bio != nil {
		user.Bio = sql.NullString{String: *input.Bio, Valid: *input.Bio != ""}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, apperrors.ErrEmailExists
		}
		s.logger.Error("Failed to update user", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	return user, nil
}

// SetRole changes target's global role. Only a global owner may grant or
// revoke the owner role, and the last global owner cannot be demoted.
func (s *UserService) SetRole(ctx context.Context, actor *Actor, targetID int64, role model.GlobalRole) (*model.User, error) {
	if !actor.Role.IsGlobalAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.ErrInternal
	}

	touchesOwner := role == model.GlobalRoleOwner || target.Role == model.GlobalRoleOwner
	if touchesOwner && actor.Role != model.GlobalRoleOwner {
		return nil, apperrors.ErrPermissionDenied
	}

	if target.Role == model.GlobalRoleOwner && role != model.GlobalRoleOwner {
		owners, err := s.userRepo.CountByRole(ctx, model.GlobalRoleOwner)
		if err != nil {
			s.logger.Error("Failed to count owners", zap.Error(err))
			return nil, apperrors.ErrInternal
		}
		if owners <= 1 {
			return nil, apperrors.ErrLastOwner
		}
	}

	target.Role = role
	if err := s.userRepo.Update(ctx, target); err != nil {
		s.logger.Error("Failed to update user role", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	s.logger.Info("User role changed",
		zap.Int64("user_id", targetID),
		zap.String("role", string(role)),
		zap.Int64("changed_by", actor.UserID),
	)

	return target, nil
}

// Suspend suspends a user account. Suspended users cannot log in or refresh
// tokens; issued access tokens expire on their own.
func (s *UserService) Suspend(ctx context.Context, actor *Actor, targetID int64) error {
	return s.setSuspended(ctx, actor, targetID, true)
}

// Unsuspend restores a suspended account
func (s *UserService) Unsuspend(ctx context.Context, actor *Actor, targetID int64) error {
	return s.setSuspended(ctx, actor, targetID, false)
}

func (s *UserService) setSuspended(ctx context.Context, actor *Actor, targetID int64, suspended bool) error {
	if !actor.Role.IsGlobalAdmin() {
		return apperrors.ErrPermissionDenied
	}
	if actor.UserID == targetID {
		return apperrors.ErrBadRequest.WithDetails("cannot suspend your own account")
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.ErrInternal
	}

	if target.Role == model.GlobalRoleOwner && actor.Role != model.GlobalRoleOwner {
		return apperrors.ErrPermissionDenied
	}

	if suspended {
		target.Status = model.UserStatusSuspended
	} else {
		target.Status = model.UserStatusOffline
	}

	if err := s.userRepo.Update(ctx, target); err != nil {
		s.logger.Error("Failed to update user status", zap.Error(err))
		return apperrors.ErrInternal
	}

	s.logger.Info("User suspension changed",
		zap.Int64("user_id", targetID),
		zap.Bool("suspended", suspended),
		zap.Int64("changed_by", actor.UserID),
	)

	return nil
}

// SetStatus updates a user's presence status. Suspended accounts keep their
// status so a live connection cannot mask a suspension.
func (s *UserService) SetStatus(ctx context.Context, userID int64, status model.UserStatus) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.ErrInternal
	}

	if user.Status == model.UserStatusSuspended {
		return nil
	}

	if err := s.userRepo.UpdateStatus(ctx, userID, status); err != nil {
		s.logger.Error("Failed to update presence status", zap.Error(err))
		return apperrors.ErrInternal
	}
	return nil
}

// Delete removes a user account. Room memberships cascade; authored messages
// survive with their author nulled out.
func (s *UserService) Delete(ctx context.Context, actor *Actor, targetID int64) error {
	if !actor.Role.IsGlobalAdmin() {
		return apperrors.ErrPermissionDenied
	}
	if actor.UserID == targetID {
		return apperrors.ErrBadRequest.WithDetails("cannot delete your own account")
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.ErrInternal
	}

	if target.Role == model.GlobalRoleOwner {
		owners, err := s.userRepo.CountByRole(ctx, model.GlobalRoleOwner)
		if err != nil {
			return apperrors.ErrInternal
		}
		if owners <= 1 {
			return apperrors.ErrLastOwner
		}
		if actor.Role != model.GlobalRoleOwner {
			return apperrors.ErrPermissionDenied
		}
	}

	if err := s.userRepo.Delete(ctx, targetID); err != nil {
		s.logger.Error("Failed to delete user", zap.Error(err))
		return apperrors.ErrInternal
	}

	s.logger.Info("User deleted",
		zap.Int64("user_id", targetID),
		zap.Int64("deleted_by", actor.UserID),
	)

	return nil
}
