package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"

	"github.com/homehub/panel/internal/model"
	apperrors "github.com/homehub/panel/internal/pkg/errors"
	"github.com/homehub/panel/internal/repository"
	"go.uber.org/zap"
)

// inviteAlphabet excludes easily confused characters (0/O, 1/I/L)
const inviteAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

type InviteService struct {
	inviteRepo *repository.InviteRepository
	logger     *zap.Logger
}

func NewInviteService(inviteRepo *repository.InviteRepository, logger *zap.Logger) *InviteService {
	return &InviteService{
		inviteRepo: inviteRepo,
		logger:     logger,
	}
}

// Create mints a new invite code. Only global admins hand out invites.
func (s *InviteService) Create(ctx context.Context, actor *Actor, maxUses int) (*model.Invite, error) {
	if !actor.Role.IsGlobalAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}

	if maxUses <= 0 {
		maxUses = 5
	}

	// Retry on the astronomically unlikely code collision
	for attempt := 0; attempt < 3; attempt++ {
		code, err := generateInviteCode()
		if err != nil {
			s.logger.Error("Failed to generate invite code", zap.Error(err))
			return nil, apperrors.ErrInternal
		}

		invite := &model.Invite{
			Code:      code,
			MaxUses:   maxUses,
			CreatedBy: sql.NullInt64{Int64: actor.UserID, Valid: true},
		}
		err = s.inviteRepo.Create(ctx, invite)
		if err == nil {
			s.logger.Info("Invite created",
				zap.String("code", invite.Code),
				zap.Int("max_uses", maxUses),
				zap.Int64("created_by", actor.UserID),
			)
			return invite, nil
		}
		if !errors.Is(err, repository.ErrCodeTaken) {
			s.logger.Error("Failed to create invite", zap.Error(err))
			return nil, apperrors.ErrInternal
		}
	}

	return nil, apperrors.ErrInternal
}

// List lists all invites
func (s *InviteService) List(ctx context.Context, actor *Actor) ([]*model.Invite, error) {
	if !actor.Role.IsGlobalAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}

	invites, err := s.inviteRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list invites", zap.Error(err))
		return nil, apperrors.ErrInternal
	}
	return invites, nil
}

// Check reports whether a code is currently redeemable, without consuming it
func (s *InviteService) Check(ctx context.Context, code string) (*model.Invite, error) {
	invite, err := s.inviteRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrInviteNotFound) {
			return nil, apperrors.ErrInviteNotFound
		}
		s.logger.Error("Failed to get invite", zap.Error(err))
		return nil, apperrors.ErrInternal
	}
	return invite, nil
}

// Revoke marks an invite revoked; already-registered users are unaffected
func (s *InviteService) Revoke(ctx context.Context, actor *Actor, id int64) error {
	if !actor.Role.IsGlobalAdmin() {
		return apperrors.ErrPermissionDenied
	}

	if err := s.inviteRepo.UpdateStatus(ctx, id, model.InviteStatusRevoked); err != nil {
		if errors.Is(err, repository.ErrInviteNotFound) {
			return apperrors.ErrInviteNotFound
		}
		s.logger.Error("Failed to revoke invite", zap.Error(err))
		return apperrors.ErrInternal
	}

	s.logger.Info("Invite revoked",
		zap.Int64("invite_id", id),
		zap.Int64("revoked_by", actor.UserID),
	)

	return nil
}

// Delete removes an invite record entirely
func (s *InviteService) Delete(ctx context.Context, actor *Actor, id int64) error {
	if !actor.Role.IsGlobalAdmin() {
		return apperrors.ErrPermissionDenied
	}

	if err := s.inviteRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrInviteNotFound) {
			return apperrors.ErrInviteNotFound
		}
		s.logger.Error("Failed to delete invite", zap.Error(err))
		return apperrors.ErrInternal
	}

	return nil
}

// generateInviteCode produces codes of the form INV-XXXX
func generateInviteCode() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = inviteAlphabet[int(b)%len(inviteAlphabet)]
	}
	return fmt.Sprintf("INV-%s", buf), nil
}
