package service

import (
	"context"
	"errors"

	"github.com/homehub/panel/internal/model"
	apperrors "github.com/homehub/panel/internal/pkg/errors"
	"github.com/homehub/panel/internal/repository"
	"go.uber.org/zap"
)

// Actor identifies the acting user for permission checks
type Actor struct {
	UserID int64
	Role   model.GlobalRole
}

// reconcileMembership heals membership drift before a room operation. A room
// with zero members is claimed by the first visitor as owner; a room with
// members absorbs an absent visitor as a plain member. Global owners and
// admins are exempt so their management visits never leak them into member
// lists. The returned membership is nil only for exempt non-members.
//
// The heal and the permission check that follows are separate statements, so
// two first visitors can race; the unique (room, user) constraint makes the
// loser fall through to the membership the winner created.
func reconcileMembership(ctx context.Context, roomRepo *repository.RoomRepository, roomID int64, actor *Actor, logger *zap.Logger) (*model.RoomMember, error) {
	member, err := roomRepo.GetMember(ctx, roomID, actor.UserID)
	if err == nil {
		return member, nil
	}
	if !errors.Is(err, repository.ErrNotMember) {
		logger.Error("Failed to load membership", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	if actor.Role.IsGlobalAdmin() {
		return nil, nil
	}

	count, err := roomRepo.CountMembers(ctx, roomID)
	if err != nil {
		logger.Error("Failed to count members", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	role := model.MemberRoleMember
	if count == 0 {
		role = model.MemberRoleOwner
	}

	member = &model.RoomMember{RoomID: roomID, UserID: actor.UserID, Role: role}
	if err := roomRepo.AddMember(ctx, member); err != nil {
		if errors.Is(err, repository.ErrAlreadyMember) {
			return roomRepo.GetMember(ctx, roomID, actor.UserID)
		}
		logger.Error("Failed to reconcile membership", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	logger.Info("Membership reconciled",
		zap.Int64("room_id", roomID),
		zap.Int64("user_id", actor.UserID),
		zap.String("role", string(role)),
	)

	return member, nil
}
