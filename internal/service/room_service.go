package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/homehub/panel/internal/model"
	"github.com/homehub/panel/internal/permission"
	apperrors "github.com/homehub/panel/internal/pkg/errors"
	"github.com/homehub/panel/internal/pkg/utils"
	"github.com/homehub/panel/internal/repository"
	"go.uber.org/zap"
)

// DefaultRoomSlug is the system room every hub starts with. It is recreated
// on listing if someone deletes it from the database by hand.
const DefaultRoomSlug = "general"

type RoomService struct {
	roomRepo    *repository.RoomRepository
	userRepo    *repository.UserRepository
	messageRepo *repository.MessageRepository
	logger      *zap.Logger
}

func NewRoomService(
	roomRepo *repository.RoomRepository,
	userRepo *repository.UserRepository,
	messageRepo *repository.MessageRepository,
	logger *zap.Logger,
) *RoomService {
	return &RoomService{
		roomRepo:    roomRepo,
		userRepo:    userRepo,
		messageRepo: messageRepo,
		logger:      logger,
	}
}

func (s *RoomService) reconcileMembership(ctx context.Context, roomID int64, actor *Actor) (*model.RoomMember, error) {
	return reconcileMembership(ctx, s.roomRepo, roomID, actor, s.logger)
}

// authorize runs the permission evaluator and converts denials into the HTTP
// error taxonomy.
func authorize(action permission.Action, roomID int64, membership *model.RoomMember, actor *Actor) error {
	if err := permission.Evaluate(action, roomID, membership, actor.Role); err != nil {
		var forbidden *permission.Forbidden
		if errors.As(err, &forbidden) {
			return forbidden.AppError()
		}
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// CreateRoomInput represents room creation input
type CreateRoomInput struct {
	Name      string
	Slug      string
	AIEnabled bool
	Actor     *Actor
}

// Create creates a new room with the creator as its owner
func (s *RoomService) Create(ctx context.Context, input *CreateRoomInput) (*model.Room, error) {
	slug := input.Slug
	if slug == "" {
		slug = utils.Slugify(input.Name)
	}
	if slug == "" {
		return nil, apperrors.ErrValidation.WithDetails("room name yields an empty slug")
	}

	room := &model.Room{
		Slug:                 slug,
		Name:                 input.Name,
		AIEnabled:            input.AIEnabled,
		NotificationsEnabled: true,
	}

	if err := s.roomRepo.Create(ctx, room); err != nil {
		if errors.Is(err, repository.ErrSlugTaken) {
			return nil, apperrors.ErrSlugExists
		}
		s.logger.Error("Failed to create room", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	member := &model.RoomMember{
		RoomID: room.ID,
		UserID: input.Actor.UserID,
		Role:   model.MemberRoleOwner,
	}
	if err := s.roomRepo.AddMember(ctx, member); err != nil {
		s.logger.Error("Failed to add creator as owner", zap.Error(err))
		_ = s.roomRepo.Delete(ctx, room.ID)
		return nil, apperrors.ErrInternal
	}

	s.logger.Info("Room created",
		zap.Int64("room_id", room.ID),
		zap.String("slug", room.Slug),
		zap.Int64("owner_id", input.Actor.UserID),
	)

	return room, nil
}

// GetRoom retrieves a room after healing the actor's membership. Ordinary
// users must be (or become) members; global owners and admins may inspect
// metadata without joining.
func (s *RoomService) GetRoom(ctx context.Context, roomID int64, actor *Actor) (*model.Room, *model.RoomMember, error) {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}

	member, err := s.reconcileMembership(ctx, roomID, actor)
	if err != nil {
		return nil, nil, err
	}

	if err := authorize(permission.ActionViewRoom, roomID, member, actor); err != nil {
		return nil, nil, err
	}

	return room, member, nil
}

// GetRoomBySlug resolves a slug then delegates to GetRoom
func (s *RoomService) GetRoomBySlug(ctx context.Context, slug string, actor *Actor) (*model.Room, *model.RoomMember, error) {
	room, err := s.roomRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, nil, apperrors.ErrRoomNotFound
		}
		s.logger.Error("Failed to get room", zap.Error(err))
		return nil, nil, apperrors.ErrInternal
	}
	return s.GetRoom(ctx, room.ID, actor)
}

// ListForUser lists the rooms the user belongs to. The default room is
// recreated first if it went missing, then the user is absorbed into it so a
// fresh hub always shows at least one room. Global admins and owners are
// never absorbed, so a membership listing would come back empty for them;
// they see every room's metadata instead.
func (s *RoomService) ListForUser(ctx context.Context, actor *Actor, limit, offset int) ([]*model.RoomWithMemberCount, error) {
	if err := s.ensureDefaultRoom(ctx, actor); err != nil {
		return nil, err
	}

	if actor.Role.IsGlobalAdmin() {
		return s.ListAll(ctx, limit, offset)
	}

	rooms, err := s.roomRepo.ListByUserID(ctx, actor.UserID, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list user rooms", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	return rooms, nil
}

// ListAll lists every room with member counts. This is the management
// surface: it never reconciles membership and never exposes message content,
// so a global admin can see that rooms exist without joining any of them.
func (s *RoomService) ListAll(ctx context.Context, limit, offset int) ([]*model.RoomWithMemberCount, error) {
	rooms, err := s.roomRepo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list rooms", zap.Error(err))
		return nil, apperrors.ErrInternal
	}
	return rooms, nil
}

func (s *RoomService) ensureDefaultRoom(ctx context.Context, actor *Actor) error {
	room, err := s.roomRepo.GetBySlug(ctx, DefaultRoomSlug)
	if errors.Is(err, repository.ErrRoomNotFound) {
		room = &model.Room{
			Slug:                 DefaultRoomSlug,
			Name:                 "General",
			IsSystem:             true,
			AIEnabled:            true,
			NotificationsEnabled: true,
		}
		if err := s.roomRepo.Create(ctx, room); err != nil {
			if errors.Is(err, repository.ErrSlugTaken) {
				return nil
			}
			s.logger.Error("Failed to create default room", zap.Error(err))
			return apperrors.ErrInternal
		}
		s.logger.Info("Default room created", zap.Int64("room_id", room.ID))
	} else if err != nil {
		s.logger.Error("Failed to look up default room", zap.Error(err))
		return apperrors.ErrInternal
	}

	if _, err := s.reconcileMembership(ctx, room.ID, actor); err != nil {
		return err
	}

	return nil
}

// ListMembers lists room members. Visibility requires actual membership; a
// global admin who wants the roster has to join the room first.
func (s *RoomService) ListMembers(ctx context.Context, roomID int64, actor *Actor) ([]*model.RoomMemberWithUser, error) {
	if _, err := s.getRoom(ctx, roomID); err != nil {
		return nil, err
	}

	member, err := s.reconcileMembership(ctx, roomID, actor)
	if err != nil {
		return nil, err
	}

	if err := authorize(permission.ActionListMembers, roomID, member, actor); err != nil {
		return nil, err
	}

	members, err := s.roomRepo.ListMembers(ctx, roomID)
	if err != nil {
		s.logger.Error("Failed to list members", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	return members, nil
}

// AddMember adds target to the room with the given role
func (s *RoomService) AddMember(ctx context.Context, roomID int64, actor *Actor, targetID int64, role model.MemberRole) error {
	if _, err := s.getRoom(ctx, roomID); err != nil {
		return err
	}

	member, err := s.reconcileMembership(ctx, roomID, actor)
	if err != nil {
		return err
	}

	if err := authorize(permission.ActionAddMember, roomID, member, actor); err != nil {
		return err
	}

	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.ErrInternal
	}

	if role == "" {
		role = model.MemberRoleMember
	}

	if err := s.roomRepo.AddMember(ctx, &model.RoomMember{RoomID: roomID, UserID: targetID, Role: role}); err != nil {
		if errors.Is(err, repository.ErrAlreadyMember) {
			return apperrors.ErrAlreadyRoomMember
		}
		s.logger.Error("Failed to add member", zap.Error(err))
		return apperrors.ErrInternal
	}

	s.logger.Info("Member added",
		zap.Int64("room_id", roomID),
		zap.Int64("user_id", targetID),
		zap.Int64("added_by", actor.UserID),
	)

	return nil
}

// UpdateMemberRole changes target's role within the room
func (s *RoomService) UpdateMemberRole(ctx context.Context, roomID int64, actor *Actor, targetID int64, role model.MemberRole) error {
	if _, err := s.getRoom(ctx, roomID); err != nil {
		return err
	}

	member, err := s.reconcileMembership(ctx, roomID, actor)
	if err != nil {
		return err
	}

	if err := authorize(permission.ActionUpdateMemberRole, roomID, member, actor); err != nil {
		return err
	}

	if err := s.roomRepo.UpdateMemberRole(ctx, roomID, targetID, role); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotMember):
			return apperrors.ErrNotRoomMember
		case errors.Is(err, repository.ErrLastOwner):
			return apperrors.ErrLastOwner
		}
		s.logger.Error("Failed to update member role", zap.Error(err))
		return apperrors.ErrInternal
	}

	return nil
}

// RemoveMember removes target from the room. Leaving (actor == target) is
// always permitted; the last-owner guard in the store still applies.
func (s *RoomService) RemoveMember(ctx context.Context, roomID int64, actor *Actor, targetID int64) error {
	if _, err := s.getRoom(ctx, roomID); err != nil {
		return err
	}

	member, err := s.reconcileMembership(ctx, roomID, actor)
	if err != nil {
		return err
	}

	if err := permission.EvaluateRemoveMember(roomID, actor.UserID, targetID, member, actor.Role); err != nil {
		var forbidden *permission.Forbidden
		if errors.As(err, &forbidden) {
			return forbidden.AppError()
		}
		return apperrors.ErrPermissionDenied
	}

	if err := s.roomRepo.RemoveMember(ctx, roomID, targetID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotMember):
			return apperrors.ErrNotRoomMember
		case errors.Is(err, repository.ErrLastOwner):
			return apperrors.ErrLastOwner
		}
		s.logger.Error("Failed to remove member", zap.Error(err))
		return apperrors.ErrInternal
	}

	s.logger.Info("Member removed",
		zap.Int64("room_id", roomID),
		zap.Int64("user_id", targetID),
		zap.Int64("removed_by", actor.UserID),
	)

	return nil
}

// UpdateRoomInput represents room settings update input
type UpdateRoomInput struct {
	RoomID               int64
	Actor                *Actor
	Name                 *string
	AIEnabled            *bool
	NotificationsEnabled *bool
}

// UpdateSettings updates a room's mutable settings
func (s *RoomService) UpdateSettings(ctx context.Context, input *UpdateRoomInput) (*model.Room, error) {
	room, err := s.getRoom(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}

	member, err := s.reconcileMembership(ctx, input.RoomID, input.Actor)
	if err != nil {
		return nil, err
	}

	if err := authorize(permission.ActionUpdateSettings, input.RoomID, member, input.Actor); err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != "" {
		room.Name = *input.Name
	}
	if input.AIEnabled != nil {
		room.AIEnabled = *input.AIEnabled
	}
	if input.NotificationsEnabled != nil {
		room.NotificationsEnabled = *input.NotificationsEnabled
	}

	if err := s.roomRepo.Update(ctx, room); err != nil {
		s.logger.Error("Failed to update room", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	return room, nil
}

// ScheduleSelfDestruct arms the room's self-destruct timer. There is no
// background sweep; the deadline is only surfaced to clients, which delete
// the room explicitly once it passes.
func (s *RoomService) ScheduleSelfDestruct(ctx context.Context, roomID int64, actor *Actor, after time.Duration) (*model.Room, error) {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	member, err := s.reconcileMembership(ctx, roomID, actor)
	if err != nil {
		return nil, err
	}

	if err := authorize(permission.ActionUpdateSettings, roomID, member, actor); err != nil {
		return nil, err
	}

	room.SelfDestructAt = sql.NullTime{Time: time.Now().UTC().Add(after), Valid: true}
	if err := s.roomRepo.Update(ctx, room); err != nil {
		s.logger.Error("Failed to schedule self-destruct", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	s.logger.Info("Self-destruct scheduled",
		zap.Int64("room_id", roomID),
		zap.Time("at", room.SelfDestructAt.Time),
	)

	return room, nil
}

// CancelSelfDestruct disarms the room's self-destruct timer
func (s *RoomService) CancelSelfDestruct(ctx context.Context, roomID int64, actor *Actor) (*model.Room, error) {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	member, err := s.reconcileMembership(ctx, roomID, actor)
	if err != nil {
		return nil, err
	}

	if err := authorize(permission.ActionUpdateSettings, roomID, member, actor); err != nil {
		return nil, err
	}

	room.SelfDestructAt = sql.NullTime{}
	if err := s.roomRepo.Update(ctx, room); err != nil {
		s.logger.Error("Failed to cancel self-destruct", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	return room, nil
}

// Delete deletes a room. System rooms are refused outright, before any
// permission check, so even a global owner sees the system-room error.
func (s *RoomService) Delete(ctx context.Context, roomID int64, actor *Actor) error {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return err
	}

	if room.IsSystem {
		return apperrors.ErrSystemRoom
	}

	member, err := s.reconcileMembership(ctx, roomID, actor)
	if err != nil {
		return err
	}

	if err := authorize(permission.ActionDeleteRoom, roomID, member, actor); err != nil {
		return err
	}

	if err := s.roomRepo.Delete(ctx, roomID); err != nil {
		s.logger.Error("Failed to delete room", zap.Error(err))
		return apperrors.ErrInternal
	}

	s.logger.Info("Room deleted",
		zap.Int64("room_id", roomID),
		zap.Int64("deleted_by", actor.UserID),
	)

	return nil
}

// GetMember returns the actor's own membership in a room, without healing
func (s *RoomService) GetMember(ctx context.Context, roomID, userID int64) (*model.RoomMember, error) {
	member, err := s.roomRepo.GetMember(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotMember) {
			return nil, apperrors.ErrNotRoomMember
		}
		return nil, apperrors.ErrInternal
	}
	return member, nil
}

func (s *RoomService) getRoom(ctx context.Context, roomID int64) (*model.Room, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, apperrors.ErrRoomNotFound
		}
		s.logger.Error("Failed to get room", zap.Error(err))
		return nil, apperrors.ErrInternal
	}
	return room, nil
}
