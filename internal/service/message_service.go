package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/homehub/panel/internal/model"
	"github.com/homehub/panel/internal/permission"
	apperrors "github.com/homehub/panel/internal/pkg/errors"
	"github.com/homehub/panel/internal/repository"
	"go.uber.org/zap"
)

// AIResponder produces assistant replies for AI-enabled rooms. The message
// service treats it as best effort; a failing provider never blocks the
// user's own message.
type AIResponder interface {
	Reply(ctx context.Context, history []*model.MessageWithUser, prompt string) (string, error)
}

type MessageService struct {
	roomRepo    *repository.RoomRepository
	messageRepo *repository.MessageRepository
	userRepo    *repository.UserRepository
	ai          AIResponder
	logger      *zap.Logger
}

func NewMessageService(
	roomRepo *repository.RoomRepository,
	messageRepo *repository.MessageRepository,
	userRepo *repository.UserRepository,
	ai AIResponder,
	logger *zap.Logger,
) *MessageService {
	return &MessageService{
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		ai:          ai,
		logger:      logger,
	}
}

// replyContextSize bounds how much history is handed to the AI provider
const replyContextSize = 20

// List retrieves room messages oldest first. Reading requires actual
// membership; an absent visitor is absorbed first, a global admin who never
// joined is refused.
func (s *MessageService) List(ctx context.Context, roomID int64, actor *Actor, limit int, before int64) ([]*model.MessageWithUser, error) {
	if err := s.checkRoom(ctx, roomID); err != nil {
		return nil, err
	}

	member, err := s.reconcile(ctx, roomID, actor)
	if err != nil {
		return nil, err
	}

	if err := authorize(permission.ActionViewMessages, roomID, member, actor); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	messages, err := s.messageRepo.ListByRoomID(ctx, roomID, limit, before)
	if err != nil {
		s.logger.Error("Failed to list messages", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	return messages, nil
}

// PostMessageInput represents message creation input
type PostMessageInput struct {
	RoomID int64
	Actor  *Actor
	Text   string
}

// PostResult carries the posted message and the assistant reply, when one
// was produced.
type PostResult struct {
	Message *model.Message
	Reply   *model.Message
}

// Post appends a message to the room. In AI-enabled rooms an assistant reply
// is attempted afterwards; provider failures are logged and swallowed.
func (s *MessageService) Post(ctx context.Context, input *PostMessageInput) (*PostResult, error) {
	room, err := s.roomRepo.GetByID(ctx, input.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, apperrors.ErrRoomNotFound
		}
		s.logger.Error("Failed to get room", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	member, err := s.reconcile(ctx, input.RoomID, input.Actor)
	if err != nil {
		return nil, err
	}

	if err := authorize(permission.ActionPostMessage, input.RoomID, member, input.Actor); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, input.Actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.ErrInternal
	}

	msg := &model.Message{
		RoomID: input.RoomID,
		UserID: sql.NullInt64{Int64: user.ID, Valid: true},
		Sender: user.Handle,
		Text:   input.Text,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		s.logger.Error("Failed to create message", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	if err := s.roomRepo.BumpActivity(ctx, input.RoomID, false); err != nil {
		s.logger.Warn("Failed to bump room activity", zap.Error(err))
	}

	result := &PostResult{Message: msg}

	if room.AIEnabled && s.ai != nil {
		if reply := s.assistantReply(ctx, room, user, input.Text); reply != nil {
			result.Reply = reply
		}
	}

	return result, nil
}

func (s *MessageService) assistantReply(ctx context.Context, room *model.Room, user *model.User, prompt string) *model.Message {
	history, err := s.messageRepo.ListByRoomID(ctx, room.ID, replyContextSize, 0)
	if err != nil {
		s.logger.Warn("Failed to load reply context", zap.Error(err))
		history = nil
	}

	text, err := s.ai.Reply(ctx, history, prompt)
	if err != nil {
		s.logger.Warn("AI reply failed",
			zap.Int64("room_id", room.ID),
			zap.Error(err),
		)
		return nil
	}

	reply := &model.Message{
		RoomID: room.ID,
		Sender: "assistant",
		Text:   text,
	}
	if err := s.messageRepo.Create(ctx, reply); err != nil {
		s.logger.Error("Failed to store AI reply", zap.Error(err))
		return nil
	}

	if err := s.roomRepo.BumpActivity(ctx, room.ID, true); err != nil {
		s.logger.Warn("Failed to bump room activity", zap.Error(err))
	}
	if err := s.userRepo.IncrementAIUsage(ctx, user.ID); err != nil {
		s.logger.Warn("Failed to increment AI usage", zap.Error(err))
	}

	return reply
}

// PostSystem appends a system-authored message, bypassing permission checks.
// Used for lifecycle notices like member joins.
func (s *MessageService) PostSystem(ctx context.Context, roomID int64, text string) (*model.Message, error) {
	msg := &model.Message{
		RoomID: roomID,
		Sender: "system",
		Text:   text,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		s.logger.Error("Failed to create system message", zap.Error(err))
		return nil, apperrors.ErrInternal
	}
	return msg, nil
}

// Count returns the number of messages in a room
func (s *MessageService) Count(ctx context.Context, roomID int64) (int, error) {
	count, err := s.messageRepo.CountByRoomID(ctx, roomID)
	if err != nil {
		s.logger.Error("Failed to count messages", zap.Error(err))
		return 0, apperrors.ErrInternal
	}
	return count, nil
}

func (s *MessageService) checkRoom(ctx context.Context, roomID int64) error {
	if _, err := s.roomRepo.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return apperrors.ErrRoomNotFound
		}
		s.logger.Error("Failed to get room", zap.Error(err))
		return apperrors.ErrInternal
	}
	return nil
}

func (s *MessageService) reconcile(ctx context.Context, roomID int64, actor *Actor) (*model.RoomMember, error) {
	return reconcileMembership(ctx, s.roomRepo, roomID, actor, s.logger)
}
