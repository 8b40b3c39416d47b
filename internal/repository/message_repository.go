package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/homehub/panel/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrMessageNotFound = errors.New("message not found")
)

type MessageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create appends a message to a room. Messages are never edited or deleted
// individually; they only go away when their room does.
func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO messages (room_id, user_id, sender, text, timestamp)
		VALUES (?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		msg.RoomID,
		msg.UserID,
		msg.Sender,
		msg.Text,
		msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	msg.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get message id: %w", err)
	}

	return nil
}

// GetByID retrieves a message by ID
func (r *MessageRepository) GetByID(ctx context.Context, id int64) (*model.Message, error) {
	var msg model.Message
	query := `SELECT * FROM messages WHERE id = ?`

	if err := r.db.GetContext(ctx, &msg, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to get message by id: %w", err)
	}

	return &msg, nil
}

// ListByRoomID retrieves messages for a room, oldest first, ordered by
// (timestamp, id). before limits the page to messages with id < before.
func (r *MessageRepository) ListByRoomID(ctx context.Context, roomID int64, limit int, before int64) ([]*model.MessageWithUser, error) {
	query := `
		SELECT m.*, u.handle, u.name
		FROM messages m
		LEFT JOIN users u ON m.user_id = u.id
		WHERE m.room_id = ?`

	args := []interface{}{roomID}
	if before > 0 {
		query += ` AND m.id < ?`
		args = append(args, before)
	}
	query += ` ORDER BY m.timestamp ASC, m.id ASC LIMIT ?`
	args = append(args, limit)

	var messages []*model.MessageWithUser
	if err := r.db.SelectContext(ctx, &messages, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return messages, nil
}

// CountByRoomID counts messages in a room
func (r *MessageRepository) CountByRoomID(ctx context.Context, roomID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM messages WHERE room_id = ?`

	if err := r.db.GetContext(ctx, &count, query, roomID); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}

	return count, nil
}
