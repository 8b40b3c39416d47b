package model

import (
	"database/sql"
	"time"
)

type Message struct {
	ID        int64         `db:"id" json:"id"`
	RoomID    int64         `db:"room_id" json:"room_id"`
	UserID    sql.NullInt64 `db:"user_id" json:"user_id,omitempty"`
	Sender    string        `db:"sender" json:"sender"`
	Text      string        `db:"text" json:"text"`
	Timestamp time.Time     `db:"timestamp" json:"timestamp"`
}

// GetUserID returns the authoring user id, or 0 for bot/system messages.
func (m *Message) GetUserID() int64 {
	if m.UserID.Valid {
		return m.UserID.Int64
	}
	return 0
}

// IsSystemAuthored reports whether the message has no backing user row.
func (m *Message) IsSystemAuthored() bool {
	return !m.UserID.Valid
}

// MessageWithUser includes author info when a user row still exists
type MessageWithUser struct {
	Message
	Handle sql.NullString `db:"handle" json:"handle,omitempty"`
	Name   sql.NullString `db:"name" json:"name,omitempty"`
}

// GetSenderName returns the author display name or the stored sender label
func (m *MessageWithUser) GetSenderName() string {
	if m.Name.Valid && m.Name.String != "" {
		return m.Name.String
	}
	return m.Sender
}
