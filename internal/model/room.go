package model

import (
	"database/sql"
	"time"
)

type Room struct {
	ID                   int64        `db:"id" json:"id"`
	Slug                 string       `db:"slug" json:"slug"`
	Name                 string       `db:"name" json:"name"`
	IsSystem             bool         `db:"is_system" json:"is_system"`
	AIEnabled            bool         `db:"ai_enabled" json:"ai_enabled"`
	NotificationsEnabled bool         `db:"notifications_enabled" json:"notifications_enabled"`
	SelfDestructAt       sql.NullTime `db:"self_destruct_at" json:"self_destruct_at,omitempty"`
	TotalMessages        int          `db:"total_messages" json:"total_messages"`
	TotalAIRequests      int          `db:"total_ai_requests" json:"total_ai_requests"`
	LastActivityAt       time.Time    `db:"last_activity_at" json:"last_activity_at"`
	CreatedAt            time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time    `db:"updated_at" json:"updated_at"`
}

// SelfDestructRemaining returns the seconds until self-destruction, or -1 when
// no timer is set. There is no background sweep; callers only surface the value.
func (r *Room) SelfDestructRemaining(now time.Time) int64 {
	if !r.SelfDestructAt.Valid {
		return -1
	}
	remaining := int64(r.SelfDestructAt.Time.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RoomWithMemberCount includes member count
type RoomWithMemberCount struct {
	Room
	MemberCount int `db:"member_count" json:"member_count"`
}
