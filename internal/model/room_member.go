package model

import (
	"database/sql"
	"time"
)

type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

type RoomMember struct {
	ID        int64      `db:"id" json:"id"`
	RoomID    int64      `db:"room_id" json:"room_id"`
	UserID    int64      `db:"user_id" json:"user_id"`
	Role      MemberRole `db:"role" json:"role"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// IsOwner checks if member is room owner
func (rm *RoomMember) IsOwner() bool {
	return rm.Role == MemberRoleOwner
}

// IsAdmin checks if member is room admin
func (rm *RoomMember) IsAdmin() bool {
	return rm.Role == MemberRoleAdmin
}

// CanModerate checks if member can moderate (owner or admin)
func (rm *RoomMember) CanModerate() bool {
	return rm.Role == MemberRoleOwner || rm.Role == MemberRoleAdmin
}

// RoomMemberWithUser includes user info
type RoomMemberWithUser struct {
	RoomMember
	Handle     string         `db:"handle" json:"handle"`
	Name       string         `db:"name" json:"name"`
	GlobalRole GlobalRole     `db:"global_role" json:"global_role"`
	Status     UserStatus     `db:"status" json:"status"`
	Bio        sql.NullString `db:"bio" json:"-"`
}
