package model

import (
	"database/sql"
	"time"
)

type GlobalRole string

const (
	GlobalRoleOwner GlobalRole = "owner"
	GlobalRoleAdmin GlobalRole = "admin"
	GlobalRoleUser  GlobalRole = "user"
	GlobalRoleChild GlobalRole = "child"
	GlobalRoleBot   GlobalRole = "bot"
	GlobalRoleGuest GlobalRole = "guest"
)

// IsGlobalAdmin reports whether the role carries cross-room management rights.
// Management rights do NOT include message visibility; see internal/permission.
func (r GlobalRole) IsGlobalAdmin() bool {
	return r == GlobalRoleOwner || r == GlobalRoleAdmin
}

type UserStatus string

const (
	UserStatusOnline    UserStatus = "online"
	UserStatusOffline   UserStatus = "offline"
	UserStatusSuspended UserStatus = "suspended"
)

type User struct {
	ID           int64          `db:"id" json:"id"`
	Handle       string         `db:"handle" json:"handle"`
	Name         string         `db:"name" json:"name"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	Role         GlobalRole     `db:"role" json:"role"`
	Status       UserStatus     `db:"status" json:"status"`
	AIUsage      int            `db:"ai_usage" json:"ai_usage"`
	StorageUsed  float64        `db:"storage_used" json:"storage_used"`
	Bio          sql.NullString `db:"bio" json:"bio,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// GetBio returns bio or empty string
func (u *User) GetBio() string {
	if u.Bio.Valid {
		return u.Bio.String
	}
	return ""
}

// IsSuspended checks if the account is suspended
func (u *User) IsSuspended() bool {
	return u.Status == UserStatusSuspended
}

// UserProfile is a public-facing user profile
type UserProfile struct {
	ID     int64      `json:"id"`
	Handle string     `json:"handle"`
	Name   string     `json:"name"`
	Role   GlobalRole `json:"role"`
	Status UserStatus `json:"status"`
	Bio    string     `json:"bio"`
}

// ToProfile converts User to UserProfile
func (u *User) ToProfile() *UserProfile {
	return &UserProfile{
		ID:     u.ID,
		Handle: u.Handle,
		Name:   u.Name,
		Role:   u.Role,
		Status: u.Status,
		Bio:    u.GetBio(),
	}
}
