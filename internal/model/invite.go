package model

import (
	"database/sql"
	"time"
)

type InviteStatus string

const (
	InviteStatusActive    InviteStatus = "active"
	InviteStatusExhausted InviteStatus = "exhausted"
	InviteStatusRevoked   InviteStatus = "revoked"
)

type Invite struct {
	ID        int64         `db:"id" json:"id"`
	Code      string        `db:"code" json:"code"`
	Uses      int           `db:"uses" json:"uses"`
	MaxUses   int           `db:"max_uses" json:"max_uses"`
	Status    InviteStatus  `db:"status" json:"status"`
	CreatedBy sql.NullInt64 `db:"created_by" json:"created_by,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// Redeemable reports whether the invite can still be used
func (i *Invite) Redeemable() bool {
	return i.Status == InviteStatusActive && i.Uses < i.MaxUses
}
