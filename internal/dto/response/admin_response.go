package response

import (
	"time"

	"github.com/homehub/panel/internal/model"
)

// InviteResponse represents an invite response
type InviteResponse struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	Uses      int    `json:"uses"`
	MaxUses   int    `json:"max_uses"`
	Status    string `json:"status"`
	CreatedBy int64  `json:"created_by,omitempty"`
	CreatedAt string `json:"created_at"`
}

// NewInviteResponse creates an invite response from model
func NewInviteResponse(i *model.Invite) *InviteResponse {
	resp := &InviteResponse{
		ID:        i.ID,
		Code:      i.Code,
		Uses:      i.Uses,
		MaxUses:   i.MaxUses,
		Status:    string(i.Status),
		CreatedAt: i.CreatedAt.Format(time.RFC3339),
	}
	if i.CreatedBy.Valid {
		resp.CreatedBy = i.CreatedBy.Int64
	}
	return resp
}

// NewInviteListResponse converts invites for listing
func NewInviteListResponse(invites []*model.Invite) []*InviteResponse {
	items := make([]*InviteResponse, len(invites))
	for i, inv := range invites {
		items[i] = NewInviteResponse(inv)
	}
	return items
}

// UserListResponse represents a user list
type UserListResponse struct {
	Users []*UserResponse `json:"users"`
	Total int             `json:"total"`
}

// NewUserListResponse creates a user list response
func NewUserListResponse(users []*model.User) *UserListResponse {
	items := make([]*UserResponse, len(users))
	for i, u := range users {
		items[i] = NewUserResponse(u)
	}
	return &UserListResponse{Users: items, Total: len(items)}
}
