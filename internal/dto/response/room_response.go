package response

import (
	"time"

	"github.com/homehub/panel/internal/model"
)

// RoomResponse represents a room response
type RoomResponse struct {
	ID                   int64  `json:"id"`
	Slug                 string `json:"slug"`
	Name                 string `json:"name"`
	IsSystem             bool   `json:"is_system"`
	AIEnabled            bool   `json:"ai_enabled"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
	SelfDestructIn       int64  `json:"self_destruct_in"`
	TotalMessages        int    `json:"total_messages"`
	MemberCount          int    `json:"member_count"`
	LastActivityAt       string `json:"last_activity_at"`
	CreatedAt            string `json:"created_at"`
}

// NewRoomResponse creates a room response from model
func NewRoomResponse(room *model.RoomWithMemberCount) *RoomResponse {
	return &RoomResponse{
		ID:                   room.ID,
		Slug:                 room.Slug,
		Name:                 room.Name,
		IsSystem:             room.IsSystem,
		AIEnabled:            room.AIEnabled,
		NotificationsEnabled: room.NotificationsEnabled,
		SelfDestructIn:       room.SelfDestructRemaining(time.Now().UTC()),
		TotalMessages:        room.TotalMessages,
		MemberCount:          room.MemberCount,
		LastActivityAt:       room.LastActivityAt.Format(time.RFC3339),
		CreatedAt:            room.CreatedAt.Format(time.RFC3339),
	}
}

// RoomDetailResponse represents a room with the viewer's own membership
type RoomDetailResponse struct {
	ID                   int64  `json:"id"`
	Slug                 string `json:"slug"`
	Name                 string `json:"name"`
	IsSystem             bool   `json:"is_system"`
	AIEnabled            bool   `json:"ai_enabled"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
	SelfDestructIn       int64  `json:"self_destruct_in"`
	TotalMessages        int    `json:"total_messages"`
	TotalAIRequests      int    `json:"total_ai_requests"`
	MyRole               string `json:"my_role,omitempty"`
	LastActivityAt       string `json:"last_activity_at"`
	CreatedAt            string `json:"created_at"`
	UpdatedAt            string `json:"updated_at"`
}

// NewRoomDetailResponse creates a detail response; member may be nil for
// global admins inspecting rooms they do not belong to.
func NewRoomDetailResponse(room *model.Room, member *model.RoomMember) *RoomDetailResponse {
	resp := &RoomDetailResponse{
		ID:                   room.ID,
		Slug:                 room.Slug,
		Name:                 room.Name,
		IsSystem:             room.IsSystem,
		AIEnabled:            room.AIEnabled,
		NotificationsEnabled: room.NotificationsEnabled,
		SelfDestructIn:       room.SelfDestructRemaining(time.Now().UTC()),
		TotalMessages:        room.TotalMessages,
		TotalAIRequests:      room.TotalAIRequests,
		LastActivityAt:       room.LastActivityAt.Format(time.RFC3339),
		CreatedAt:            room.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            room.UpdatedAt.Format(time.RFC3339),
	}
	if member != nil {
		resp.MyRole = string(member.Role)
	}
	return resp
}

// RoomMemberResponse represents a room member response
type RoomMemberResponse struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	Handle     string `json:"handle"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	GlobalRole string `json:"global_role"`
	Status     string `json:"status"`
	JoinedAt   string `json:"joined_at"`
}

// NewRoomMemberResponse creates a room member response from model
func NewRoomMemberResponse(m *model.RoomMemberWithUser) *RoomMemberResponse {
	return &RoomMemberResponse{
		ID:         m.ID,
		UserID:     m.UserID,
		Handle:     m.Handle,
		Name:       m.Name,
		Role:       string(m.Role),
		GlobalRole: string(m.GlobalRole),
		Status:     string(m.Status),
		JoinedAt:   m.CreatedAt.Format(time.RFC3339),
	}
}

// RoomListResponse represents a list of rooms
type RoomListResponse struct {
	Rooms []*RoomResponse `json:"rooms"`
	Total int             `json:"total"`
}

// NewRoomListResponse creates a room list response
func NewRoomListResponse(rooms []*model.RoomWithMemberCount) *RoomListResponse {
	roomResponses := make([]*RoomResponse, len(rooms))
	for i, room := range rooms {
		roomResponses[i] = NewRoomResponse(room)
	}

	return &RoomListResponse{
		Rooms: roomResponses,
		Total: len(roomResponses),
	}
}
