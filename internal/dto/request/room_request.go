package request

// CreateRoomRequest represents a room creation request
type CreateRoomRequest struct {
	Name      string `json:"name" binding:"required,min=2,max=100"`
	Slug      string `json:"slug,omitempty" binding:"omitempty,min=2,max=64"`
	AIEnabled *bool  `json:"ai_enabled,omitempty"`
}

// UpdateRoomRequest represents a room settings update request
type UpdateRoomRequest struct {
	Name                 *string `json:"name,omitempty" binding:"omitempty,min=2,max=100"`
	AIEnabled            *bool   `json:"ai_enabled,omitempty"`
	NotificationsEnabled *bool   `json:"notifications_enabled,omitempty"`
}

// AddMemberRequest represents a member addition request
type AddMemberRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	Role   string `json:"role,omitempty" binding:"omitempty,oneof=owner admin member"`
}

// UpdateMemberRoleRequest represents a member role update request
type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=owner admin member"`
}

// SelfDestructRequest represents a self-destruct timer request
type SelfDestructRequest struct {
	Seconds int64 `json:"seconds" binding:"required,min=1,max=604800"`
}
