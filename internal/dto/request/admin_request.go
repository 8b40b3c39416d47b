package request

// CreateInviteRequest represents an invite creation request
type CreateInviteRequest struct {
	MaxUses int `json:"max_uses,omitempty" binding:"omitempty,min=1,max=100"`
}

// SetUserRoleRequest represents a global role change request
type SetUserRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=owner admin user child bot guest"`
}

// UpdateHubSettingsRequest represents a hub settings update request
type UpdateHubSettingsRequest struct {
	AllowRegistration *bool `json:"allow_registration,omitempty"`
	AIRateLimit       *int  `json:"ai_rate_limit,omitempty" binding:"omitempty,min=0"`
	StoragePerUser    *int  `json:"storage_per_user,omitempty" binding:"omitempty,min=0"`
	MaxDevicesPerUser *int  `json:"max_devices_per_user,omitempty" binding:"omitempty,min=1"`
}

// ConfigureAIRequest represents an AI provider configuration request
type ConfigureAIRequest struct {
	Service string                 `json:"service" binding:"required,oneof=openai ollama"`
	Enabled bool                   `json:"enabled"`
	Config  map[string]interface{} `json:"config,omitempty"`
}
