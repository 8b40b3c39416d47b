package response

import (
	"time"

	"github.com/homehub/panel/internal/model"
	"github.com/homehub/panel/internal/pkg/utils"
)

// UserResponse represents a user response
type UserResponse struct {
	ID        int64  `json:"id"`
	Handle    string `json:"handle"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	AIUsage   int    `json:"ai_usage"`
	Bio       string `json:"bio,omitempty"`
	CreatedAt string `json:"created_at"`
}

// NewUserResponse creates a user response from model
func NewUserResponse(u *model.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Handle:    u.Handle,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Status:    string(u.Status),
		AIUsage:   u.AIUsage,
		Bio:       u.GetBio(),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// AuthResponse represents a successful authentication response
type AuthResponse struct {
	User         *UserResponse `json:"user"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresAt    string        `json:"expires_at"`
}

// NewAuthResponse creates an auth response
func NewAuthResponse(user *model.User, pair *utils.TokenPair) *AuthResponse {
	return &AuthResponse{
		User:         NewUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt.Format(time.RFC3339),
	}
}

// TokenResponse represents a token refresh response
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// NewTokenResponse creates a token response
func NewTokenResponse(pair *utils.TokenPair) *TokenResponse {
	return &TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt.Format(time.RFC3339),
	}
}

// DeviceResponse represents a login device response
type DeviceResponse struct {
	ID         int64  `json:"id"`
	DeviceName string `json:"device_name"`
	DeviceType string `json:"device_type"`
	IPAddress  string `json:"ip_address"`
	IsActive   bool   `json:"is_active"`
	FirstSeen  string `json:"first_seen"`
	LastActive string `json:"last_active"`
}

// NewDeviceResponse creates a device response from model
func NewDeviceResponse(d *model.Device) *DeviceResponse {
	return &DeviceResponse{
		ID:         d.ID,
		DeviceName: d.DeviceName,
		DeviceType: d.DeviceType,
		IPAddress:  d.IPAddress,
		IsActive:   d.IsActive,
		FirstSeen:  d.FirstSeen.Format(time.RFC3339),
		LastActive: d.LastActive.Format(time.RFC3339),
	}
}
