package request

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Handle     string `json:"handle" binding:"required,min=3,max=50"`
	Name       string `json:"name" binding:"required,min=1,max=100"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8,max=72"`
	InviteCode string `json:"invite_code,omitempty"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Handle   string `json:"handle" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents a token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	Email *string `json:"email,omitempty" binding:"omitempty,email"`
	Bio   *string `json:"bio,omitempty" binding:"omitempty,max=500"`
}
