package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/homehub/panel/internal/dto/request"
	"github.com/homehub/panel/internal/dto/response"
	"github.com/homehub/panel/internal/middleware"
	"github.com/homehub/panel/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

func NewAuthHandler(authService *service.AuthService, userService *service.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// Register godoc
// @Summary Register a new account
// @Description The first account becomes the hub owner. Later registrations need open registration or a valid invite code.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.RegisterRequest true "Registration data"
// @Success 201 {object} response.Response{data=response.AuthResponse}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request format")
		return
	}

	result, err := h.authService.Register(c.Request.Context(), &service.RegisterInput{
		Handle:     req.Handle,
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		InviteCode: req.InviteCode,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, response.NewAuthResponse(result.User, result.TokenPair))
}

// Login godoc
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Credentials"
// @Success 200 {object} response.Response{data=response.AuthResponse}
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request format")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &service.LoginInput{
		Handle:    req.Handle,
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, response.NewAuthResponse(result.User, result.TokenPair))
}

// Refresh godoc
// @Summary Refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} response.Response{data=response.TokenResponse}
// @Failure 401 {object} response.Response
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req request.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request format")
		return
	}

	pair, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, response.NewTokenResponse(pair))
}

// Logout godoc
// @Summary Log out
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.authService.Logout(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "logged out", nil)
}

// Me godoc
// @Summary Get current user profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=response.UserResponse}
// @Failure 404 {object} response.Response
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.userService.GetByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, response.NewUserResponse(user))
}

// ChangePassword godoc
// @Summary Change own password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body request.ChangePasswordRequest true "Password change data"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req request.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request format")
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), &service.ChangePasswordInput{
		UserID:          middleware.GetUserID(c),
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "password changed", nil)
}

// ListDevices godoc
// @Summary List own login devices
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]response.DeviceResponse}
// @Router /api/v1/auth/devices [get]
func (h *AuthHandler) ListDevices(c *gin.Context) {
	devices, err := h.authService.ListDevices(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]*response.DeviceResponse, len(devices))
	for i, d := range devices {
		items[i] = response.NewDeviceResponse(d)
	}

	response.Success(c, items)
}

// RevokeDevice godoc
// @Summary Revoke a login device
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Param id path int true "Device ID"
// @Success 204
// @Failure 404 {object} response.Response
// @Router /api/v1/auth/devices/{id} [delete]
func (h *AuthHandler) RevokeDevice(c *gin.Context) {
	deviceID := paramID(c, "id")
	if deviceID == 0 {
		response.BadRequest(c, "invalid device ID")
		return
	}

	if err := h.authService.RevokeDevice(c.Request.Context(), middleware.GetUserID(c), deviceID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
