package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/homehub/panel/internal/dto/request"
	"github.com/homehub/panel/internal/dto/response"
	"github.com/homehub/panel/internal/middleware"
	"github.com/homehub/panel/internal/model"
	"github.com/homehub/panel/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// UpdateProfile godoc
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body request.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} response.Response{data=response.UserResponse}
// @Failure 400 {object} response.Response
// @Router /api/v1/users/me [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req request.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request format")
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), &service.UpdateProfileInput{
		UserID: middleware.GetUserID(c),
		Name:   req.Name,
		Email:  req.Email,
		Bio:    req.Bio,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, response.NewUserResponse(user))
}

// GetByID godoc
// @Summary Get a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response{data=response.UserResponse}
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	userID := paramID(c, "id")
	if userID == 0 {
		response.BadRequest(c, "invalid user ID")
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, response.NewUserResponse(user))
}

// List godoc
// @Summary List hub users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(50)
// @Success 200 {object} response.Response{data=response.UserListResponse}
// @Router /api/v1/users [get]
func (h *UserHandler) List(c *gin.Context) {
	var req request.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		req = request.PaginationRequest{Page: 1, Limit: 50}
	}

	users, err := h.userService.List(c.Request.Context(), req.Limit, req.Offset())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, response.NewUserListResponse(users))
}

// SetRole godoc
// @Summary Change a user's global role
// @Description Owner-tier changes require the hub owner. The last owner cannot be demoted.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body request.SetUserRoleRequest true "New role"
// @Success 200 {object} response.Response{data=response.UserResponse}
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/users/{id}/role [put]
func (h *UserHandler) SetRole(c *gin.Context) {
	targetID := paramID(c, "id")
	if targetID == 0 {
		response.BadRequest(c, "invalid user ID")
		return
	}

	var req request.SetUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request format")
		return
	}

	user, err := h.userService.SetRole(c.Request.Context(), actorFrom(c), targetID, model.GlobalRole(req.Role))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, response.NewUserResponse(user))
}

// Suspend godoc
// @Summary Suspend a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/users/{id}/suspend [post]
func (h *UserHandler) Suspend(c *gin.Context) {
	targetID := paramID(c, "id")
	if targetID == 0 {
		response.BadRequest(c, "invalid user ID")
		return
	}

	if err := h.userService.Suspend(c.Request.Context(), actorFrom(c), targetID); err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "user suspended", nil)
}

// Unsuspend godoc
// @Summary Lift a user suspension
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/users/{id}/unsuspend [post]
func (h *UserHandler) Unsuspend(c *gin.Context) {
	targetID := paramID(c, "id")
	if targetID == 0 {
		response.BadRequest(c, "invalid user ID")
		return
	}

	if err := h.userService.Unsuspend(c.Request.Context(), actorFrom(c), targetID); err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "suspension lifted", nil)
}

// Delete godoc
// @Summary Delete a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 403 {object} response.Response
// @Router /api/v1/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	targetID := paramID(c, "id")
	if targetID == 0 {
		response.BadRequest(c, "invalid user ID")
		return
	}

	if err := h.userService.Delete(c.Request.Context(), actorFrom(c), targetID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
