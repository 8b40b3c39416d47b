package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/homehub/panel/internal/dto/request"
	"github.com/homehub/panel/internal/dto/response"
	"github.com/homehub/panel/internal/service"
)

type InviteHandler struct {
	inviteService *service.InviteService
}

func NewInviteHandler(inviteService *service.InviteService) *InviteHandler {
	return &InviteHandler{
		inviteService: inviteService,
	}
}

// Create godoc
// @Summary Create an invite code
// @Tags invites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body request.CreateInviteRequest true "Invite data"
// @Success 201 {object} response.Response{data=response.InviteResponse}
// @Failure 403 {object} response.Response
// @Router /api/v1/admin/invites [post]
func (h *InviteHandler) Create(c *gin.Context) {
	var req request.CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request format")
		return
	}

	invite, err := h.inviteService.Create(c.Request.Context(), actorFrom(c), req.MaxUses)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, response.NewInviteResponse(invite))
}

// List godoc
// @Summary List invite codes
// @Tags invites
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]response.InviteResponse}
// @Failure 403 {object} response.Response
// @Router /api/v1/admin/invites [get]
func (h *InviteHandler) List(c *gin.Context) {
	invites, err := h.inviteService.List(c.Request.Context(), actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, response.NewInviteListResponse(invites))
}

// Check godoc
// @Summary Check an invite code
// @Description Public endpoint used by the registration form.
// @Tags invites
// @Produce json
// @Param code path string true "Invite code"
// @Success 200 {object} response.Response{data=response.InviteResponse}
// @Failure 422 {object} response.Response
// @Router /api/v1/invites/{code} [get]
func (h *InviteHandler) Check(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		response.BadRequest(c, "invalid invite code")
		return
	}

	invite, err := h.inviteService.Check(c.Request.Context(), code)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, response.NewInviteResponse(invite))
}

// Revoke godoc
// @Summary Revoke an invite code
// @Tags invites
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invite ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/admin/invites/{id}/revoke [post]
func (h *InviteHandler) Revoke(c *gin.Context) {
	inviteID := paramID(c, "id")
	if inviteID == 0 {
		response.BadRequest(c, "invalid invite ID")
		return
	}

	if err := h.inviteService.Revoke(c.Request.Context(), actorFrom(c), inviteID); err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "invite revoked", nil)
}

// Delete godoc
// @Summary Delete an invite code
// @Tags invites
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invite ID"
// @Success 204
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/admin/invites/{id} [delete]
func (h *InviteHandler) Delete(c *gin.Context) {
	inviteID := paramID(c, "id")
	if inviteID == 0 {
		response.BadRequest(c, "invalid invite ID")
		return
	}

	if err := h.inviteService.Delete(c.Request.Context(), actorFrom(c), inviteID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
