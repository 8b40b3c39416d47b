package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/homehub/panel/internal/dto/request"
	"github.com/homehub/panel/internal/dto/response"
	"github.com/homehub/panel/internal/middleware"
	"github.com/homehub/panel/internal/model"
	"github.com/homehub/panel/internal/service"
)

type RoomHandler struct {
	roomService *service.RoomService
}

func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	return &RoomHandler{
		roomService: roomService,
	}
}

// Create godoc
// @Summary Create a room
// @Description The creator becomes the room owner.
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body request.CreateRoomRequest true "Room data"
// @Success 201 {object} response.Response{data=response.RoomDetailResponse}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/rooms [post]
func (h *RoomHandler) Create(c *gin.Context) {
	var req request.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request format")
		return
	}

	aiEnabled := true
	if req.AIEnabled != nil {
		aiEnabled = *req.AIEnabled
	}

	actor := actorFrom(c)
	room, err := h.roomService.Create(c.Request.Context(), &service.CreateRoomInput{
		Name:      req.Name,
		Slug:      req.Slug,
		AIEnabled: aiEnabled,
		Actor:     actor,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	member, err := h.roomService.GetMember(c.Request.Context(), room.ID, actor.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, response.NewRoomDetailResponse(room, member))
}

// List godoc
// @Summary List rooms visible to the current user
// @Description Ensures the default room exists and the caller belongs to it before listing.
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(50)
// @Success 200 {object} response.Response{data=response.RoomListResponse}
// @Router /api/v1/rooms [get]
func (h *RoomHandler) List(c *gin.Context) {
	var req request.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		req = request.PaginationRequest{Page: 1, Limit: 50}
	}

	rooms, err := h.roomService.ListForUser(c.Request.Context(), actorFrom(c), req.Limit, req.Offset())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, response.NewRoomListResponse(rooms))
}

// ListAll godoc
// @Summary List every room on the hub
// @Description Management view. Does not touch the caller's memberships.
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(50)
// @Success 200 {object} response.Response{data=response.RoomListResponse}
// @Router /api/v1/admin/rooms [get]
func (h *RoomHandler) ListAll(c *gin.Context) {
	var req request.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		req = request.PaginationRequest{Page: 1, Limit: 50}
	}

	rooms, err := h.roomService.ListAll(c.Request.Context(), req.Limit, req.Offset())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, response.NewRoomListResponse(rooms))
}

// GetByID godoc
// @Summary Get room details
// @Description Visiting a room heals a missing membership for regular users.
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} response.Response{data=response.RoomDetailResponse}
// @Failure 404 {object} response.Response
// @Router /api/v1/rooms/{id} [get]
func (h *RoomHandler) GetByID(c *gin.Context) {
	roomID := paramID(c, "id")
	if roomID == 0 {
		response.BadRequest(c, "invalid room ID")
		return
	}

	room, member, err := h.roomService.GetRoom(c.Request.Context(), roomID, actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, response.NewRoomDetailResponse(room, member))
}

// GetBySlug godoc
// @Summary Get room details by slug
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Room slug"
// @Success 200 {object} response.Response{data=response.RoomDetailResponse}
// @Failure 404 {object} response.Response
// @Router /api/v1/rooms/slug/{slug} [get]
func (h *RoomHandler) GetBySlug(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		response.BadRequest(c, "invalid room slug")
		return
	}

	room, member, err := h.roomService.GetRoomBySlug(c.Request.Context(), slug, actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, response.NewRoomDetailResponse(room, member))
}

// UpdateSettings godoc
// @Summary Update room settings
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param request body request.UpdateRoomRequest true "Settings"
// @Success 200 {object} response.Response{data=response.RoomDetailResponse}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/rooms/{id}/settings [put]
func (h *RoomHandler) UpdateSettings(c *gin.Context) {
	roomID := paramID(c, "id")
	if roomID == 0 {
		response.BadRequest(c, "invalid room ID")
		return
	}

	var req request.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request format")
		return
	}

	actor := actorFrom(c)
	room, err := h.roomService.UpdateSettings(c.Request.Context(), &service.UpdateRoomInput{
		RoomID:               roomID,
		Actor:                actor,
		Name:                 req.Name,
		AIEnabled:            req.AIEnabled,
		NotificationsEnabled: req.NotificationsEnabled,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	member, _ := h.roomService.GetMember(c.Request.Context(), roomID, actor.UserID)
	response.Success(c, response.NewRoomDetailResponse(room, member))
}

// ScheduleSelfDestruct godoc
// @Summary Schedule room self-destruct
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param request body request.SelfDestructRequest true "Timer"
// @Success 200 {object} response.Response{data=response.RoomDetailResponse}
// @Failure 403 {object} response.Response
// @Router /api/v1/rooms/{id}/self-destruct [post]
func (h *RoomHandler) ScheduleSelfDestruct(c *gin.Context) {
	roomID := paramID(c, "id")
	if roomID == 0 {
		response.BadRequest(c, "invalid room ID")
		return
	}

	var req request.SelfDestructRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request format")
		return
	}

	actor := actorFrom(c)
	room, err := h.roomService.ScheduleSelfDestruct(c.Request.Context(), roomID, actor, time.Duration(req.Seconds)*time.Second)
	if err != nil {
		response.Error(c, err)
		return
	}

	member, _ := h.roomService.GetMember(c.Request.Context(), roomID, actor.UserID)
	response.Success(c, response.NewRoomDetailResponse(room, member))
}

// CancelSelfDestruct godoc
// @Summary Cancel a scheduled self-destruct
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} response.Response{data=response.RoomDetailResponse}
// @Failure 403 {object} response.Response
// @Router /api/v1/rooms/{id}/self-destruct [delete]
func (h *RoomHandler) CancelSelfDestruct(c *gin.Context) {
	roomID := paramID(c, "id")
	if roomID == 0 {
		response.BadRequest(c, "invalid room ID")
		return
	}

	actor := actorFrom(c)
	room, err := h.roomService.CancelSelfDestruct(c.Request.Context(), roomID, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	member, _ := h.roomService.GetMember(c.Request.Context(), roomID, actor.UserID)
	response.Success(c, response.NewRoomDetailResponse(room, member))
}

// Delete godoc
// @Summary Delete a room
// @Description System rooms are always refused.
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 204
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/rooms/{id} [delete]
func (h *RoomHandler) Delete(c *gin.Context) {
	roomID := paramID(c, "id")
	if roomID == 0 {
		response.BadRequest(c, "invalid room ID")
		return
	}

	if err := h.roomService.Delete(c.Request.Context(), roomID, actorFrom(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ListMembers godoc
// @Summary List room members
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} response.Response{data=[]response.RoomMemberResponse}
// @Failure 403 {object} response.Response
// @Router /api/v1/rooms/{id}/members [get]
func (h *RoomHandler) ListMembers(c *gin.Context) {
	roomID := paramID(c, "id")
	if roomID == 0 {
		response.BadRequest(c, "invalid room ID")
		return
	}

	members, err := h.roomService.ListMembers(c.Request.Context(), roomID, actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	memberResponses := make([]*response.RoomMemberResponse, len(members))
	for i, m := range members {
		memberResponses[i] = response.NewRoomMemberResponse(m)
	}

	response.Success(c, memberResponses)
}

// AddMember godoc
// @Summary Add a member to a room
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param request body request.AddMemberRequest true "Member data"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/rooms/{id}/members [post]
func (h *RoomHandler) AddMember(c *gin.Context) {
	roomID := paramID(c, "id")
	if roomID == 0 {
		response.BadRequest(c, "invalid room ID")
		return
	}

	var req request.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request format")
		return
	}

	role := model.MemberRoleMember
	if req.Role != "" {
		role = model.MemberRole(req.Role)
	}

	if err := h.roomService.AddMember(c.Request.Context(), roomID, actorFrom(c), req.UserID, role); err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "member added", nil)
}

// UpdateMemberRole godoc
// @Summary Change a member's room role
// @Description Demoting the only remaining owner is refused.
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param user_id path int true "User ID"
// @Param request body request.UpdateMemberRoleRequest true "New role"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/rooms/{id}/members/{user_id}/role [put]
func (h *RoomHandler) UpdateMemberRole(c *gin.Context) {
	roomID := paramID(c, "id")
	targetID := paramID(c, "user_id")
	if roomID == 0 || targetID == 0 {
		response.BadRequest(c, "invalid ID")
		return
	}

	var req request.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request format")
		return
	}

	err := h.roomService.UpdateMemberRole(c.Request.Context(), roomID, actorFrom(c), targetID, model.MemberRole(req.Role))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "member role updated", nil)
}

// RemoveMember godoc
// @Summary Remove a member from a room
// @Description Removing the only remaining owner is refused.
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param user_id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/rooms/{id}/members/{user_id} [delete]
func (h *RoomHandler) RemoveMember(c *gin.Context) {
	roomID := paramID(c, "id")
	targetID := paramID(c, "user_id")
	if roomID == 0 || targetID == 0 {
		response.BadRequest(c, "invalid ID")
		return
	}

	if err := h.roomService.RemoveMember(c.Request.Context(), roomID, actorFrom(c), targetID); err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "member removed", nil)
}

// Leave godoc
// @Summary Leave a room
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/rooms/{id}/leave [post]
func (h *RoomHandler) Leave(c *gin.Context) {
	roomID := paramID(c, "id")
	if roomID == 0 {
		response.BadRequest(c, "invalid room ID")
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.roomService.RemoveMember(c.Request.Context(), roomID, actorFrom(c), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "left room", nil)
}
