package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/homehub/panel/internal/dto/request"
	"github.com/homehub/panel/internal/dto/response"
	"github.com/homehub/panel/internal/service"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
	}
}

// List godoc
// @Summary List room messages
// @Description Requires room membership. Global roles do not bypass this check.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param limit query int false "Max messages" default(50)
// @Param before query int false "Return messages older than this message ID"
// @Success 200 {object} response.Response{data=response.MessageListResponse}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/rooms/{id}/messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	roomID := paramID(c, "id")
	if roomID == 0 {
		response.BadRequest(c, "invalid room ID")
		return
	}

	var query request.ListMessagesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	messages, err := h.messageService.List(c.Request.Context(), roomID, actorFrom(c), query.Limit, query.Before)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, response.NewMessageListResponse(messages))
}

// Post godoc
// @Summary Post a message
// @Description Posting heals a missing membership first. An assistant reply is included when the room has AI enabled.
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param request body request.PostMessageRequest true "Message"
// @Success 201 {object} response.Response{data=response.PostMessageResponse}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/rooms/{id}/messages [post]
func (h *MessageHandler) Post(c *gin.Context) {
	roomID := paramID(c, "id")
	if roomID == 0 {
		response.BadRequest(c, "invalid room ID")
		return
	}

	var req request.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request format")
		return
	}

	result, err := h.messageService.Post(c.Request.Context(), &service.PostMessageInput{
		RoomID: roomID,
		Actor:  actorFrom(c),
		Text:   req.Text,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := &response.PostMessageResponse{
		Message: response.NewMessageResponse(result.Message),
	}
	if result.Reply != nil {
		resp.Reply = response.NewMessageResponse(result.Reply)
	}

	response.Created(c, resp)
}
