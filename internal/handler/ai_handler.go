package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/homehub/panel/internal/dto/request"
	"github.com/homehub/panel/internal/dto/response"
	"github.com/homehub/panel/internal/service"
)

type AIHandler struct {
	aiService *service.AIService
}

func NewAIHandler(aiService *service.AIService) *AIHandler {
	return &AIHandler{
		aiService: aiService,
	}
}

// Status godoc
// @Summary Get AI provider status
// @Description Probes are cached; status reflects the last check, not a live round trip.
// @Tags ai
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]service.ProviderStatus}
// @Router /api/v1/admin/ai/status [get]
func (h *AIHandler) Status(c *gin.Context) {
	statuses, err := h.aiService.Status(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, statuses)
}

// Configure godoc
// @Summary Configure an AI provider
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body request.ConfigureAIRequest true "Provider configuration"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/admin/ai/configure [put]
func (h *AIHandler) Configure(c *gin.Context) {
	var req request.ConfigureAIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request format")
		return
	}

	conn, err := h.aiService.Configure(c.Request.Context(), &service.ConfigureInput{
		Actor:   actorFrom(c),
		Service: req.Service,
		Enabled: req.Enabled,
		Config:  req.Config,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "provider configured", gin.H{
		"service": conn.Service,
		"status":  conn.Status,
	})
}
