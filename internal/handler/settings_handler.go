package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/homehub/panel/internal/dto/request"
	"github.com/homehub/panel/internal/dto/response"
	"github.com/homehub/panel/internal/service"
)

type SettingsHandler struct {
	settingsService *service.SettingsService
}

func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
	}
}

// Get godoc
// @Summary Get hub settings
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=service.HubSettings}
// @Router /api/v1/admin/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, settings)
}

// Update godoc
// @Summary Update hub settings
// @Description Omitted fields are left unchanged.
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body request.UpdateHubSettingsRequest true "Settings"
// @Success 200 {object} response.Response{data=service.HubSettings}
// @Failure 403 {object} response.Response
// @Router /api/v1/admin/settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req request.UpdateHubSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request format")
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), &service.UpdateSettingsInput{
		Actor:             actorFrom(c),
		AllowRegistration: req.AllowRegistration,
		AIRateLimit:       req.AIRateLimit,
		StoragePerUser:    req.StoragePerUser,
		MaxDevicesPerUser: req.MaxDevicesPerUser,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, settings)
}
