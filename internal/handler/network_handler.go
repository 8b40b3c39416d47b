package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/homehub/panel/internal/dto/response"
	"github.com/homehub/panel/internal/service"
)

type NetworkHandler struct {
	networkService *service.NetworkService
}

func NewNetworkHandler(networkService *service.NetworkService) *NetworkHandler {
	return &NetworkHandler{
		networkService: networkService,
	}
}

// Status godoc
// @Summary Get Tailscale network status
// @Tags network
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=service.TailscaleStatus}
// @Failure 403 {object} response.Response
// @Router /api/v1/admin/network [get]
func (h *NetworkHandler) Status(c *gin.Context) {
	status, err := h.networkService.Status(c.Request.Context(), actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, status)
}
