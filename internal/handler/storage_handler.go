package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/homehub/panel/internal/dto/response"
	"github.com/homehub/panel/internal/service"
)

type StorageHandler struct {
	storageService *service.StorageService
}

func NewStorageHandler(storageService *service.StorageService) *StorageHandler {
	return &StorageHandler{
		storageService: storageService,
	}
}

// Browse godoc
// @Summary Browse hub storage
// @Tags storage
// @Produce json
// @Security BearerAuth
// @Param path query string false "Directory path relative to the storage root"
// @Success 200 {object} response.Response{data=service.StorageListing}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/admin/storage [get]
func (h *StorageHandler) Browse(c *gin.Context) {
	listing, err := h.storageService.Browse(c.Request.Context(), actorFrom(c), c.Query("path"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, listing)
}

// Delete godoc
// @Summary Delete a storage entry
// @Tags storage
// @Produce json
// @Security BearerAuth
// @Param path query string true "File path relative to the storage root"
// @Success 204
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/admin/storage [delete]
func (h *StorageHandler) Delete(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		response.BadRequest(c, "path is required")
		return
	}

	if err := h.storageService.Delete(c.Request.Context(), actorFrom(c), path); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
