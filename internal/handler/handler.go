package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/homehub/panel/internal/middleware"
	"github.com/homehub/panel/internal/model"
	"github.com/homehub/panel/internal/service"
)

// actorFrom builds the acting identity from the authenticated request context.
func actorFrom(c *gin.Context) *service.Actor {
	return &service.Actor{
		UserID: middleware.GetUserID(c),
		Role:   model.GlobalRole(middleware.GetGlobalRole(c)),
	}
}

// paramID parses a numeric path parameter. Returns 0 when missing or malformed.
func paramID(c *gin.Context, name string) int64 {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}
