package router

import (
	"github.com/gin-gonic/gin"

	"github.com/sentinelbot/sentinel/pkg/internal/handle"
)

// RegisterSearchRoutes 注册字段检索路由.
func RegisterSearchRoutes(g *gin.RouterGroup, h *handle.Handlers) {
	g.GET("/search", h.SearchFields)
}
