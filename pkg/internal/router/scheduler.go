package router

import (
	"github.com/gin-gonic/gin"

	"github.com/sentinelbot/sentinel/pkg/internal/handle"
)

// RegisterSchedulerRoutes 注册调度器相关路由.
func RegisterSchedulerRoutes(g *gin.RouterGroup, h *handle.Handlers) {
	g.GET("/scheduler/jobs", h.ListJobs)
}
