// Package router 管理路由配置，将路径绑定到 pkg/internal/handle 提供的处理器.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/sentinelbot/sentinel/pkg/internal/handle"
)

// Register 将全部运维接口绑定到 /api/v1 分组.
// handlers 为 nil 时各业务路径挂占位实现，服务仍可启动并清晰提示未实现.
func Register(engine *gin.Engine, handlers *handle.Handlers) {
	api := engine.Group("/api/v1")

	RegisterHealthCheckRoute(api)

	if handlers == nil {
		api.GET("/search", handle.DefaultHandler)
		api.GET("/files", handle.DefaultHandler)
		api.DELETE("/files/:id", handle.DefaultHandler)
		api.GET("/scheduler/jobs", handle.DefaultHandler)

		return
	}

	RegisterSearchRoutes(api, handlers)
	RegisterFilesRoutes(api, handlers)
	RegisterSchedulerRoutes(api, handlers)
}
