package router

import (
	"github.com/gin-gonic/gin"

	"github.com/sentinelbot/sentinel/pkg/internal/handle"
)

// RegisterFilesRoutes 注册文件台账相关路由.
func RegisterFilesRoutes(g *gin.RouterGroup, h *handle.Handlers) {
	filesRoutes := g.Group("/files")
	{
		// 最近摄取列表
		filesRoutes.GET("", h.RecentFiles)
		// 管理员清除：删除台账记录、字段和内容字节
		filesRoutes.DELETE("/:id", h.PurgeFile)
	}
}
