package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListJobs 列出定时任务运行状态.
func (h *Handlers) ListJobs(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler disabled"})
		return
	}

	infos := h.scheduler.GetJobInfos()
	c.JSON(http.StatusOK, gin.H{"count": len(infos), "jobs": infos})
}
