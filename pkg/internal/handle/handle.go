// Package handle 提供运维 HTTP 接口的请求处理器实现.
package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sentinelbot/sentinel/pkg/internal/ledger"
	"github.com/sentinelbot/sentinel/pkg/internal/service"
	"github.com/sentinelbot/sentinel/pkg/internal/storage/content"
	mqc "github.com/sentinelbot/sentinel/pkg/internal/storage/mq"
	"github.com/sentinelbot/sentinel/pkg/scheduler"
)

// Handlers 聚合处理器依赖，经构造函数注入.
type Handlers struct {
	search    *service.SearchService
	ledger    *ledger.Ledger
	store     content.Store
	mq        *mqc.Client
	scheduler *scheduler.Scheduler
}

// NewHandlers 创建处理器集合.scheduler 可为 nil.
func NewHandlers(search *service.SearchService, l *ledger.Ledger, store content.Store, mq *mqc.Client, sched *scheduler.Scheduler) *Handlers {
	return &Handlers{
		search:    search,
		ledger:    l,
		store:     store,
		mq:        mq,
		scheduler: sched,
	}
}

// DefaultHandler 未实现路径的占位处理器.
func DefaultHandler(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"message": "Not Implemented"})
}
