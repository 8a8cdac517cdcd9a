package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sentinelbot/sentinel/pkg/metrics"
)

// PrometheusMiddleware Prometheus监控中间件.
// endpoint 标签使用路由模板（如 /files/:id）而非原始路径，
// 避免清除接口的文件 ID 把标签基数撑爆.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		// 执行下一个中间件/处理器
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			// 未命中任何路由
			endpoint = "unmatched"
		}

		status := strconv.Itoa(c.Writer.Status())
		metrics.RequestCounter.WithLabelValues(method, endpoint, status).Inc()

		duration := time.Since(start).Seconds()
		metrics.RequestDuration.WithLabelValues(method, endpoint).Observe(duration)
	}
}
