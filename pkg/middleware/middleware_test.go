package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/sentinelbot/sentinel/pkg/metrics"
	"github.com/sentinelbot/sentinel/pkg/middleware"
)

// TestPrometheusMiddleware_EndpointLabels 请求计数按路由模板与状态码打标，
// 路径参数不进标签，未命中路由归入 unmatched.
func TestPrometheusMiddleware_EndpointLabels(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(middleware.PrometheusMiddleware())
	engine.GET("/files/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, id := range []string{"17", "42"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/files/"+id, nil)
		engine.ServeHTTP(w, req)
	}

	got := testutil.ToFloat64(metrics.RequestCounter.WithLabelValues("GET", "/files/:id", "200"))
	if got != 2 {
		t.Errorf("expected 2 requests under route template label, got %v", got)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/no-such-route", nil))

	got = testutil.ToFloat64(metrics.RequestCounter.WithLabelValues("GET", "unmatched", "404"))
	if got != 1 {
		t.Errorf("expected unmatched route label, got %v", got)
	}
}
