// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集摄取管线、检索和HTTP层指标.
//
// Example:
//
//	err := metrics.InitMetrics(config.Metrics)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	metrics.IngestOutcomes.WithLabelValues("done").Inc()
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sentinelbot/sentinel/pkg/configs"
)

// 全局指标变量.
var (
	// IngestOutcomes 按结果分类的摄取计数器（done/duplicate/failed）.
	IngestOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_ingest_outcomes_total",
			Help: "Total number of ingestions by outcome",
		},
		[]string{"outcome"},
	)

	// FieldsExtracted 按字段类型分类的提取计数器.
	FieldsExtracted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_fields_extracted_total",
			Help: "Total number of extracted field records by kind",
		},
		[]string{"kind"},
	)

	// ExtractDuration 解析+分类耗时.
	ExtractDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentinel_extract_duration_seconds",
			Help:    "Parse and classify duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// SearchRequests 检索请求计数器.
	SearchRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_search_requests_total",
			Help: "Total number of search requests",
		},
	)

	// RequestCounter HTTP请求计数器，endpoint 为路由模板.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()
)

// InitMetrics 初始化Metrics.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	// 注册标准收集器
	if config.RuntimeMetrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	// 注册自定义指标
	registry.MustRegister(
		IngestOutcomes,
		FieldsExtracted,
		ExtractDuration,
		SearchRequests,
		RequestCounter,
		RequestDuration,
	)

	return nil
}

// StartMetricsServer 将 /metrics 挂载到运维 HTTP 服务.
func StartMetricsServer(config configs.MetricsConfig, engine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// 如果启用pprof，注册pprof端点
	if config.Pprof {
		engine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}
