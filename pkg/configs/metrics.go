// Metrics配置支持Prometheus等监控系统.
package configs

import (
	"github.com/spf13/viper"
)

const (
	DefaultMetricsEnabled        = true // 是否启用监控
	DefaultMetricsRuntimeMetrics = true // 是否收集运行时指标
	DefaultMetricsPprof          = false
)

// MetricsConfig 监控配置.
type MetricsConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	RuntimeMetrics bool `mapstructure:"runtime_metrics"`
	Pprof          bool `mapstructure:"pprof"`
}

// setDefaults 设置监控配置的默认值.
func (c *MetricsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("metrics.enabled", DefaultMetricsEnabled)
	v.SetDefault("metrics.runtime_metrics", DefaultMetricsRuntimeMetrics)
	v.SetDefault("metrics.pprof", DefaultMetricsPprof)
}
