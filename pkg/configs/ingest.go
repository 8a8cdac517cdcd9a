package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultIngestMaxFileMB = 32 // 单个文件大小上限（MB）
	DefaultIngestTimeout   = 60 // 单次摄取超时（秒）
	DefaultScratchTTLHours = 24 // 暂存文件保留时间（小时）
)

// IngestConfig 摄取管线配置.
type IngestConfig struct {
	MaxFileMB      int `mapstructure:"max_file_mb"       rule:"min=1"`
	Timeout        int `mapstructure:"timeout"           rule:"min=1,max=600"`
	ScratchTTLHour int `mapstructure:"scratch_ttl_hours" rule:"min=1"`
}

// MaxFileBytes 返回文件大小上限（字节）.
func (c *IngestConfig) MaxFileBytes() int64 {
	return int64(c.MaxFileMB) * 1024 * 1024
}

// GetTimeout 返回摄取超时作为 time.Duration.
func (c *IngestConfig) GetTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// ScratchTTL 返回暂存文件保留时间.
func (c *IngestConfig) ScratchTTL() time.Duration {
	return time.Duration(c.ScratchTTLHour) * time.Hour
}

// setDefaults 设置摄取配置的默认值.
func (c *IngestConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("ingest.max_file_mb", DefaultIngestMaxFileMB)
	v.SetDefault("ingest.timeout", DefaultIngestTimeout)
	v.SetDefault("ingest.scratch_ttl_hours", DefaultScratchTTLHours)
}
