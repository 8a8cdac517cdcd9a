package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultSearchLimit       = 10 // 默认检索结果上限
	DefaultSearchCacheTTLSec = 30 // 检索结果缓存 TTL（秒）
)

// SearchConfig 检索配置.
type SearchConfig struct {
	Limit       int `mapstructure:"limit"         rule:"min=1,max=100"`
	CacheTTLSec int `mapstructure:"cache_ttl_sec" rule:"min=0"`
}

// CacheTTL 返回检索缓存 TTL.
func (c *SearchConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

// setDefaults 设置检索配置的默认值.
func (c *SearchConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("search.limit", DefaultSearchLimit)
	v.SetDefault("search.cache_ttl_sec", DefaultSearchCacheTTLSec)
}
