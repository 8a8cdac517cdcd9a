package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultBotPollTimeout     = 60    // 长轮询超时（秒）
	DefaultBotDownloadTimeout = 30    // 文件下载超时（秒）
	DefaultBotDebug           = false // 是否打印 Bot API 调试日志
	DefaultBotSearchRPS       = 1.0   // 每个会话的 /search 速率（次/秒）
	DefaultBotSearchBurst     = 3     // 每个会话的 /search 突发额度
	DefaultBotBreakerFailures = 5     // 熔断前连续下载失败次数
	DefaultBotBreakerCooldown = 30    // 熔断冷却时间（秒）
)

// BotConfig Telegram Bot 传输层配置.
type BotConfig struct {
	Token           string  `mapstructure:"token"`
	PollTimeout     int     `mapstructure:"poll_timeout"     rule:"min=1,max=300"`
	DownloadTimeout int     `mapstructure:"download_timeout" rule:"min=1,max=300"`
	Debug           bool    `mapstructure:"debug"`
	SearchRPS       float64 `mapstructure:"search_rps"       rule:"min=0"`
	SearchBurst     int     `mapstructure:"search_burst"     rule:"min=1"`
	BreakerFailures int     `mapstructure:"breaker_failures" rule:"min=1"`
	BreakerCooldown int     `mapstructure:"breaker_cooldown" rule:"min=1"`
}

// GetDownloadTimeout 返回下载超时作为 time.Duration.
func (c *BotConfig) GetDownloadTimeout() time.Duration {
	return time.Duration(c.DownloadTimeout) * time.Second
}

// GetBreakerCooldown 返回熔断冷却时间作为 time.Duration.
func (c *BotConfig) GetBreakerCooldown() time.Duration {
	return time.Duration(c.BreakerCooldown) * time.Second
}

// setDefaults 设置 Bot 配置的默认值.
func (c *BotConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("bot.token", "")
	v.SetDefault("bot.poll_timeout", DefaultBotPollTimeout)
	v.SetDefault("bot.download_timeout", DefaultBotDownloadTimeout)
	v.SetDefault("bot.debug", DefaultBotDebug)
	v.SetDefault("bot.search_rps", DefaultBotSearchRPS)
	v.SetDefault("bot.search_burst", DefaultBotSearchBurst)
	v.SetDefault("bot.breaker_failures", DefaultBotBreakerFailures)
	v.SetDefault("bot.breaker_cooldown", DefaultBotBreakerCooldown)
}
