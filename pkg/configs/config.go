// Package configs 管理应用程序配置，包括数据库、内容存储、Bot、队列等的配置信息.
// configs 包支持多种配置格式（YAML、JSON、TOML、dotenv）并启用热重载.
//
// Example:
//
//	err := configs.InitConfig("./")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	config := configs.GetConfig()
//	fmt.Println(config.Server.Port)
package configs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AppName 应用名，用于事件 Producer 标识与客户端命名.
const AppName = "sentinel"

// AppVersion 应用版本号，构建时可通过 ldflags 覆盖.
var AppVersion = "dev"

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		Server  ServerConfig  `mapstructure:"server"`  // ServerConfig HTTP 服务配置
		DB      DBConfig      `mapstructure:"db"`      // DBConfig 元数据库配置
		Store   StoreConfig   `mapstructure:"store"`   // StoreConfig 内容存储配置
		Bot     BotConfig     `mapstructure:"bot"`     // BotConfig Telegram Bot 配置
		Ingest  IngestConfig  `mapstructure:"ingest"`  // IngestConfig 摄取管线配置
		Search  SearchConfig  `mapstructure:"search"`  // SearchConfig 检索配置
		KV      KVConfig      `mapstructure:"kv"`      // KVConfig 键值缓存配置
		MQ      MQConfig      `mapstructure:"mq"`      // MQConfig 事件队列配置
		Metrics MetricsConfig `mapstructure:"metrics"` // MetricsConfig 监控配置
		Log     LogConfig     `mapstructure:"log"`     // LogConfig 日志配置
	}
)

var (
	// globalConfig 全局配置实例.
	globalConfig AppConfig
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
)

// InitConfig 加载应用程序配置，支持多种格式(yaml、json、toml、dotenv)并启用热重载.
func InitConfig(path string) error {
	appViper = viper.New()
	setAllDefaults(appViper)

	// 检查path是否是文件
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		// 是文件，使用SetConfigFile，Viper会自动检测类型
		appViper.SetConfigFile(path)
	} else {
		appViper.SetConfigName("config")
		appViper.AddConfigPath(path)
		appViper.AddConfigPath(filepath.Join(path, "configs"))

		exts := []string{"yaml", "yml", "json", "toml", "env", "dotenv"}

		for _, ext := range exts {
			cfg := filepath.Join(path, "config."+ext)
			if _, err := os.Stat(cfg); err == nil {
				appViper.SetConfigFile(cfg)

				break
			}
		}
	}

	appViper.AutomaticEnv()
	appViper.SetEnvPrefix("SENTINEL")

	// 读取配置；找不到配置文件时退回默认值 + 环境变量
	if err := appViper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	// 解析到全局配置
	if err := appViper.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	reloadConfigs(appViper, globalConfig.Server.ReloadConfig)

	return nil
}

// setAllDefaults 设置所有配置的默认值.
func setAllDefaults(v *viper.Viper) {
	var (
		serverConfig  ServerConfig
		dbConfig      DBConfig
		storeConfig   StoreConfig
		botConfig     BotConfig
		ingestConfig  IngestConfig
		searchConfig  SearchConfig
		kvConfig      KVConfig
		mqConfig      MQConfig
		metricsConfig MetricsConfig
		logConfig     LogConfig
	)

	serverConfig.setDefaults(v)
	dbConfig.setDefaults(v)
	storeConfig.setDefaults(v)
	botConfig.setDefaults(v)
	ingestConfig.setDefaults(v)
	searchConfig.setDefaults(v)
	kvConfig.setDefaults(v)
	mqConfig.setDefaults(v)
	metricsConfig.setDefaults(v)
	logConfig.setDefaults(v)
}

func reloadConfigs(v *viper.Viper, isHotReload bool) {
	if !isHotReload {
		return
	}
	// 启用配置热重载
	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("Config file changed:", e.Name)

		if err := v.Unmarshal(&globalConfig); err != nil {
			fmt.Printf("Error reloading config: %v\n", err)
		}
	})
	v.WatchConfig()
}

// GetConfig 返回全局配置实例.
func GetConfig() *AppConfig {
	return &globalConfig
}

// GetViper 返回全局 Viper 实例.
func GetViper() *viper.Viper {
	return appViper
}
