package configs

import (
	"fmt"

	"github.com/spf13/viper"
)

// StoreType 内容存储后端类型.
type StoreType string

const (
	StoreTypeFS StoreType = "fs" // 本地文件系统（内容寻址）
	StoreTypeS3 StoreType = "s3" // S3 兼容对象存储
)

const (
	DefaultStoreRoot    = "data/store"   // 默认内容存储根目录
	DefaultScratchDir   = "data/scratch" // 默认下载暂存目录
	DefaultS3Endpoint   = "localhost:9000"
	DefaultS3AccessKey  = "minioadmin"
	DefaultS3SecretKey  = "minioadmin"
	DefaultS3UseSSL     = false
	DefaultS3BucketName = "sentinel"
	DefaultS3Region     = "us-east-1"
)

// StoreConfig 内容存储配置. fs 后端为规范实现，s3 后端用于对象存储部署.
type StoreConfig struct {
	Type       StoreType `mapstructure:"type"        rule:"oneof=fs s3"`
	Root       string    `mapstructure:"root"`        // fs 后端根目录
	ScratchDir string    `mapstructure:"scratch_dir"` // 下载暂存目录（两种后端共用）
	S3         S3Config  `mapstructure:"s3"`
}

// S3Config S3/MinIO 对象存储配置.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
	Region          string `mapstructure:"region"`
}

// GetEndpointURL 获取完整的端点URL.
func (c *S3Config) GetEndpointURL() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, c.Endpoint)
}

// setDefaults 设置内容存储配置的默认值.
func (c *StoreConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("store.type", StoreTypeFS)
	v.SetDefault("store.root", DefaultStoreRoot)
	v.SetDefault("store.scratch_dir", DefaultScratchDir)
	v.SetDefault("store.s3.endpoint", DefaultS3Endpoint)
	v.SetDefault("store.s3.access_key_id", DefaultS3AccessKey)
	v.SetDefault("store.s3.secret_access_key", DefaultS3SecretKey)
	v.SetDefault("store.s3.use_ssl", DefaultS3UseSSL)
	v.SetDefault("store.s3.bucket_name", DefaultS3BucketName)
	v.SetDefault("store.s3.region", DefaultS3Region)
}
