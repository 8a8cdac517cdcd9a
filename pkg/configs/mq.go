package configs

import (
	"github.com/spf13/viper"
)

// MQType 消息队列类型.
type MQType string

const (
	MQTypeGoChannel MQType = "gochannel" // 进程内 pub/sub（默认）
	MQTypeNATS      MQType = "nats"

	DefaultMQURL            = "localhost:4222"
	DefaultMQClientID       = "sentinel-app"
	DefaultMQMaxReconnects  = 5 // 默认最大重连次数
	DefaultMQReconnectWait  = 5 // 默认重连等待时间（秒）
	DefaultMQSubjectPrefix  = "snt."
	DefaultMQStreamName     = "sentinel-stream"
	DefaultMQConsumerAckSec = 30 // 默认消费者确认等待时间（秒）
)

// MQConfig 事件队列配置.
type MQConfig struct {
	Type          MQType `mapstructure:"type"           rule:"oneof=gochannel nats"`
	URL           string `mapstructure:"url"            rule:"hostname_port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	ClientID      string `mapstructure:"client_id"`
	MaxReconnects int    `mapstructure:"max_reconnects" rule:"min=0,max=100"`
	ReconnectWait int    `mapstructure:"reconnect_wait" rule:"min=1,max=300"`

	// NATS JetStream 相关
	JetStreamEnabled bool   `mapstructure:"jetstream_enabled"`
	StreamName       string `mapstructure:"stream_name"`
	SubjectPrefix    string `mapstructure:"subject_prefix"`
	ConsumerAckWait  int    `mapstructure:"consumer_ack_wait"`
}

// GetMQType 返回当前配置的消息队列类型.
func (c *MQConfig) GetMQType() MQType {
	return c.Type
}

// setDefaults 设置MQ配置的默认值.
func (c *MQConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("mq.type", MQTypeGoChannel)
	v.SetDefault("mq.url", DefaultMQURL)
	v.SetDefault("mq.user", "")
	v.SetDefault("mq.password", "")
	v.SetDefault("mq.client_id", DefaultMQClientID)
	v.SetDefault("mq.max_reconnects", DefaultMQMaxReconnects)
	v.SetDefault("mq.reconnect_wait", DefaultMQReconnectWait)
	v.SetDefault("mq.jetstream_enabled", false)
	v.SetDefault("mq.stream_name", DefaultMQStreamName)
	v.SetDefault("mq.subject_prefix", DefaultMQSubjectPrefix)
	v.SetDefault("mq.consumer_ack_wait", DefaultMQConsumerAckSec)
}
