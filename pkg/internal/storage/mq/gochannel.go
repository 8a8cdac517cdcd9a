package mq

import (
	"context"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/sentinelbot/sentinel/pkg/configs"
)

const (
	// defaultOutputChannelBuffer 进程内通道缓冲区大小.
	defaultOutputChannelBuffer = 64
)

// init 注册 gochannel 工厂.
func init() {
	RegisterFactory(configs.MQTypeGoChannel, gochannelFactory)
}

// gochannelFactory 创建进程内 Publisher & Subscriber.
// 同一个 GoChannel 实例同时充当两端，消息不出进程.
func gochannelFactory(
	ctx context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: defaultOutputChannelBuffer,
		},
		logger,
	)

	return pubsub, pubsub, nil
}
