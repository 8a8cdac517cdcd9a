package queue

import "github.com/ThreeDotsLabs/watermill/message"

// -------------------------- 基于业务封装 events --------------------------

// PublishFileIngested 发布 snt.file.ingested 事件.
// 在内容写入存储且台账登记成功后调用，通知下游流程（字段抽取、审计等）.
func PublishFileIngested(pub message.Publisher, payload FileIngestedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicFileIngested, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicFileIngested, msg)
}

// PublishFileDuplicate 发布 snt.file.duplicate 事件.
func PublishFileDuplicate(pub message.Publisher, payload FileDuplicatePayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicFileDuplicate, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicFileDuplicate, msg)
}

// PublishFileFailed 发布 snt.file.failed 事件.
// Stage 标明管线失败发生的阶段（stage、persist、ledger 等）.
func PublishFileFailed(pub message.Publisher, payload FileFailedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicFileFailed, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicFileFailed, msg)
}

// PublishSearchServed 发布 snt.search.served 事件.
func PublishSearchServed(pub message.Publisher, payload SearchServedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicSearchServed, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicSearchServed, msg)
}

// PublishFieldsIndexed 发布 snt.fields.indexed 事件.
func PublishFieldsIndexed(pub message.Publisher, payload FieldsIndexedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicFieldsIndexed, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicFieldsIndexed, msg)
}

// ParseFileIngested 将 Watermill 消息解析为强类型 Envelope（FileIngestedPayload）.
func ParseFileIngested(msg *message.Message) (Message[FileIngestedPayload], error) {
	return ParseWatermillMessage[FileIngestedPayload](msg)
}
