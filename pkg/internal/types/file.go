// Package types 定义摄取事件与 HTTP 接口的请求/响应结构.
package types

import "io"

// FileEvent 来自传输层的入站文件事件.
// Content 是只能消费一次的字节流，由摄取管线独占读取.
type FileEvent struct {
	SenderID     int64  `json:"sender_id"     rule:"required"`
	SenderHandle string `json:"sender_handle,omitempty"`
	OriginID     int64  `json:"origin_id"     rule:"required"`
	OriginName   string `json:"origin_name,omitempty"`
	FileName     string `json:"file_name"     rule:"required,max=512"`
	MimeType     string `json:"mime_type,omitempty"` // 传输层声明的内容类型
	ByteSize     int64  `json:"byte_size"     rule:"min=0"`

	Content io.Reader `json:"-"`
}
