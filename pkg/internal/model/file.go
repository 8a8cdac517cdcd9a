// Package model 定义台账的数据库模型.
package model

import (
	"time"
)

// FieldKind 字段分类.
type FieldKind string

const (
	FieldKindEmail    FieldKind = "email"
	FieldKindPassword FieldKind = "password"
	FieldKindUsername FieldKind = "username"
)

// FileRecord 文件台账模型.
// 内容摘要唯一，重复摄取同一内容不会产生第二条记录.
type FileRecord struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// SHA-256 内容摘要（小写十六进制），全局唯一
	ContentDigest string `gorm:"size:64;uniqueIndex" json:"content_digest"`
	// 存储键，由摘要确定性推导
	StorageKey string `gorm:"size:512"       json:"storage_key"`
	FileName   string `gorm:"size:512;index" json:"file_name"`
	Size       int64  `gorm:"index"          json:"size"`
	MimeType   string `gorm:"size:255;index" json:"mime_type"`
	// 来源会话与发送者标识
	OriginID   int64  `gorm:"index"    json:"origin_id"`
	OriginName string `gorm:"size:255" json:"origin_name,omitempty"`
	SenderID   int64  `gorm:"index"    json:"sender_id"`
	// 发送者用户名，可能为空
	SenderHandle string `gorm:"size:255" json:"sender_handle,omitempty"`
	// 摄取完成时间
	IngestedAt time.Time `gorm:"index" json:"ingested_at"`

	Fields []FieldRecord `gorm:"foreignKey:FileID;constraint:OnDelete:CASCADE" json:"fields,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FieldRecord 从文件内容抽取出的单个凭据字段.
type FieldRecord struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	FileID uint `gorm:"index"      json:"file_id"`
	// 分类：email / password / username
	Kind  FieldKind `gorm:"size:32;index"  json:"kind"`
	Value string    `gorm:"size:512;index" json:"value"`
	// 分类置信度，分类器未给出时为 NULL
	Confidence  *float64  `json:"confidence,omitempty"`
	ExtractedAt time.Time `gorm:"index" json:"extracted_at"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定文件台账表名.
func (FileRecord) TableName() string { return "file_records" }

// TableName 指定字段表名.
func (FieldRecord) TableName() string { return "field_records" }
