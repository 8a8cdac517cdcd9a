package ingest

import (
	"github.com/sentinelbot/sentinel/pkg/internal/model"
)

// Status 摄取最终状态.
type Status string

const (
	// StatusDone 文件已落盘登记，字段抽取完成（可能为零字段）.
	StatusDone Status = "done"
	// StatusDuplicate 内容已存在，本次摄取未产生新记录.
	StatusDuplicate Status = "duplicate"
	// StatusFailed 存储或台账 I/O 失败，管线中止.
	StatusFailed Status = "failed"
)

// Outcome 一次摄取的类型化结果，发给请求方的回执由它渲染.
type Outcome struct {
	Status Status
	Record model.FileRecord
	// FieldCount 本次写入的字段数，重复与失败时为零.
	FieldCount int
	// Unsupported 声明类型不可解析，文件只入库不抽取.
	Unsupported bool
	// ParseFailed 解析失败被就地吞掉，文件以零字段收尾.
	ParseFailed bool
	// Err 仅在 StatusFailed 时有值.
	Err error
}

// Failed 构造失败结局.
func Failed(err error) Outcome {
	return Outcome{Status: StatusFailed, Err: err}
}
