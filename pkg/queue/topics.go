// Package queue 定义消息主题常量与分组，供发布/订阅使用.
package queue

// 主题命名规范：snt.<域>.<动作>[.<状态>]，尽量稳定且向后兼容.
// 域：file(文件摄取)、fields(字段抽取)、search(检索)
// 状态：完成(ed)、失败(failed)

const (
	// 文件摄取领域.
	TopicFileIngested  = "snt.file.ingested"  // 新内容已落盘并登记台账
	TopicFileDuplicate = "snt.file.duplicate" // 摄取命中重复内容，未产生新记录
	TopicFileFailed    = "snt.file.failed"    // 摄取流水线在任一阶段失败
	TopicFilePurged    = "snt.file.purged"    // 文件记录及其字段被清除

	// 字段抽取领域.
	TopicFieldsIndexed       = "snt.fields.indexed"        // 抽取字段已写入台账，可被检索
	TopicFieldsExtractFailed = "snt.fields.extract.failed" // 内容解析失败，文件以零字段收尾

	// 检索领域.
	TopicSearchServed = "snt.search.served" // 一次检索请求已返回（含缓存命中）
)

// 主题分组，用于批量订阅或权限控制.
var (
	// 文件摄取相关主题集合.
	FileTopics = []string{
		TopicFileIngested, TopicFileDuplicate,
		TopicFileFailed, TopicFilePurged,
	}

	// 字段抽取相关主题集合.
	FieldTopics = []string{
		TopicFieldsIndexed, TopicFieldsExtractFailed,
	}
)
