package queue

// FileRef 标识台账中的一条文件内容与其存储位置.
type FileRef struct {
	ContentDigest string `json:"content_digest"`
	StorageKey    string `json:"storage_key"`
	Size          int64  `json:"size,omitempty"`
	MimeType      string `json:"mime_type,omitempty"`
	FileName      string `json:"file_name,omitempty"`
}

// FileIngestedPayload 新文件完成落盘与登记.
type FileIngestedPayload struct {
	File     FileRef `json:"file"`
	FileID   uint    `json:"file_id"`
	OriginID int64   `json:"origin_id,omitempty"`
	SenderID int64   `json:"sender_id,omitempty"`
}

// FileDuplicatePayload 摄取命中已存在的内容摘要.
type FileDuplicatePayload struct {
	File     FileRef `json:"file"`
	OriginID int64   `json:"origin_id,omitempty"`
	SenderID int64   `json:"sender_id,omitempty"`
}

// FileFailedPayload 摄取流水线失败.
type FileFailedPayload struct {
	File  FileRef `json:"file"`
	Stage string  `json:"stage"`
	Error string  `json:"error"`
}

// FilePurgedPayload 文件及其字段被管理员清除.
type FilePurgedPayload struct {
	FileID        uint   `json:"file_id"`
	ContentDigest string `json:"content_digest"`
	Fields        int64  `json:"fields,omitempty"`
}

// FieldsIndexedPayload 抽取字段写入完成.
type FieldsIndexedPayload struct {
	File   FileRef `json:"file"`
	FileID uint    `json:"file_id"`
	Fields int     `json:"fields"`
}

// FieldsExtractFailedPayload 内容解析失败，文件以零字段收尾.
type FieldsExtractFailedPayload struct {
	File   FileRef `json:"file"`
	FileID uint    `json:"file_id"`
	Error  string  `json:"error"`
}

// SearchServedPayload 一次检索请求已返回.
type SearchServedPayload struct {
	Query    string `json:"query"`
	Results  int    `json:"results"`
	CacheHit bool   `json:"cache_hit"`
	OriginID int64  `json:"origin_id,omitempty"`
}
