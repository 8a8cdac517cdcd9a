package types

import "time"

// SearchRequest 检索请求.
type SearchRequest struct {
	Query string `form:"q" json:"q" rule:"required,max=256"`
}

// SearchHitItem 一条检索命中.
type SearchHitItem struct {
	Kind          string    `json:"kind"`
	Value         string    `json:"value"`
	FileName      string    `json:"file_name"`
	ContentDigest string    `json:"content_digest"`
	OriginID      int64     `json:"origin_id"`
	ExtractedAt   time.Time `json:"extracted_at"`
}

// SearchResponse 检索响应.
type SearchResponse struct {
	Query string          `json:"query"`
	Count int             `json:"count"`
	Hits  []SearchHitItem `json:"hits"`
}

// RecentFileItem 最近摄取列表中的一条.
type RecentFileItem struct {
	ID            uint      `json:"id"`
	FileName      string    `json:"file_name"`
	ContentDigest string    `json:"content_digest"`
	Size          int64     `json:"size"`
	MimeType      string    `json:"mime_type"`
	OriginID      int64     `json:"origin_id"`
	IngestedAt    time.Time `json:"ingested_at"`
}

// RecentFilesResponse 最近摄取列表响应.
type RecentFilesResponse struct {
	Count int              `json:"count"`
	Files []RecentFileItem `json:"files"`
}

// PurgeResponse 管理员清除响应.
type PurgeResponse struct {
	FileID        uint  `json:"file_id"`
	FieldsRemoved int64 `json:"fields_removed"`
}
