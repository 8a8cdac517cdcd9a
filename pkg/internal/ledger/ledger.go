// Package ledger 提供文件台账的事务性读写：
// 按内容摘要去重的文件登记、字段批量写入与字段检索.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sentinelbot/sentinel/pkg/internal/model"
	dbc "github.com/sentinelbot/sentinel/pkg/internal/storage/db"
)

const (
	// DefaultSearchLimit 检索结果默认上限.
	DefaultSearchLimit = 10
	// MaxSearchLimit 检索结果硬上限.
	MaxSearchLimit = 100
)

// Ledger 台账读写入口.
type Ledger struct {
	db *gorm.DB
}

// New 创建台账实例.
func New(client *dbc.Client) *Ledger {
	return &Ledger{db: client.DB}
}

// AutoMigrate 建表并应用索引约束.
func (l *Ledger) AutoMigrate() error {
	if err := l.db.AutoMigrate(&model.FileRecord{}, &model.FieldRecord{}); err != nil {
		return fmt.Errorf("migrate ledger schema: %w", err)
	}

	return nil
}

// InsertFileResult 文件登记结果.
// Duplicate 为 true 时 Record 指向已存在的记录，未产生新行.
type InsertFileResult struct {
	Record    model.FileRecord
	Duplicate bool
}

// InsertFile 登记一条文件记录.
// 去重由数据库唯一约束裁决：并发摄取同一内容时恰好一个插入成功，
// 其余观察到重复摘要并解析为已存在的记录.重复不是错误.
func (l *Ledger) InsertFile(ctx context.Context, rec model.FileRecord) (InsertFileResult, error) {
	if rec.IngestedAt.IsZero() {
		rec.IngestedAt = time.Now().UTC()
	}

	err := l.db.WithContext(ctx).Create(&rec).Error
	if err == nil {
		return InsertFileResult{Record: rec}, nil
	}

	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return InsertFileResult{}, fmt.Errorf("insert file record: %w", err)
	}

	var existing model.FileRecord
	if err := l.db.WithContext(ctx).
		Where("content_digest = ?", rec.ContentDigest).
		First(&existing).Error; err != nil {
		return InsertFileResult{}, fmt.Errorf("resolve duplicate digest %s: %w", rec.ContentDigest, err)
	}

	return InsertFileResult{Record: existing, Duplicate: true}, nil
}

// InsertFields 批量写入字段记录，单事务全部成功或全部失败.
// 空切片直接返回，不开启事务.
func (l *Ledger) InsertFields(ctx context.Context, fileID uint, fields []model.FieldRecord) error {
	if len(fields) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for i := range fields {
		fields[i].FileID = fileID
		if fields[i].ExtractedAt.IsZero() {
			fields[i].ExtractedAt = now
		}
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&fields).Error
	})
	if err != nil {
		return fmt.Errorf("insert field records: %w", err)
	}

	return nil
}

// SearchHit 一条检索命中，字段值附带归属文件的来源信息.
type SearchHit struct {
	Kind          model.FieldKind `json:"kind"`
	Value         string          `json:"value"`
	FileID        uint            `json:"file_id"`
	FileName      string          `json:"file_name"`
	ContentDigest string          `json:"content_digest"`
	OriginID      int64           `json:"origin_id"`
	ExtractedAt   time.Time       `json:"extracted_at"`
}

// SearchFields 对字段值做大小写不敏感的子串匹配，按抽取时间倒序，结果数受 limit 约束.
func (l *Ledger) SearchFields(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	var hits []SearchHit

	err := l.db.WithContext(ctx).
		Table("field_records").
		Select("field_records.kind, field_records.value, field_records.file_id, "+
			"file_records.file_name, file_records.content_digest, file_records.origin_id, "+
			"field_records.extracted_at").
		Joins("JOIN file_records ON file_records.id = field_records.file_id").
		Where("LOWER(field_records.value) LIKE ? ESCAPE '\\'", pattern).
		Order("field_records.extracted_at DESC").
		Limit(limit).
		Scan(&hits).Error
	if err != nil {
		return nil, fmt.Errorf("search fields: %w", err)
	}

	return hits, nil
}

// RecentFiles 返回最近摄取的文件记录，最新在前.
// originID 非零时只列出该来源群组的记录.
func (l *Ledger) RecentFiles(ctx context.Context, originID int64, limit int) ([]model.FileRecord, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	q := l.db.WithContext(ctx)
	if originID != 0 {
		q = q.Where("origin_id = ?", originID)
	}

	var files []model.FileRecord

	err := q.Order("ingested_at DESC").
		Limit(limit).
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("list recent files: %w", err)
	}

	return files, nil
}

// GetFileByDigest 按内容摘要查找文件记录.
func (l *Ledger) GetFileByDigest(ctx context.Context, digest string) (model.FileRecord, error) {
	var rec model.FileRecord

	err := l.db.WithContext(ctx).
		Where("content_digest = ?", digest).
		First(&rec).Error
	if err != nil {
		return model.FileRecord{}, fmt.Errorf("get file by digest: %w", err)
	}

	return rec, nil
}

// GetFileByID 按主键查找文件记录.
func (l *Ledger) GetFileByID(ctx context.Context, fileID uint) (model.FileRecord, error) {
	var rec model.FileRecord

	err := l.db.WithContext(ctx).
		First(&rec, fileID).Error
	if err != nil {
		return model.FileRecord{}, fmt.Errorf("get file by id: %w", err)
	}

	return rec, nil
}

// PurgeFile 删除文件记录及其全部字段（管理员清除）.
// 显式事务内先删子表再删父表，不依赖数据库级联配置.
// 返回被删除的字段数.
func (l *Ledger) PurgeFile(ctx context.Context, fileID uint) (int64, error) {
	var removed int64

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("file_id = ?", fileID).Delete(&model.FieldRecord{})
		if res.Error != nil {
			return res.Error
		}

		removed = res.RowsAffected

		fileRes := tx.Delete(&model.FileRecord{}, fileID)
		if fileRes.Error != nil {
			return fileRes.Error
		}

		if fileRes.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("purge file %d: %w", fileID, err)
	}

	return removed, nil
}

// CountFiles 统计台账中的文件总数.
func (l *Ledger) CountFiles(ctx context.Context) (int64, error) {
	var n int64
	if err := l.db.WithContext(ctx).Model(&model.FileRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count files: %w", err)
	}

	return n, nil
}

// escapeLike 转义 LIKE 模式中的通配符，查询文本按字面匹配.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
