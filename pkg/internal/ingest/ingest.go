// Package ingest 实现文件摄取管线：
// 暂存、摘要、内容落盘、台账登记（按摘要去重）、字段抽取与索引.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sentinelbot/sentinel/pkg/configs"
	"github.com/sentinelbot/sentinel/pkg/internal/extract"
	"github.com/sentinelbot/sentinel/pkg/internal/ledger"
	"github.com/sentinelbot/sentinel/pkg/internal/model"
	"github.com/sentinelbot/sentinel/pkg/internal/storage/content"
	mqc "github.com/sentinelbot/sentinel/pkg/internal/storage/mq"
	"github.com/sentinelbot/sentinel/pkg/internal/types"
	nlog "github.com/sentinelbot/sentinel/pkg/log"
	"github.com/sentinelbot/sentinel/pkg/metrics"
	"github.com/sentinelbot/sentinel/pkg/queue"
	"github.com/sentinelbot/sentinel/pkg/rule"
)

// Orchestrator 摄取管线编排器.
// 依赖全部经构造函数注入，无进程级单例.
type Orchestrator struct {
	ledger    *ledger.Ledger
	store     content.Store
	extractor *extract.Extractor
	mq        *mqc.Client
	cfg       configs.IngestConfig
	scratch   string
}

// New 创建摄取编排器，暂存目录不存在时创建.
func New(l *ledger.Ledger, store content.Store, mq *mqc.Client, cfg configs.IngestConfig, scratchDir string) (*Orchestrator, error) {
	if scratchDir == "" {
		scratchDir = configs.DefaultScratchDir
	}

	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir %s: %w", scratchDir, err)
	}

	return &Orchestrator{
		ledger:    l,
		store:     store,
		extractor: extract.New(),
		mq:        mq,
		cfg:       cfg,
		scratch:   scratchDir,
	}, nil
}

// Ingest 处理一个入站文件事件，返回类型化结局.
// 事件流只被消费一次：写入暂存文件的同时计算摘要.
// 字节先于台账提交落盘，去重裁决完全由台账的唯一约束承担；
// 并发摄取同一内容时可能出现先落盘后发现重复，幂等的 Persist 使之无害.
func (o *Orchestrator) Ingest(ctx context.Context, ev types.FileEvent) Outcome {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.GetTimeout())
	defer cancel()

	logger := nlog.Logger().With().
		Str("file", ev.FileName).
		Int64("origin", ev.OriginID).
		Int64("sender", ev.SenderID).
		Logger()

	// 失败事件按已知进度携带文件信息，阶段推进时逐步补全
	fileRef := queue.FileRef{FileName: ev.FileName, MimeType: ev.MimeType}

	if err := rule.ValidateStruct(ev); err != nil {
		logger.Warn().Err(err).Msg("invalid file event")
		metrics.IngestOutcomes.WithLabelValues(string(StatusFailed)).Inc()
		o.publishFailed(fileRef, "validate", err)

		return Failed(fmt.Errorf("validate event: %w", err))
	}

	// Received: 流入暂存文件，同步计算摘要
	scratchPath, digest, size, err := o.stage(ev.Content)
	if err != nil {
		logger.Error().Err(err).Msg("stage failed")
		metrics.IngestOutcomes.WithLabelValues(string(StatusFailed)).Inc()
		o.publishFailed(fileRef, "stage", err)

		return Failed(fmt.Errorf("stage file: %w", err))
	}
	defer os.Remove(scratchPath)

	fileRef.ContentDigest = digest
	fileRef.Size = size

	if max := o.cfg.MaxFileBytes(); max > 0 && size > max {
		logger.Warn().Int64("size", size).Msg("file exceeds size limit")
		metrics.IngestOutcomes.WithLabelValues(string(StatusFailed)).Inc()

		err := fmt.Errorf("file size %d exceeds limit %d", size, max)
		o.publishFailed(fileRef, "limit", err)

		return Failed(err)
	}

	// Stored: 内容寻址落盘，先于台账提交
	storageKey, err := o.persist(ctx, scratchPath, digest, ev.FileName)
	if err != nil {
		logger.Error().Err(err).Msg("persist failed")
		metrics.IngestOutcomes.WithLabelValues(string(StatusFailed)).Inc()
		o.publishFailed(fileRef, "persist", err)

		return Failed(fmt.Errorf("persist content: %w", err))
	}

	fileRef.StorageKey = storageKey

	// Logged: 台账登记，唯一约束裁决去重
	res, err := o.ledger.InsertFile(ctx, model.FileRecord{
		ContentDigest: digest,
		StorageKey:    storageKey,
		FileName:      ev.FileName,
		Size:          size,
		MimeType:      ev.MimeType,
		OriginID:      ev.OriginID,
		OriginName:    ev.OriginName,
		SenderID:      ev.SenderID,
		SenderHandle:  ev.SenderHandle,
	})
	if err != nil {
		logger.Error().Err(err).Msg("ledger insert failed")
		metrics.IngestOutcomes.WithLabelValues(string(StatusFailed)).Inc()
		o.publishFailed(fileRef, "ledger", err)

		return Failed(fmt.Errorf("ledger insert: %w", err))
	}

	if res.Duplicate {
		// 首次摄取已完成抽取索引，重复上传不再抽取
		logger.Info().Str("digest", digest).Uint("existing", res.Record.ID).Msg("duplicate content")
		metrics.IngestOutcomes.WithLabelValues(string(StatusDuplicate)).Inc()
		o.publishDuplicate(fileRef, ev)

		return Outcome{Status: StatusDuplicate, Record: res.Record}
	}

	outcome := Outcome{Status: StatusDone, Record: res.Record}

	// Extracted: 仅对可解析的声明类型抽取
	format, supported := extract.FormatFor(ev.MimeType, ev.FileName)
	if !supported {
		outcome.Unsupported = true
		logger.Info().Str("mime", ev.MimeType).Msg("unsupported kind, stored without extraction")
		metrics.IngestOutcomes.WithLabelValues(string(StatusDone)).Inc()
		o.publishIngested(fileRef, ev, res.Record.ID)

		return outcome
	}

	fields, parseErr := o.extractFields(scratchPath, format)
	if parseErr != nil {
		// 丢索引好过丢文件：解析失败降级为零字段结局
		outcome.ParseFailed = true
		logger.Warn().Err(parseErr).Msg("parse failed, file kept with zero fields")
		o.publishExtractFailed(fileRef, res.Record.ID, parseErr)
	}

	// Indexed: 字段单事务批量写入
	if len(fields) > 0 {
		if err := o.ledger.InsertFields(ctx, res.Record.ID, fields); err != nil {
			// 字段写入失败指向程序缺陷而非数据问题，整次摄取报失败
			logger.Error().Err(err).Msg("field insert failed")
			metrics.IngestOutcomes.WithLabelValues(string(StatusFailed)).Inc()
			o.publishFailed(fileRef, "index", err)

			return Failed(fmt.Errorf("index fields: %w", err))
		}

		outcome.FieldCount = len(fields)
	}

	logger.Info().
		Str("digest", digest).
		Uint("file_id", res.Record.ID).
		Int("fields", outcome.FieldCount).
		Msg("ingestion done")
	metrics.IngestOutcomes.WithLabelValues(string(StatusDone)).Inc()

	o.publishIngested(fileRef, ev, res.Record.ID)

	if outcome.FieldCount > 0 {
		o.publishIndexed(fileRef, res.Record.ID, outcome.FieldCount)
	}

	return outcome
}

// stage 将入站流写入暂存文件，边写边算 SHA-256.
func (o *Orchestrator) stage(r io.Reader) (string, string, int64, error) {
	tmp, err := os.CreateTemp(o.scratch, "stage-*")
	if err != nil {
		return "", "", 0, fmt.Errorf("create scratch file: %w", err)
	}

	path := tmp.Name()
	h := sha256.New()

	size, err := io.Copy(io.MultiWriter(tmp, h), r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		_ = os.Remove(path)
		return "", "", 0, fmt.Errorf("write scratch file: %w", err)
	}

	return path, hex.EncodeToString(h.Sum(nil)), size, nil
}

// persist 从暂存文件读出内容写入内容存储.
func (o *Orchestrator) persist(ctx context.Context, scratchPath, digest, fileName string) (string, error) {
	f, err := os.Open(scratchPath)
	if err != nil {
		return "", fmt.Errorf("open scratch file: %w", err)
	}
	defer f.Close()

	return o.store.Persist(ctx, f, digest, filepath.Base(fileName))
}

// extractFields 解析暂存文件并分类所有单元格.
func (o *Orchestrator) extractFields(scratchPath string, format extract.Format) ([]model.FieldRecord, error) {
	f, err := os.Open(scratchPath)
	if err != nil {
		return nil, fmt.Errorf("open scratch for parse: %w", err)
	}
	defer f.Close()

	table, err := extract.Parse(format, f)
	if err != nil {
		return nil, err
	}

	return o.extractor.Extract(table), nil
}

func (o *Orchestrator) publishIngested(ref queue.FileRef, ev types.FileEvent, fileID uint) {
	if o.mq == nil {
		return
	}

	err := queue.PublishFileIngested(o.mq.Publisher(), queue.FileIngestedPayload{
		File:     ref,
		FileID:   fileID,
		OriginID: ev.OriginID,
		SenderID: ev.SenderID,
	}, queue.WithProducer(configs.AppName))
	if err != nil {
		nlog.Logger().Warn().Err(err).Msg("publish ingested event failed")
	}
}

func (o *Orchestrator) publishFailed(ref queue.FileRef, stage string, cause error) {
	if o.mq == nil {
		return
	}

	err := queue.PublishFileFailed(o.mq.Publisher(), queue.FileFailedPayload{
		File:  ref,
		Stage: stage,
		Error: cause.Error(),
	}, queue.WithProducer(configs.AppName))
	if err != nil {
		nlog.Logger().Warn().Err(err).Msg("publish failed event failed")
	}
}

func (o *Orchestrator) publishDuplicate(ref queue.FileRef, ev types.FileEvent) {
	if o.mq == nil {
		return
	}

	err := queue.PublishFileDuplicate(o.mq.Publisher(), queue.FileDuplicatePayload{
		File:     ref,
		OriginID: ev.OriginID,
		SenderID: ev.SenderID,
	}, queue.WithProducer(configs.AppName))
	if err != nil {
		nlog.Logger().Warn().Err(err).Msg("publish duplicate event failed")
	}
}

func (o *Orchestrator) publishIndexed(ref queue.FileRef, fileID uint, fieldCount int) {
	if o.mq == nil {
		return
	}

	err := queue.PublishFieldsIndexed(o.mq.Publisher(), queue.FieldsIndexedPayload{
		File:   ref,
		FileID: fileID,
		Fields: fieldCount,
	}, queue.WithProducer(configs.AppName))
	if err != nil {
		nlog.Logger().Warn().Err(err).Msg("publish indexed event failed")
	}
}

func (o *Orchestrator) publishExtractFailed(ref queue.FileRef, fileID uint, parseErr error) {
	if o.mq == nil {
		return
	}

	msg, err := queue.NewWatermillMessage(queue.TopicFieldsExtractFailed, queue.FieldsExtractFailedPayload{
		File:   ref,
		FileID: fileID,
		Error:  parseErr.Error(),
	}, queue.WithProducer(configs.AppName))
	if err != nil {
		return
	}

	if err := o.mq.Publisher().Publish(queue.TopicFieldsExtractFailed, msg); err != nil {
		nlog.Logger().Warn().Err(err).Msg("publish extract failed event failed")
	}
}
