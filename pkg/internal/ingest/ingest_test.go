package ingest_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sentinelbot/sentinel/pkg/configs"
	"github.com/sentinelbot/sentinel/pkg/internal/ingest"
	"github.com/sentinelbot/sentinel/pkg/internal/ledger"
	"github.com/sentinelbot/sentinel/pkg/internal/model"
	"github.com/sentinelbot/sentinel/pkg/internal/storage/content"
	dbc "github.com/sentinelbot/sentinel/pkg/internal/storage/db"
	mqc "github.com/sentinelbot/sentinel/pkg/internal/storage/mq"
	"github.com/sentinelbot/sentinel/pkg/internal/types"
	"github.com/sentinelbot/sentinel/pkg/queue"
)

func newTestPipeline(t *testing.T) (*ingest.Orchestrator, *ledger.Ledger, *content.FSStore) {
	t.Helper()
	return newPipelineWithMQ(t, nil)
}

func newPipelineWithMQ(t *testing.T, mqClient *mqc.Client) (*ingest.Orchestrator, *ledger.Ledger, *content.FSStore) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	l := ledger.New(&dbc.Client{DB: db})
	if err := l.AutoMigrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store, err := content.NewFSStore(configs.StoreConfig{Type: configs.StoreTypeFS, Root: t.TempDir()})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	cfg := configs.IngestConfig{MaxFileMB: 1, Timeout: 30, ScratchTTLHour: 1}

	orch, err := ingest.New(l, store, mqClient, cfg, t.TempDir())
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}

	return orch, l, store
}

func csvEvent(body string) types.FileEvent {
	return types.FileEvent{
		SenderID:     4471,
		SenderHandle: "uploader",
		OriginID:     10021,
		OriginName:   "test-group",
		FileName:     "export.csv",
		MimeType:     "text/csv",
		ByteSize:     int64(len(body)),
		Content:      strings.NewReader(body),
	}
}

// TestIngest_EndToEnd 规格化场景：三个值各归一类，检索可回溯到文件.
func TestIngest_EndToEnd(t *testing.T) {
	orch, l, _ := newTestPipeline(t)
	ctx := context.Background()

	out := orch.Ingest(ctx, csvEvent("alice@example.com,pw123456789,plainuser\n"))
	if out.Status != ingest.StatusDone {
		t.Fatalf("status = %s, err = %v", out.Status, out.Err)
	}

	if out.FieldCount != 3 {
		t.Errorf("expected 3 fields, got %d", out.FieldCount)
	}

	if out.Record.ID == 0 || out.Record.ContentDigest == "" || out.Record.StorageKey == "" {
		t.Errorf("incomplete file record: %+v", out.Record)
	}

	// 发送者与来源的完整身份都要进台账
	if out.Record.SenderHandle != "uploader" || out.Record.OriginName != "test-group" {
		t.Errorf("record lost sender/origin provenance: %+v", out.Record)
	}

	hits, err := l.SearchFields(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}

	if hits[0].Kind != model.FieldKindEmail || hits[0].FileName != "export.csv" {
		t.Errorf("hit lost provenance: %+v", hits[0])
	}
}

// TestIngest_DedupIdempotence 相同内容摄取两次只产生一条文件记录、零条新字段.
func TestIngest_DedupIdempotence(t *testing.T) {
	orch, l, _ := newTestPipeline(t)
	ctx := context.Background()

	body := "bob@example.com,pw987654321,otheruser\n"

	first := orch.Ingest(ctx, csvEvent(body))
	if first.Status != ingest.StatusDone {
		t.Fatalf("first ingest: %s, err = %v", first.Status, first.Err)
	}

	second := orch.Ingest(ctx, csvEvent(body))
	if second.Status != ingest.StatusDuplicate {
		t.Fatalf("second ingest should be duplicate, got %s", second.Status)
	}

	if second.Record.ID != first.Record.ID {
		t.Errorf("duplicate should resolve to existing record: %d vs %d",
			second.Record.ID, first.Record.ID)
	}

	if second.FieldCount != 0 {
		t.Errorf("duplicate must not re-extract, got %d fields", second.FieldCount)
	}

	n, err := l.CountFiles(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}

	if n != 1 {
		t.Errorf("expected exactly 1 file record, got %d", n)
	}

	hits, err := l.SearchFields(ctx, "bob", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(hits) != 1 {
		t.Errorf("duplicate ingest must not duplicate index rows, got %d hits", len(hits))
	}
}

// TestIngest_UnsupportedKind 不可解析的类型照常入库，零字段.
func TestIngest_UnsupportedKind(t *testing.T) {
	orch, l, store := newTestPipeline(t)
	ctx := context.Background()

	ev := types.FileEvent{
		SenderID: 1,
		OriginID: 2,
		FileName: "photo.png",
		MimeType: "image/png",
		Content:  strings.NewReader("\x89PNG fake image bytes"),
	}

	out := orch.Ingest(ctx, ev)
	if out.Status != ingest.StatusDone {
		t.Fatalf("status = %s, err = %v", out.Status, out.Err)
	}

	if !out.Unsupported {
		t.Error("expected unsupported kind flag")
	}

	if out.FieldCount != 0 {
		t.Errorf("unsupported kind must not extract, got %d fields", out.FieldCount)
	}

	// 文件字节确实落盘
	exists, err := store.Exists(ctx, out.Record.ContentDigest, "photo.png")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}

	if !exists {
		t.Error("unsupported file should still be persisted")
	}

	n, _ := l.CountFiles(ctx)
	if n != 1 {
		t.Errorf("expected file record, got %d", n)
	}
}

// TestIngest_ParseFailureDowngrades 解析失败不中止摄取，文件以零字段收尾.
func TestIngest_ParseFailureDowngrades(t *testing.T) {
	orch, l, _ := newTestPipeline(t)
	ctx := context.Background()

	ev := types.FileEvent{
		SenderID: 1,
		OriginID: 2,
		FileName: "broken.json",
		MimeType: "application/json",
		Content:  strings.NewReader(`{"unterminated`),
	}

	out := orch.Ingest(ctx, ev)
	if out.Status != ingest.StatusDone {
		t.Fatalf("parse failure must downgrade, not fail: %s, err = %v", out.Status, out.Err)
	}

	if !out.ParseFailed {
		t.Error("expected parse-failed flag")
	}

	if out.FieldCount != 0 {
		t.Errorf("expected zero fields, got %d", out.FieldCount)
	}

	n, _ := l.CountFiles(ctx)
	if n != 1 {
		t.Errorf("file must still be logged, got %d records", n)
	}
}

// TestIngest_InvalidEventRejected 缺少必填字段的事件直接判失败，不触碰存储.
func TestIngest_InvalidEventRejected(t *testing.T) {
	orch, l, _ := newTestPipeline(t)
	ctx := context.Background()

	ev := types.FileEvent{
		SenderID: 1,
		OriginID: 2,
		// FileName 缺失
		Content: strings.NewReader("a@b.com\n"),
	}

	out := orch.Ingest(ctx, ev)
	if out.Status != ingest.StatusFailed {
		t.Fatalf("invalid event should fail, got %s", out.Status)
	}

	n, _ := l.CountFiles(ctx)
	if n != 0 {
		t.Errorf("invalid event must not leave ledger rows, got %d", n)
	}
}

// TestIngest_SizeLimit 超过大小上限的文件摄取失败.
func TestIngest_SizeLimit(t *testing.T) {
	orch, l, _ := newTestPipeline(t)
	ctx := context.Background()

	big := strings.Repeat("x,", 1024*1024)

	out := orch.Ingest(ctx, csvEvent(big))
	if out.Status != ingest.StatusFailed {
		t.Fatalf("oversized file should fail, got %s", out.Status)
	}

	if out.Err == nil {
		t.Error("failed outcome must carry an error")
	}

	n, _ := l.CountFiles(ctx)
	if n != 0 {
		t.Errorf("failed ingest must not leave ledger rows, got %d", n)
	}
}

// TestIngest_FailurePublishesEvent 摄取失败时发布 snt.file.failed 事件，
// 载荷标明失败阶段.
func TestIngest_FailurePublishesEvent(t *testing.T) {
	ctx := context.Background()

	mqClient, err := mqc.New(ctx, configs.MQConfig{Type: configs.MQTypeGoChannel})
	if err != nil {
		t.Fatalf("new mq: %v", err)
	}
	t.Cleanup(func() { _ = mqClient.Close() })

	msgs, err := mqClient.Subscribe(ctx, queue.TopicFileFailed)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	orch, _, _ := newPipelineWithMQ(t, mqClient)

	ev := csvEvent("user,pass\n")
	ev.FileName = ""

	out := orch.Ingest(ctx, ev)
	if out.Status != ingest.StatusFailed {
		t.Fatalf("invalid event should fail, got %s", out.Status)
	}

	select {
	case m := <-msgs:
		m.Ack()

		env, err := queue.ParseWatermillMessage[queue.FileFailedPayload](m)
		if err != nil {
			t.Fatalf("parse failed event: %v", err)
		}

		if env.Payload.Stage != "validate" || env.Payload.Error == "" {
			t.Errorf("unexpected failure payload: %+v", env.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no failure event published")
	}
}
