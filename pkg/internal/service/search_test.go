package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sentinelbot/sentinel/pkg/cache"
	"github.com/sentinelbot/sentinel/pkg/configs"
	"github.com/sentinelbot/sentinel/pkg/internal/ledger"
	"github.com/sentinelbot/sentinel/pkg/internal/model"
	"github.com/sentinelbot/sentinel/pkg/internal/service"
	dbc "github.com/sentinelbot/sentinel/pkg/internal/storage/db"
	"github.com/sentinelbot/sentinel/pkg/internal/storage/kv"
	"github.com/sentinelbot/sentinel/pkg/internal/storage/mq"
	"github.com/sentinelbot/sentinel/pkg/queue"
)

func newTestService(t *testing.T, withCache bool) (*service.SearchService, *ledger.Ledger) {
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

	var c *cache.Cache

	if withCache {
		store, err := kv.NewMemoryKV(context.Background(), nil)
		if err != nil {
			t.Fatalf("new kv: %v", err)
		}

		c = cache.NewCache(store)
	}

	cfg := configs.SearchConfig{Limit: 10, CacheTTLSec: 30}

	return service.NewSearchService(l, c, nil, cfg), l
}

func seedField(t *testing.T, l *ledger.Ledger, digestSeed, value string, kind model.FieldKind) {
	t.Helper()

	d := strings.Repeat(digestSeed, 64/len(digestSeed))

	res, err := l.InsertFile(context.Background(), model.FileRecord{
		ContentDigest: d,
		StorageKey:    d[:2] + "/" + d[2:4] + "/" + d,
		FileName:      "seed.csv",
		OriginID:      7,
	})
	if err != nil {
		t.Fatalf("insert file: %v", err)
	}

	err = l.InsertFields(context.Background(), res.Record.ID, []model.FieldRecord{
		{Kind: kind, Value: value},
	})
	if err != nil {
		t.Fatalf("insert field: %v", err)
	}
}

// TestSearch_EmptyQueryRejected 空查询与纯空白查询都返回用法提示，不触达台账.
func TestSearch_EmptyQueryRejected(t *testing.T) {
	s, _ := newTestService(t, false)

	for _, q := range []string{"", "   ", "\t\n"} {
		res, err := s.Search(context.Background(), q, 0)
		if err != nil {
			t.Fatalf("search(%q): %v", q, err)
		}

		if !res.Usage {
			t.Errorf("search(%q) should yield usage notice", q)
		}

		if service.FormatReply(res) != service.UsageNotice {
			t.Errorf("usage reply mismatch for %q", q)
		}
	}
}

// TestSearch_HitAndFormat 命中结果带文件来源，回执包含查询与值.
func TestSearch_HitAndFormat(t *testing.T) {
	s, l := newTestService(t, false)
	seedField(t, l, "ab", "alice@example.com", model.FieldKindEmail)

	res, err := s.Search(context.Background(), "  alice  ", 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if res.Usage {
		t.Fatal("non-empty query must not yield usage notice")
	}

	if res.Query != "alice" {
		t.Errorf("query should be trimmed: %q", res.Query)
	}

	if len(res.Hits) != 1 || res.Hits[0].Value != "alice@example.com" {
		t.Fatalf("unexpected hits: %+v", res.Hits)
	}

	reply := service.FormatReply(res)
	if !strings.Contains(reply, "alice@example.com") || !strings.Contains(reply, "seed.csv") {
		t.Errorf("reply missing hit or provenance: %q", reply)
	}
}

// TestSearch_NoMatchNotice 无命中时返回固定提示文本.
func TestSearch_NoMatchNotice(t *testing.T) {
	s, _ := newTestService(t, false)

	res, err := s.Search(context.Background(), "nothing-here", 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(res.Hits) != 0 {
		t.Fatalf("expected no hits, got %+v", res.Hits)
	}

	if service.FormatReply(res) != service.NoMatchNotice {
		t.Errorf("no-match reply mismatch")
	}
}

// TestSearch_CacheServesRepeatQuery 重复查询走缓存，台账新增数据要等缓存失效.
func TestSearch_CacheServesRepeatQuery(t *testing.T) {
	s, l := newTestService(t, true)
	ctx := context.Background()

	seedField(t, l, "cd", "cache-repeat@example.com", model.FieldKindEmail)

	first, err := s.Search(ctx, "cache-repeat", 0)
	if err != nil {
		t.Fatalf("first search: %v", err)
	}

	if len(first.Hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(first.Hits))
	}

	// 新增一条同样匹配的数据
	seedField(t, l, "ef", "cache-repeat2@example.com", model.FieldKindEmail)

	second, err := s.Search(ctx, "cache-repeat", 0)
	if err != nil {
		t.Fatalf("second search: %v", err)
	}

	if len(second.Hits) != 1 {
		t.Errorf("repeat query should be served from cache, got %d hits", len(second.Hits))
	}

	// 失效后看到新数据
	s.InvalidateQuery(ctx, "cache-repeat")

	third, err := s.Search(ctx, "cache-repeat", 0)
	if err != nil {
		t.Fatalf("third search: %v", err)
	}

	if len(third.Hits) != 2 {
		t.Errorf("after invalidation expected 2 hits, got %d", len(third.Hits))
	}
}

// TestSearch_PublishesServedEvent 触达台账的检索发布 snt.search.served 事件，
// 空查询不发布.
func TestSearch_PublishesServedEvent(t *testing.T) {
	_, l := newTestService(t, false)
	ctx := context.Background()

	mqClient, err := mq.New(ctx, configs.MQConfig{Type: configs.MQTypeGoChannel})
	if err != nil {
		t.Fatalf("new mq: %v", err)
	}
	t.Cleanup(func() { _ = mqClient.Close() })

	msgs, err := mqClient.Subscribe(ctx, queue.TopicSearchServed)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	seedField(t, l, "ab", "served@example.com", model.FieldKindEmail)

	audited := service.NewSearchService(l, nil, mqClient, configs.SearchConfig{Limit: 10})

	if _, err := audited.Search(ctx, "   ", 42); err != nil {
		t.Fatalf("usage search: %v", err)
	}

	if _, err := audited.Search(ctx, "served", 42); err != nil {
		t.Fatalf("search: %v", err)
	}

	select {
	case m := <-msgs:
		m.Ack()

		env, err := queue.ParseWatermillMessage[queue.SearchServedPayload](m)
		if err != nil {
			t.Fatalf("parse served event: %v", err)
		}

		p := env.Payload
		if p.Query != "served" || p.Results != 1 || p.OriginID != 42 || p.CacheHit {
			t.Errorf("unexpected served payload: %+v", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no served event published")
	}

	// 通道里不应再有事件（空查询未发布）
	select {
	case m := <-msgs:
		t.Fatalf("unexpected extra event: %s", m.Payload)
	case <-time.After(100 * time.Millisecond):
	}
}
