// Package service 实现检索服务：查询校验、台账委托、结果缓存与回执格式化.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/sentinelbot/sentinel/pkg/cache"
	"github.com/sentinelbot/sentinel/pkg/configs"
	"github.com/sentinelbot/sentinel/pkg/internal/ledger"
	mqc "github.com/sentinelbot/sentinel/pkg/internal/storage/mq"
	nlog "github.com/sentinelbot/sentinel/pkg/log"
	"github.com/sentinelbot/sentinel/pkg/metrics"
	"github.com/sentinelbot/sentinel/pkg/queue"
)

// UsageNotice 空查询时的用法提示.
const UsageNotice = "用法: /search <关键字>"

// NoMatchNotice 无命中时的提示.
const NoMatchNotice = "没有匹配的记录"

// SearchService 检索服务.依赖经构造函数注入.
type SearchService struct {
	ledger *ledger.Ledger
	cache  *cache.Cache
	mq     *mqc.Client
	cfg    configs.SearchConfig
}

// NewSearchService 创建检索服务.
// cache 可为 nil，此时每次都落库；mq 可为 nil，此时不发布检索事件.
func NewSearchService(l *ledger.Ledger, c *cache.Cache, mq *mqc.Client, cfg configs.SearchConfig) *SearchService {
	return &SearchService{ledger: l, cache: c, mq: mq, cfg: cfg}
}

// Result 一次检索的结果.Usage 为 true 表示查询为空，未触达台账.
type Result struct {
	Query string             `json:"query"`
	Usage bool               `json:"usage"`
	Hits  []ledger.SearchHit `json:"hits"`
}

// Search 处理一次自由文本检索.
// 首尾空白裁掉后为空的查询直接返回用法提示，不查询台账.
// originID 标识请求来源（群聊/会话），无来源时传 0.
func (s *SearchService) Search(ctx context.Context, rawQuery string, originID int64) (Result, error) {
	query := strings.TrimSpace(rawQuery)
	if query == "" {
		return Result{Usage: true}, nil
	}

	metrics.SearchRequests.Inc()

	hits, cached, err := s.lookup(ctx, query)
	if err != nil {
		return Result{}, fmt.Errorf("search %q: %w", query, err)
	}

	s.publishServed(query, len(hits), cached, originID)

	return Result{Query: query, Hits: hits}, nil
}

// lookup 带缓存的台账查询，返回结果是否来自缓存.
// 缓存故障退化为直查，不影响结果.
func (s *SearchService) lookup(ctx context.Context, query string) ([]ledger.SearchHit, bool, error) {
	if s.cache == nil || s.cfg.CacheTTLSec <= 0 {
		hits, err := s.ledger.SearchFields(ctx, query, s.cfg.Limit)
		return hits, false, err
	}

	key := cacheKey(query, s.cfg.Limit)

	if hits, err := cache.Get[[]ledger.SearchHit](ctx, s.cache, key); err == nil {
		return hits, true, nil
	}

	hits, err := s.ledger.SearchFields(ctx, query, s.cfg.Limit)
	if err != nil {
		return nil, false, err
	}

	if err := cache.Set(ctx, s.cache, key, hits, s.cfg.CacheTTL()); err != nil {
		nlog.Logger().Debug().Err(err).Msg("cache search result failed")
	}

	return hits, false, nil
}

// publishServed 发布 snt.search.served 事件，审计每次触达结果的检索.
func (s *SearchService) publishServed(query string, results int, cached bool, originID int64) {
	if s.mq == nil {
		return
	}

	err := queue.PublishSearchServed(s.mq.Publisher(), queue.SearchServedPayload{
		Query:    query,
		Results:  results,
		CacheHit: cached,
		OriginID: originID,
	}, queue.WithProducer(configs.AppName))
	if err != nil {
		nlog.Logger().Warn().Err(err).Msg("publish search served event failed")
	}
}

// cacheKey 由标准化查询与上限推导缓存键，xxhash 保证键长固定.
func cacheKey(query string, limit int) string {
	sum := xxhash.Sum64String(strings.ToLower(query))
	return fmt.Sprintf("search:%016x:%d", sum, limit)
}

// FormatReply 将检索结果渲染为发给请求方的纯文本回执.
func FormatReply(r Result) string {
	if r.Usage {
		return UsageNotice
	}

	if len(r.Hits) == 0 {
		return NoMatchNotice
	}

	var b strings.Builder

	fmt.Fprintf(&b, "「%s」命中 %d 条:\n", r.Query, len(r.Hits))

	for i, h := range r.Hits {
		fmt.Fprintf(&b, "%d. [%s] %s\n   文件: %s (%s)\n",
			i+1, h.Kind, h.Value, h.FileName, h.ExtractedAt.Format(time.DateOnly))
	}

	return strings.TrimRight(b.String(), "\n")
}

// InvalidateQuery 使单个查询的缓存失效（测试与运维用）.
func (s *SearchService) InvalidateQuery(ctx context.Context, query string) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Delete(ctx, cacheKey(strings.TrimSpace(query), s.cfg.Limit)); err != nil {
		nlog.Logger().Debug().Err(err).Msg("invalidate search cache failed")
	}
}
