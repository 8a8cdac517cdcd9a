// Package bot 实现 Telegram 传输层适配器.
// 它把群聊中的文档消息转成摄取事件交给管线，把 /search 命令转给检索服务，
// 每次交互都恰好回复一条消息.
package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/sentinelbot/sentinel/pkg/configs"
	"github.com/sentinelbot/sentinel/pkg/internal/ingest"
	"github.com/sentinelbot/sentinel/pkg/internal/service"
	"github.com/sentinelbot/sentinel/pkg/internal/types"
	"github.com/sentinelbot/sentinel/pkg/log"
)

// Bot 长轮询 Telegram 更新并分发到摄取管线与检索服务.
type Bot struct {
	api          *tgbotapi.BotAPI
	orchestrator *ingest.Orchestrator
	search       *service.SearchService
	cfg          configs.BotConfig

	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker

	mu       sync.Mutex
	limiters map[int64]*rate.Limiter
}

// New 创建 Bot 适配器并校验 token.
func New(cfg configs.BotConfig, orch *ingest.Orchestrator, search *service.SearchService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	api.Debug = cfg.Debug

	// 文件下载走熔断，连续失败后冷却一段时间再放行
	settings := gobreaker.Settings{
		Name:    "tg-file-download",
		Timeout: cfg.GetBreakerCooldown(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.BreakerFailures)
		},
	}

	return &Bot{
		api:          api,
		orchestrator: orch,
		search:       search,
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: cfg.GetDownloadTimeout()},
		breaker:      gobreaker.NewCircuitBreaker(settings),
		limiters:     make(map[int64]*rate.Limiter),
	}, nil
}

// Run 长轮询更新直到 ctx 取消.
func (b *Bot) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.cfg.PollTimeout

	updates := b.api.GetUpdatesChan(updateConfig)

	log.Logger().Info().Str("bot", b.api.Self.UserName).Msg("telegram bot started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()

			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}

			if update.Message == nil {
				continue
			}

			go b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}

	switch {
	case msg.Document != nil:
		b.handleDocument(ctx, msg)
	case msg.IsCommand() && msg.Command() == "search":
		b.handleSearch(ctx, msg)
	case msg.IsCommand():
		b.reply(msg.Chat.ID, service.UsageNotice)
	default:
		// 非命令的纯文本不回复，避免刷屏
	}
}

// handleDocument 下载文档并交给摄取管线，按结局渲染回执.
func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	doc := msg.Document

	body, err := b.download(ctx, doc.FileID)
	if err != nil {
		log.Logger().Error().Err(err).Str("file_name", doc.FileName).Msg("document download failed")
		b.reply(msg.Chat.ID, "文件下载失败，请稍后重试")

		return
	}
	defer func() { _ = body.Close() }()

	ev := types.FileEvent{
		SenderID:     msg.From.ID,
		SenderHandle: msg.From.UserName,
		OriginID:     msg.Chat.ID,
		OriginName:   msg.Chat.Title,
		FileName:     doc.FileName,
		MimeType:     doc.MimeType,
		ByteSize:     int64(doc.FileSize),
		Content:      body,
	}

	outcome := b.orchestrator.Ingest(ctx, ev)
	b.reply(msg.Chat.ID, replyForOutcome(outcome, doc.FileName))
}

// handleSearch 执行 /search 命令，按会话限速.
func (b *Bot) handleSearch(ctx context.Context, msg *tgbotapi.Message) {
	if !b.limiter(msg.Chat.ID).Allow() {
		b.reply(msg.Chat.ID, "查询太频繁，请稍后再试")
		return
	}

	result, err := b.search.Search(ctx, msg.CommandArguments(), msg.Chat.ID)
	if err != nil {
		log.Logger().Error().Err(err).Msg("search failed")
		b.reply(msg.Chat.ID, "检索失败，请稍后重试")

		return
	}

	b.reply(msg.Chat.ID, service.FormatReply(result))
}

// download 经熔断器获取文件字节流.
func (b *Bot) download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	result, err := b.breaker.Execute(func() (any, error) {
		fileURL, err := b.api.GetFileDirectURL(fileID)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
		if err != nil {
			return nil, err
		}

		resp, err := b.httpClient.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()

			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		return resp.Body, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(io.ReadCloser), nil
}

// limiter 返回会话对应的 /search 限速器，惰性创建.
func (b *Bot) limiter(chatID int64) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()

	if l, ok := b.limiters[chatID]; ok {
		return l
	}

	l := rate.NewLimiter(rate.Limit(b.cfg.SearchRPS), b.cfg.SearchBurst)
	b.limiters[chatID] = l

	return l
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)

	if _, err := b.api.Send(msg); err != nil {
		log.Logger().Warn().Err(err).Int64("chat_id", chatID).Msg("send reply failed")
	}
}

// replyForOutcome 把摄取结局渲染为回执文本.
func replyForOutcome(o ingest.Outcome, fileName string) string {
	switch o.Status {
	case ingest.StatusDuplicate:
		if o.Record.FileName != "" && o.Record.FileName != fileName {
			return fmt.Sprintf("「%s」内容已存在（登记为「%s」），跳过重复登记", fileName, o.Record.FileName)
		}

		return fmt.Sprintf("「%s」内容已存在，跳过重复登记", fileName)
	case ingest.StatusFailed:
		return fmt.Sprintf("「%s」处理失败，请稍后重试", fileName)
	default:
	}

	switch {
	case o.Unsupported:
		return fmt.Sprintf("「%s」已登记（类型不支持抽取）", fileName)
	case o.ParseFailed:
		return fmt.Sprintf("「%s」已登记（解析失败，未抽取字段）", fileName)
	default:
		return fmt.Sprintf("「%s」已登记，抽取字段 %d 条", fileName, o.FieldCount)
	}
}
