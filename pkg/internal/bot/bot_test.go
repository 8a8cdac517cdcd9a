package bot

import (
	"strings"
	"testing"

	"golang.org/x/time/rate"

	"github.com/sentinelbot/sentinel/pkg/configs"
	"github.com/sentinelbot/sentinel/pkg/internal/ingest"
	"github.com/sentinelbot/sentinel/pkg/internal/model"
)

func TestReplyForOutcome(t *testing.T) {
	cases := []struct {
		name    string
		outcome ingest.Outcome
		want    string
	}{
		{
			name:    "done with fields",
			outcome: ingest.Outcome{Status: ingest.StatusDone, Record: model.FileRecord{ID: 1}, FieldCount: 3},
			want:    "抽取字段 3 条",
		},
		{
			name:    "unsupported kind",
			outcome: ingest.Outcome{Status: ingest.StatusDone, Unsupported: true},
			want:    "类型不支持抽取",
		},
		{
			name:    "parse failure downgraded",
			outcome: ingest.Outcome{Status: ingest.StatusDone, ParseFailed: true},
			want:    "解析失败",
		},
		{
			name:    "duplicate",
			outcome: ingest.Outcome{Status: ingest.StatusDuplicate},
			want:    "已存在",
		},
		{
			name:    "failed",
			outcome: ingest.Outcome{Status: ingest.StatusFailed},
			want:    "处理失败",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := replyForOutcome(tc.outcome, "leak.csv")
			if !strings.Contains(got, tc.want) {
				t.Fatalf("reply %q does not contain %q", got, tc.want)
			}

			if !strings.Contains(got, "leak.csv") {
				t.Fatalf("reply %q does not name the file", got)
			}
		})
	}
}

func TestLimiter_PerChat(t *testing.T) {
	b := &Bot{
		cfg:      configs.BotConfig{SearchRPS: 1, SearchBurst: 2},
		limiters: make(map[int64]*rate.Limiter),
	}

	first := b.limiter(100)
	if got := b.limiter(100); got != first {
		t.Fatal("same chat must reuse its limiter")
	}

	if got := b.limiter(200); got == first {
		t.Fatal("different chats must not share a limiter")
	}

	// 突发额度耗尽后立即拒绝
	if !first.Allow() || !first.Allow() {
		t.Fatal("burst allowance should admit first requests")
	}

	if first.Allow() {
		t.Fatal("request beyond burst should be rejected")
	}
}
