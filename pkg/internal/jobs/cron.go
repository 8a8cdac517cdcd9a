// Package jobs 负责注册与实现业务定时任务（基于 scheduler）.
package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ctxPkg "github.com/sentinelbot/sentinel/pkg/context"
	"github.com/sentinelbot/sentinel/pkg/internal/ledger"
	"github.com/sentinelbot/sentinel/pkg/internal/storage"
	"github.com/sentinelbot/sentinel/pkg/log"
	"github.com/sentinelbot/sentinel/pkg/scheduler"
)

// RegisterCronJobs 配置业务定时任务：
//   - 每小时 15 分清理过期的摄取暂存文件
//   - 每天 06:00 输出台账规模统计
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager, scratchDir string, scratchTTL time.Duration) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	if mgr == nil {
		return fmt.Errorf("storage manager is nil")
	}

	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)

	_ = sched.AddCron(JobScratchJanitor, CronScratchJanitor, func(ctx context.Context) {
		runScratchJanitor(scratchDir, scratchTTL)
	}, baseCtx)

	_ = sched.AddCron(JobLedgerStats, CronLedgerStats, func(ctx context.Context) {
		runLedgerStats(ctx, mgr)
	}, baseCtx)

	return nil
}

// runScratchJanitor 删除暂存目录里超过保留期的临时文件.
// 正常流程里管线自己清理暂存文件，这里兜底处理进程中途退出留下的残留.
func runScratchJanitor(scratchDir string, ttl time.Duration) {
	l := log.Logger().With().Str("job", JobScratchJanitor).Logger()

	removed, err := SweepScratch(scratchDir, ttl, time.Now())
	if err != nil {
		l.Error().Err(err).Str("dir", scratchDir).Msg("scratch sweep failed")
		return
	}

	if removed > 0 {
		l.Info().Int("removed", removed).Str("dir", scratchDir).Msg("swept stale scratch files")
	}
}

// SweepScratch 删除 dir 下修改时间早于 now-ttl 的暂存文件，返回删除数量.
// 只处理管线命名的临时文件，其余文件一律不动.
func SweepScratch(dir string, ttl time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}

		return 0, fmt.Errorf("read scratch dir: %w", err)
	}

	cutoff := now.Add(-ttl)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "stage-") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
			removed++
		}
	}

	return removed, nil
}

// runLedgerStats 输出台账规模，便于观察摄取趋势.
func runLedgerStats(ctx context.Context, mgr *storage.Manager) {
	l := log.Logger().With().Str("job", JobLedgerStats).Logger()

	dbClient := mgr.GetDBClient()
	if dbClient == nil {
		l.Error().Msg("db not initialized")
		return
	}

	count, err := ledger.New(dbClient).CountFiles(ctx)
	if err != nil {
		l.Error().Err(err).Msg("count files failed")
		return
	}

	l.Info().Int64("files", count).Msg("ledger stats")
}
