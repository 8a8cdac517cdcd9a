package jobs

// 任务名称常量，便于统一管理与引用.
const (
	JobScratchJanitor = "scratch.janitor"
	JobLedgerStats    = "ledger.stats"
)

// Cron 表达式常量.
const (
	CronScratchJanitor = "15 * * * *"
	CronLedgerStats    = "0 6 * * *"
)
