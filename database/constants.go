package database

import "time"

// Market sessions. Every UTC hour maps to exactly one session; the bands
// partition the 24-hour cycle with no gaps or overlaps.
const (
	SessionAsia              = "ASIA"
	SessionAsiaEuropeOverlap = "ASIA_EUROPE_OVERLAP"
	SessionEurope            = "EUROPE"
	SessionEuropeUSOverlap   = "EUROPE_US_OVERLAP"
	SessionUS                = "US"
)

// Session band boundaries (UTC hours). [00,07) ASIA, [07,09) overlap,
// [09,13) EUROPE, [13,16) overlap, [16,22) US, [22,24) ASIA.
const (
	AsiaEndHour              = 7
	AsiaEuropeOverlapEndHour = 9
	EuropeEndHour            = 13
	EuropeUSOverlapEndHour   = 16
	USEndHour                = 22
)

// Trade results
const (
	ResultWin  = "WIN"
	ResultLoss = "LOSS"
)

// Badge requirement rule kinds. The set is closed; the evaluator has one
// dispatch arm per kind.
const (
	RuleTotalTrades      = "TOTAL_TRADES"
	RuleWinStreak        = "WIN_STREAK"
	RuleLogStreak        = "LOG_STREAK"
	RuleSopStreak        = "SOP_STREAK"
	RuleProfitTotal      = "PROFIT_TOTAL"
	RuleWinRate          = "WIN_RATE"
	RuleSopRate          = "SOP_RATE"
	RuleSessionTrades    = "SESSION_TRADES"
	RuleMaxTradesDay     = "MAX_TRADES_DAY"
	RuleTotalLoggingDays = "TOTAL_LOGGING_DAYS"
)

// Badge evaluation trigger sources. Anything other than TRADE_INSERT is
// treated as a manual trigger with identical evaluation semantics.
const (
	TriggerTradeInsert = "TRADE_INSERT"
	TriggerManual      = "MANUAL"
)

// Target period types
const (
	TargetWeekly  = "WEEKLY"
	TargetMonthly = "MONTHLY"
	TargetYearly  = "YEARLY"
)

// Target overall statuses
const (
	TargetStatusOnTrack   = "on-track"
	TargetStatusAtRisk    = "at-risk"
	TargetStatusBehind    = "behind"
	TargetStatusCompleted = "completed"
	TargetStatusFailed    = "failed"
)

// Cron run statuses
const (
	CronStatusSuccess = "SUCCESS"
	CronStatusFailed  = "FAILED"
)

// Aggregation thresholds
const (
	// Minimum trades a SOP type needs before it can be "best SOP type"
	MinTradesForBestSop = 3
)

// Query limits
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Cache TTLs
const (
	StatsCacheTTL = 2 * time.Minute
)
