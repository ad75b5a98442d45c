package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a registered journal user. Registration is gated by an
// invite code; admins additionally manage users, SOP taxonomies, invite
// codes and the economic-calendar sync.
type User struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:100;not null" json:"-"`
	DisplayName  string     `gorm:"size:100" json:"display_name"`
	IsAdmin      bool       `gorm:"default:false" json:"is_admin"`
	InviteCodeID *int64     `gorm:"index" json:"invite_code_id,omitempty"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// InviteCode gates registration: a code can be used at most MaxUses times
// until it expires or is deactivated.
type InviteCode struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Code      string     `gorm:"size:64;uniqueIndex;not null" json:"code"`
	MaxUses   int        `gorm:"not null;default:1" json:"max_uses"`
	UsedCount int        `gorm:"not null;default:0" json:"used_count"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	IsActive  bool       `gorm:"default:true" json:"is_active"`
	CreatedBy int64      `gorm:"index" json:"created_by"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for InviteCode
func (InviteCode) TableName() string {
	return "invite_codes"
}

// Trade represents a single journaled trade. Trades are the source of truth
// for every derived number in the system.
//
// Key Fields:
//   - Timestamp: when the trade was executed (authoritative, UTC, indexed)
//   - Result: WIN or LOSS
//   - SopFollowed: whether the user's standard operating procedure was followed
//   - SopTypeID: optional reference into the global SOP taxonomy
//   - ProfitLossUsd: signed realized amount; never zero
//   - Session: market session derived from Timestamp at write time
//
// Invariants (enforced in the trade service):
//   - ProfitLossUsd != 0
//   - Timestamp <= now
//
// Creating, updating, deleting or importing a trade triggers recomputation of
// the affected day's DailySummary.
type Trade struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64           `gorm:"index:idx_trades_user_time,priority:1;not null" json:"user_id"`
	Timestamp     time.Time       `gorm:"index:idx_trades_user_time,priority:2;not null" json:"timestamp"`
	Result        string          `gorm:"size:10;not null" json:"result"` // WIN, LOSS
	SopFollowed   bool            `gorm:"not null;default:false" json:"sop_followed"`
	SopTypeID     *int64          `gorm:"index" json:"sop_type_id,omitempty"`
	ProfitLossUsd decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"profit_loss_usd"`
	Symbol        string          `gorm:"size:20;index" json:"symbol,omitempty"`
	Session       string          `gorm:"size:25;index;not null" json:"session"`
	Notes         string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for Trade
func (Trade) TableName() string {
	return "trades"
}

// DailySummary holds the derived aggregate for one (user, calendar day).
// It is recomputed wholesale from that day's trades on every write touching
// the day and is never edited independently. A day whose last trade was
// deleted keeps its row with all counters zeroed.
type DailySummary struct {
	ID                 int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID             int64           `gorm:"uniqueIndex:idx_summary_user_day,priority:1;not null" json:"user_id"`
	Day                time.Time       `gorm:"type:date;uniqueIndex:idx_summary_user_day,priority:2;not null" json:"day"`
	TotalTrades        int             `gorm:"not null;default:0" json:"total_trades"`
	TotalWins          int             `gorm:"not null;default:0" json:"total_wins"`
	TotalLosses        int             `gorm:"not null;default:0" json:"total_losses"`
	TotalSopFollowed   int             `gorm:"not null;default:0" json:"total_sop_followed"`
	TotalProfitLossUsd decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"total_profit_loss_usd"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for DailySummary
func (DailySummary) TableName() string {
	return "daily_summaries"
}

// SopType is a global (not per-user) named strategy taxonomy entry.
// Deletion is blocked while any trade references it; deactivate instead.
type SopType struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for SopType
func (SopType) TableName() string {
	return "sop_types"
}

// UserTarget is a user-set goal over a bounded date range. Progress is
// computed on read, never stored. A non-nil CompletedAt marks the target
// manually completed regardless of metrics.
type UserTarget struct {
	ID            int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64            `gorm:"index;not null" json:"user_id"`
	TargetType    string           `gorm:"size:10;not null" json:"target_type"` // WEEKLY, MONTHLY, YEARLY
	TargetWinRate *float64         `gorm:"type:decimal(5,2)" json:"target_win_rate,omitempty"`
	TargetSopRate *float64         `gorm:"type:decimal(5,2)" json:"target_sop_rate,omitempty"`
	TargetProfit  *decimal.Decimal `gorm:"type:decimal(15,2)" json:"target_profit_usd,omitempty"`
	StartDate     time.Time        `gorm:"type:date;not null" json:"start_date"`
	EndDate       time.Time        `gorm:"type:date;not null" json:"end_date"`
	IsActive      bool             `gorm:"default:true" json:"is_active"`
	CompletedAt   *time.Time       `json:"completed_at,omitempty"`
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for UserTarget
func (UserTarget) TableName() string {
	return "user_targets"
}

// Badge is a static catalog entry. Requirement holds a JSON-encoded rule of
// shape {"type": <RuleKind>, "target": <number>, "sessionType": <session>?}.
type Badge struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug        string    `gorm:"size:60;uniqueIndex;not null" json:"slug"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	Icon        string    `gorm:"size:50" json:"icon"`
	Tier        string    `gorm:"size:20" json:"tier"` // BRONZE, SILVER, GOLD
	Category    string    `gorm:"size:30" json:"category"`
	Points      int       `gorm:"default:0" json:"points"`
	Requirement string    `gorm:"type:jsonb;not null" json:"requirement"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for Badge
func (Badge) TableName() string {
	return "badges"
}

// UserBadge records that a user earned a badge, at most once. The unique
// index makes the award insert a no-op on duplicates.
type UserBadge struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64     `gorm:"uniqueIndex:idx_user_badge,priority:1;not null" json:"user_id"`
	BadgeID       int64     `gorm:"uniqueIndex:idx_user_badge,priority:2;not null" json:"badge_id"`
	TriggerSource string    `gorm:"size:30" json:"trigger_source"` // TRADE_INSERT, MANUAL
	AwardedAt     time.Time `gorm:"autoCreateTime" json:"awarded_at"`
}

// TableName specifies the table name for UserBadge
func (UserBadge) TableName() string {
	return "user_badges"
}

// CronLog is one audit row per calendar-sync execution.
type CronLog struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	JobName        string    `gorm:"size:50;index;not null" json:"job_name"`
	Status         string    `gorm:"size:20;not null" json:"status"` // SUCCESS, FAILED
	StartedAt      time.Time `gorm:"index;not null" json:"started_at"`
	DurationMs     int64     `json:"duration_ms"`
	ItemsProcessed int       `json:"items_processed"`
	ErrorDetail    string    `gorm:"type:text" json:"error_detail,omitempty"`
}

// TableName specifies the table name for CronLog
func (CronLog) TableName() string {
	return "cron_logs"
}

// EconomicEvent is an imported economic-calendar entry. Rows are upserted by
// the sync job keyed on (external_id).
type EconomicEvent struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalID string    `gorm:"size:64;uniqueIndex;not null" json:"external_id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Country    string    `gorm:"size:10" json:"country"`
	Currency   string    `gorm:"size:10" json:"currency"`
	Impact     string    `gorm:"size:10" json:"impact"` // LOW, MEDIUM, HIGH
	EventTime  time.Time `gorm:"index;not null" json:"event_time"`
	Actual     string    `gorm:"size:50" json:"actual,omitempty"`
	Forecast   string    `gorm:"size:50" json:"forecast,omitempty"`
	Previous   string    `gorm:"size:50" json:"previous,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for EconomicEvent
func (EconomicEvent) TableName() string {
	return "economic_events"
}
