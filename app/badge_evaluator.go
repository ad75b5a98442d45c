package app

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"trade-journal/database"
)

// BadgeRule is the decoded form of a badge's requirement JSON.
type BadgeRule struct {
	Type        string  `json:"type"`
	Target      float64 `json:"target"`
	SessionType string  `json:"sessionType,omitempty"`
}

// BadgeProgress reports how far a user is toward one badge.
type BadgeProgress struct {
	Badge    database.Badge `json:"badge"`
	Current  float64        `json:"current"`
	Target   float64        `json:"target"`
	Percent  float64        `json:"percent"`
	Earned   bool           `json:"earned"`
	EarnedAt *time.Time     `json:"earnedAt,omitempty"`
}

// BadgeEvaluator walks the badge catalog against a user's aggregate
// performance and awards whatever is newly earned. Awards are permanent:
// the unique (user, badge) constraint makes re-evaluation a no-op for
// badges already held.
type BadgeEvaluator struct {
	badges    BadgeStore
	trades    TradeStore
	summaries SummaryStore
}

// NewBadgeEvaluator creates a new badge evaluator
func NewBadgeEvaluator(badges BadgeStore, trades TradeStore, summaries SummaryStore) *BadgeEvaluator {
	return &BadgeEvaluator{badges: badges, trades: trades, summaries: summaries}
}

// ParseBadgeRule decodes and validates a requirement document.
func ParseBadgeRule(requirement string) (*BadgeRule, error) {
	var rule BadgeRule
	if err := json.Unmarshal([]byte(requirement), &rule); err != nil {
		return nil, fmt.Errorf("malformed badge requirement: %w", err)
	}
	switch rule.Type {
	case database.RuleTotalTrades, database.RuleWinStreak, database.RuleLogStreak,
		database.RuleSopStreak, database.RuleProfitTotal, database.RuleWinRate,
		database.RuleSopRate, database.RuleSessionTrades, database.RuleMaxTradesDay,
		database.RuleTotalLoggingDays:
	default:
		return nil, fmt.Errorf("unknown badge rule type: %q", rule.Type)
	}
	if rule.Target <= 0 {
		return nil, fmt.Errorf("badge rule target must be positive, got %v", rule.Target)
	}
	if rule.Type == database.RuleSessionTrades && rule.SessionType == "" {
		return nil, fmt.Errorf("SESSION_TRADES rule requires sessionType")
	}
	return &rule, nil
}

// userMetrics is the precomputed snapshot all rule kinds read from, so one
// evaluation pass costs a fixed number of queries regardless of catalog size.
type userMetrics struct {
	totalTrades      int
	totalWins        int
	totalSopFollowed int
	totalProfit      float64
	loggingDays      int
	maxTradesDay     int
	winStreakLongest int
	logStreakLongest int
	sopStreakLongest int
	sessionTrades    map[string]int
}

func (e *BadgeEvaluator) collectMetrics(userID int64) (*userMetrics, error) {
	totals, err := e.summaries.TotalsForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load summary totals: %w", err)
	}
	dailies, err := e.summaries.List(userID, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to load daily summaries: %w", err)
	}
	allTrades, err := e.trades.ListForUser(userID, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to load trades: %w", err)
	}
	sessions, err := e.trades.SessionBreakdown(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session breakdown: %w", err)
	}

	dayStreaks := ComputeDayStreaks(dailies)
	sopStreak := ComputeSopStreak(allTrades)

	m := &userMetrics{
		totalTrades:      totals.TotalTrades,
		totalWins:        totals.TotalWins,
		totalSopFollowed: totals.TotalSopFollowed,
		totalProfit:      totals.TotalProfitLossUsd.InexactFloat64(),
		loggingDays:      totals.LoggingDays,
		maxTradesDay:     totals.MaxTradesInOneDay,
		winStreakLongest: dayStreaks.Winning.Longest,
		logStreakLongest: dayStreaks.Logging.Longest,
		sopStreakLongest: sopStreak.Longest,
		sessionTrades:    make(map[string]int, len(sessions)),
	}
	for _, s := range sessions {
		m.sessionTrades[s.Session] = s.Trades
	}
	return m, nil
}

// currentValue dispatches one rule kind over the metrics snapshot. Streak
// rules compare against the longest run ever: a streak badge, once earned,
// stays earned even after the streak breaks. Rate rules are undefined on an
// empty journal and report zero until the first trade exists.
func (m *userMetrics) currentValue(rule *BadgeRule) float64 {
	switch rule.Type {
	case database.RuleTotalTrades:
		return float64(m.totalTrades)
	case database.RuleWinStreak:
		return float64(m.winStreakLongest)
	case database.RuleLogStreak:
		return float64(m.logStreakLongest)
	case database.RuleSopStreak:
		return float64(m.sopStreakLongest)
	case database.RuleProfitTotal:
		return m.totalProfit
	case database.RuleWinRate:
		if m.totalTrades == 0 {
			return 0
		}
		return 100 * float64(m.totalWins) / float64(m.totalTrades)
	case database.RuleSopRate:
		if m.totalTrades == 0 {
			return 0
		}
		return 100 * float64(m.totalSopFollowed) / float64(m.totalTrades)
	case database.RuleSessionTrades:
		return float64(m.sessionTrades[rule.SessionType])
	case database.RuleMaxTradesDay:
		return float64(m.maxTradesDay)
	case database.RuleTotalLoggingDays:
		return float64(m.loggingDays)
	}
	return 0
}

// Evaluate checks every catalog badge against the user's current metrics and
// awards the newly earned ones. Returns the badges awarded by this call.
// A malformed requirement skips that badge with a warning instead of
// aborting the sweep.
func (e *BadgeEvaluator) Evaluate(userID int64, triggerSource string) ([]database.Badge, error) {
	catalog, err := e.badges.ListCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load badge catalog: %w", err)
	}

	metrics, err := e.collectMetrics(userID)
	if err != nil {
		return nil, err
	}

	var awarded []database.Badge
	for _, badge := range catalog {
		rule, err := ParseBadgeRule(badge.Requirement)
		if err != nil {
			log.Printf("⚠️ Skipping badge %s: %v", badge.Slug, err)
			continue
		}
		if metrics.currentValue(rule) < rule.Target {
			continue
		}
		isNew, err := e.badges.Award(userID, badge.ID, triggerSource)
		if err != nil {
			return awarded, fmt.Errorf("failed to award badge %s: %w", badge.Slug, err)
		}
		if isNew {
			log.Printf("🏅 Awarded badge %s to user %d", badge.Slug, userID)
			awarded = append(awarded, badge)
		}
	}
	return awarded, nil
}

// Progress reports per-badge completion for a user's badge page. Display
// percent is capped at 100 even when the metric overshoots the target.
func (e *BadgeEvaluator) Progress(userID int64) ([]BadgeProgress, error) {
	catalog, err := e.badges.ListCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load badge catalog: %w", err)
	}
	held, err := e.badges.ListForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user badges: %w", err)
	}
	earnedAt := make(map[int64]time.Time, len(held))
	for _, ub := range held {
		earnedAt[ub.BadgeID] = ub.AwardedAt
	}

	metrics, err := e.collectMetrics(userID)
	if err != nil {
		return nil, err
	}

	progress := make([]BadgeProgress, 0, len(catalog))
	for _, badge := range catalog {
		rule, err := ParseBadgeRule(badge.Requirement)
		if err != nil {
			log.Printf("⚠️ Skipping badge %s: %v", badge.Slug, err)
			continue
		}
		current := metrics.currentValue(rule)
		entry := BadgeProgress{
			Badge:   badge,
			Current: current,
			Target:  rule.Target,
			Percent: math.Min(100, 100*current/rule.Target),
		}
		if at, ok := earnedAt[badge.ID]; ok {
			entry.Earned = true
			at := at
			entry.EarnedAt = &at
			entry.Percent = 100
		}
		progress = append(progress, entry)
	}
	return progress, nil
}
