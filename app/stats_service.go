package app

import (
	"log"
	"time"

	"github.com/shopspring/decimal"
)

// StatsCache is the cache-aside contract for dashboard stats. Implemented by
// cache.StatsCache; a nil-backed implementation degrades to plain reads.
type StatsCache interface {
	GetStats(userID int64, dest interface{}) (bool, error)
	SetStats(userID int64, value interface{}) error
	Invalidate(userID int64) error
}

// UserStats is the dashboard snapshot for one user.
type UserStats struct {
	TotalTrades       int             `json:"totalTrades"`
	TotalWins         int             `json:"totalWins"`
	TotalLosses       int             `json:"totalLosses"`
	WinRate           float64         `json:"winRate"`
	SopRate           float64         `json:"sopRate"`
	NetProfitUsd      decimal.Decimal `json:"netProfitUsd"`
	Streaks           DayStreaks      `json:"streaks"`
	SopStreak         StreakResult    `json:"sopStreak"`
	SessionTrades     map[string]int  `json:"sessionTrades"`
	MaxTradesInOneDay int             `json:"maxTradesInOneDay"`
	TotalLoggingDays  int             `json:"totalLoggingDays"`
	ComputedAt        time.Time       `json:"computedAt"`
}

// StatsService assembles dashboard stats with a short-TTL cache in front.
// Cache failures are logged and bypassed: stats must stay readable when
// Redis is down.
type StatsService struct {
	trades    TradeStore
	summaries SummaryStore
	cache     StatsCache
}

// NewStatsService creates a new stats service
func NewStatsService(trades TradeStore, summaries SummaryStore, cache StatsCache) *StatsService {
	return &StatsService{trades: trades, summaries: summaries, cache: cache}
}

// UserStats returns the dashboard snapshot, serving from cache when fresh.
func (s *StatsService) UserStats(userID int64) (*UserStats, error) {
	if s.cache != nil {
		var cached UserStats
		hit, err := s.cache.GetStats(userID, &cached)
		if err != nil {
			log.Printf("⚠️ Stats cache read failed for user %d: %v", userID, err)
		} else if hit {
			return &cached, nil
		}
	}

	stats, err := s.computeStats(userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetStats(userID, stats); err != nil {
			log.Printf("⚠️ Stats cache write failed for user %d: %v", userID, err)
		}
	}
	return stats, nil
}

// Invalidate drops the cached snapshot after any journal write.
func (s *StatsService) Invalidate(userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(userID); err != nil {
		log.Printf("⚠️ Stats cache invalidation failed for user %d: %v", userID, err)
	}
}

func (s *StatsService) computeStats(userID int64) (*UserStats, error) {
	totals, err := s.summaries.TotalsForUser(userID)
	if err != nil {
		return nil, err
	}
	dailies, err := s.summaries.List(userID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	allTrades, err := s.trades.ListForUser(userID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	sessions, err := s.trades.SessionBreakdown(userID)
	if err != nil {
		return nil, err
	}

	stats := &UserStats{
		TotalTrades:       totals.TotalTrades,
		TotalWins:         totals.TotalWins,
		TotalLosses:       totals.TotalLosses,
		NetProfitUsd:      totals.TotalProfitLossUsd,
		Streaks:           ComputeDayStreaks(dailies),
		SopStreak:         ComputeSopStreak(allTrades),
		SessionTrades:     make(map[string]int, len(sessions)),
		MaxTradesInOneDay: totals.MaxTradesInOneDay,
		TotalLoggingDays:  totals.LoggingDays,
		ComputedAt:        time.Now().UTC(),
	}
	if totals.TotalTrades > 0 {
		stats.WinRate = 100 * float64(totals.TotalWins) / float64(totals.TotalTrades)
		stats.SopRate = 100 * float64(totals.TotalSopFollowed) / float64(totals.TotalTrades)
	}
	for _, sess := range AllSessions() {
		stats.SessionTrades[sess] = 0
	}
	for _, sess := range sessions {
		stats.SessionTrades[sess.Session] = sess.Trades
	}
	return stats, nil
}
