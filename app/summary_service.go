package app

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"trade-journal/database"
)

// SummaryService recomputes daily summaries wholesale from the trades of the
// affected day. Summaries are derived state: they are never incremented in
// place, so a recomputation after any write converges to the exact fold of
// the surviving trades.
type SummaryService struct {
	trades    TradeStore
	summaries SummaryStore
}

// NewSummaryService creates a new summary service
func NewSummaryService(trades TradeStore, summaries SummaryStore) *SummaryService {
	return &SummaryService{trades: trades, summaries: summaries}
}

// Recompute re-reads every trade for (user, day) in UTC, folds the
// aggregates and upserts the single summary row. Idempotent: with unchanged
// trade data two calls produce identical rows. Errors must propagate to the
// triggering write, otherwise the derived row would silently go stale.
// Deleting the last trade of a day zeroes the row rather than deleting it.
func (s *SummaryService) Recompute(userID int64, day time.Time) (*database.DailySummary, error) {
	dayTrades, err := s.trades.ListForUserAndDay(userID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades for summary: %w", err)
	}

	summary := FoldTrades(userID, day, dayTrades)
	if err := s.summaries.Upsert(summary); err != nil {
		return nil, fmt.Errorf("failed to upsert daily summary: %w", err)
	}
	return summary, nil
}

// RecomputeDays recomputes each distinct affected day exactly once. Used by
// bulk import so N trades on one day cost one recomputation, not N.
func (s *SummaryService) RecomputeDays(userID int64, days []time.Time) error {
	seen := make(map[string]bool, len(days))
	for _, day := range days {
		key := day.UTC().Format("2006-01-02")
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, err := s.Recompute(userID, day); err != nil {
			return err
		}
	}
	return nil
}

// FoldTrades folds one day's trades into a summary row. Pure function; the
// caller owns persistence.
func FoldTrades(userID int64, day time.Time, dayTrades []database.Trade) *database.DailySummary {
	summary := &database.DailySummary{
		UserID:             userID,
		Day:                time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
		TotalProfitLossUsd: decimal.Zero,
	}

	for _, trade := range dayTrades {
		summary.TotalTrades++
		switch trade.Result {
		case database.ResultWin:
			summary.TotalWins++
		case database.ResultLoss:
			summary.TotalLosses++
		}
		if trade.SopFollowed {
			summary.TotalSopFollowed++
		}
		summary.TotalProfitLossUsd = summary.TotalProfitLossUsd.Add(trade.ProfitLossUsd)
	}

	return summary
}
