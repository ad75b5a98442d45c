package app

import (
	"sort"
	"time"

	"trade-journal/database"
)

// StreakResult carries the trailing run and the longest run ever observed.
type StreakResult struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// DayStreaks bundles the two calendar-day streaks derived from summaries.
type DayStreaks struct {
	Winning StreakResult `json:"winning"`
	Logging StreakResult `json:"logging"`
}

// ComputeDayStreaks derives winning and logging streaks from the user's
// daily summaries. Runs require calendar adjacency: a missing day or a
// zeroed row (total_trades == 0) breaks both streaks. A winning day is one
// that closed net positive; a logging day is any day with at least one trade.
// The current streak counts back from the most recent logged day.
func ComputeDayStreaks(summaries []database.DailySummary) DayStreaks {
	type dayFacts struct {
		day     time.Time
		logged  bool
		winning bool
	}

	facts := make([]dayFacts, 0, len(summaries))
	for _, s := range summaries {
		if s.TotalTrades == 0 {
			continue
		}
		facts = append(facts, dayFacts{
			day:     time.Date(s.Day.Year(), s.Day.Month(), s.Day.Day(), 0, 0, 0, 0, time.UTC),
			logged:  true,
			winning: s.TotalProfitLossUsd.IsPositive(),
		})
	}
	if len(facts) == 0 {
		return DayStreaks{}
	}

	sort.Slice(facts, func(i, j int) bool { return facts[i].day.Before(facts[j].day) })

	var result DayStreaks
	var logRun, winRun int
	for i, f := range facts {
		adjacent := i > 0 && facts[i-1].day.AddDate(0, 0, 1).Equal(f.day)
		if adjacent {
			logRun++
		} else {
			logRun = 1
		}
		if f.winning {
			if adjacent && facts[i-1].winning {
				winRun++
			} else {
				winRun = 1
			}
		} else {
			winRun = 0
		}
		if logRun > result.Logging.Longest {
			result.Logging.Longest = logRun
		}
		if winRun > result.Winning.Longest {
			result.Winning.Longest = winRun
		}
	}

	result.Logging.Current = logRun
	result.Winning.Current = winRun
	return result
}

// ComputeSopStreak derives the SOP discipline streak from trades in
// chronological order: consecutive trades with sop_followed = true.
func ComputeSopStreak(trades []database.Trade) StreakResult {
	ordered := make([]database.Trade, len(trades))
	copy(ordered, trades)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Timestamp.Before(ordered[j].Timestamp) })

	var result StreakResult
	var run int
	for _, t := range ordered {
		if t.SopFollowed {
			run++
			if run > result.Longest {
				result.Longest = run
			}
		} else {
			run = 0
		}
	}
	result.Current = run
	return result
}
