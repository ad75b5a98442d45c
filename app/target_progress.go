package app

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"trade-journal/database"
)

// MetricProgress is the attainment of one target metric over the target window.
type MetricProgress struct {
	Metric  string  `json:"metric"`
	Target  float64 `json:"target"`
	Current float64 `json:"current"`
	// Percent is capped at 100 for display.
	Percent float64 `json:"percent"`
	OnTrack bool    `json:"onTrack"`
}

// TargetProgress is the full progress report for one target.
type TargetProgress struct {
	Target        database.UserTarget `json:"target"`
	Status        string              `json:"status"`
	Metrics       []MetricProgress    `json:"metrics"`
	DaysRemaining int                 `json:"daysRemaining"`
	ElapsedPct    float64             `json:"elapsedPct"`
}

// ComputeTargetProgress scores a target against the daily summaries that
// fall inside its window. Pacing compares the uncapped attainment ratio to
// the elapsed fraction of the window: a metric is on track when progress is
// at least keeping pace with the calendar.
//
// Status precedence: a set completedAt always wins; after the window ends
// the target is completed or failed on whether every set metric reached its
// goal; inside the window all metrics pacing means on-track, none means
// behind, a mix means at-risk.
func ComputeTargetProgress(target *database.UserTarget, windowSummaries []database.DailySummary, now time.Time) TargetProgress {
	var trades, wins, sopFollowed int
	profit := decimal.Zero
	for _, s := range windowSummaries {
		trades += s.TotalTrades
		wins += s.TotalWins
		sopFollowed += s.TotalSopFollowed
		profit = profit.Add(s.TotalProfitLossUsd)
	}

	start := target.StartDate
	end := target.EndDate.AddDate(0, 0, 1) // window closes at the end of EndDate
	elapsed := elapsedFraction(start, end, now)

	var metrics []MetricProgress
	addMetric := func(name string, goal, current float64) {
		ratio := 0.0
		if goal != 0 {
			ratio = current / goal
		}
		metrics = append(metrics, MetricProgress{
			Metric:  name,
			Target:  goal,
			Current: current,
			Percent: math.Min(100, math.Max(0, 100*ratio)),
			OnTrack: ratio >= elapsed,
		})
	}

	if target.TargetWinRate != nil {
		rate := 0.0
		if trades > 0 {
			rate = 100 * float64(wins) / float64(trades)
		}
		addMetric("winRate", *target.TargetWinRate, rate)
	}
	if target.TargetSopRate != nil {
		rate := 0.0
		if trades > 0 {
			rate = 100 * float64(sopFollowed) / float64(trades)
		}
		addMetric("sopRate", *target.TargetSopRate, rate)
	}
	if target.TargetProfit != nil {
		addMetric("profit", target.TargetProfit.InexactFloat64(), profit.InexactFloat64())
	}

	progress := TargetProgress{
		Target:        *target,
		Metrics:       metrics,
		DaysRemaining: daysRemaining(end, now),
		ElapsedPct:    math.Min(100, 100*elapsed),
	}
	progress.Status = deriveStatus(target, metrics, end, now)
	return progress
}

func deriveStatus(target *database.UserTarget, metrics []MetricProgress, end, now time.Time) string {
	if target.CompletedAt != nil {
		return database.TargetStatusCompleted
	}

	allReached := len(metrics) > 0
	for _, m := range metrics {
		if m.Percent < 100 {
			allReached = false
		}
	}

	if !now.Before(end) {
		if allReached {
			return database.TargetStatusCompleted
		}
		return database.TargetStatusFailed
	}

	// Inside the window a target is never auto-completed: rates can still
	// regress, so completion waits for the window to close or a manual
	// completedAt.
	onTrack := 0
	for _, m := range metrics {
		if m.OnTrack {
			onTrack++
		}
	}
	switch {
	case len(metrics) == 0 || onTrack == len(metrics):
		return database.TargetStatusOnTrack
	case onTrack == 0:
		return database.TargetStatusBehind
	default:
		return database.TargetStatusAtRisk
	}
}

func elapsedFraction(start, end, now time.Time) float64 {
	total := end.Sub(start)
	if total <= 0 {
		return 1
	}
	f := float64(now.Sub(start)) / float64(total)
	return math.Min(1, math.Max(0, f))
}

func daysRemaining(end, now time.Time) int {
	if !now.Before(end) {
		return 0
	}
	return int(end.Sub(now).Hours() / 24)
}
