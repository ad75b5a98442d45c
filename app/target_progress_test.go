package app

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"trade-journal/database"
)

func floatPtr(f float64) *float64 { return &f }

func weekTarget(winRate, sopRate *float64, profit *decimal.Decimal) *database.UserTarget {
	return &database.UserTarget{
		ID:            1,
		UserID:        1,
		TargetType:    database.TargetWeekly,
		TargetWinRate: winRate,
		TargetSopRate: sopRate,
		TargetProfit:  profit,
		StartDate:     day(2026, 3, 2),
		EndDate:       day(2026, 3, 8),
		IsActive:      true,
	}
}

func TestComputeTargetProgressWinRate(t *testing.T) {
	target := weekTarget(floatPtr(50), nil, nil)
	summaries := []database.DailySummary{
		summaryRow(day(2026, 3, 2), 4, 2, 2, "0"),
	}
	now := day(2026, 3, 4)

	progress := ComputeTargetProgress(target, summaries, now)

	if len(progress.Metrics) != 1 {
		t.Fatalf("expected 1 metric, got %d", len(progress.Metrics))
	}
	m := progress.Metrics[0]
	if m.Metric != "winRate" {
		t.Errorf("expected winRate metric, got %s", m.Metric)
	}
	// 2 wins of 4 trades = exactly the 50% goal
	if m.Current != 50 || m.Percent != 100 {
		t.Errorf("expected current 50 percent 100, got %f / %f", m.Current, m.Percent)
	}
	// The window is still open, so the rate can regress: on-track, not done
	if progress.Status != database.TargetStatusOnTrack {
		t.Errorf("expected on-track while the window is open, got %s", progress.Status)
	}
}

func TestComputeTargetProgressRatePacesAgainstCalendar(t *testing.T) {
	target := weekTarget(floatPtr(50), nil, nil)
	summaries := []database.DailySummary{
		// Win rate 30% against a 50% goal: attainment ratio 0.6
		summaryRow(day(2026, 3, 2), 10, 3, 7, "0"),
	}
	now := day(2026, 3, 4) // ~29% of the window elapsed

	progress := ComputeTargetProgress(target, summaries, now)

	m := progress.Metrics[0]
	if !m.OnTrack {
		t.Errorf("ratio 0.6 at 29%% elapsed must be on track, got %+v", m)
	}
	if progress.Status != database.TargetStatusOnTrack {
		t.Errorf("status = %s, want %s", progress.Status, database.TargetStatusOnTrack)
	}
}

func TestComputeTargetProgressStatuses(t *testing.T) {
	profit := mustDecimal("1000")

	tests := []struct {
		name      string
		target    *database.UserTarget
		summaries []database.DailySummary
		now       time.Time
		expected  string
	}{
		{
			name:   "Profit pacing ahead of calendar is on track",
			target: weekTarget(nil, nil, &profit),
			summaries: []database.DailySummary{
				{UserID: 1, Day: day(2026, 3, 2), TotalTrades: 2, TotalWins: 2, TotalProfitLossUsd: mustDecimal("600")},
			},
			now:      day(2026, 3, 4), // ~29% elapsed, 60% attained
			expected: database.TargetStatusOnTrack,
		},
		{
			name:   "Profit lagging the calendar is behind",
			target: weekTarget(nil, nil, &profit),
			summaries: []database.DailySummary{
				{UserID: 1, Day: day(2026, 3, 2), TotalTrades: 2, TotalWins: 1, TotalProfitLossUsd: mustDecimal("50")},
			},
			now:      day(2026, 3, 6), // ~57% elapsed, 5% attained
			expected: database.TargetStatusBehind,
		},
		{
			name:   "Mixed metrics are at risk",
			target: weekTarget(floatPtr(50), nil, &profit),
			summaries: []database.DailySummary{
				// Win rate 100% (on track), profit 50 of 1000 (lagging)
				{UserID: 1, Day: day(2026, 3, 2), TotalTrades: 2, TotalWins: 2, TotalProfitLossUsd: mustDecimal("50")},
			},
			now:      day(2026, 3, 6),
			expected: database.TargetStatusAtRisk,
		},
		{
			name:   "Window over with goals met is completed",
			target: weekTarget(nil, nil, &profit),
			summaries: []database.DailySummary{
				{UserID: 1, Day: day(2026, 3, 2), TotalTrades: 2, TotalWins: 2, TotalProfitLossUsd: mustDecimal("1500")},
			},
			now:      day(2026, 3, 20),
			expected: database.TargetStatusCompleted,
		},
		{
			name:   "Window over with goals missed is failed",
			target: weekTarget(nil, nil, &profit),
			summaries: []database.DailySummary{
				{UserID: 1, Day: day(2026, 3, 2), TotalTrades: 2, TotalWins: 1, TotalProfitLossUsd: mustDecimal("100")},
			},
			now:      day(2026, 3, 20),
			expected: database.TargetStatusFailed,
		},
		{
			name:      "No trades yet inside window is behind",
			target:    weekTarget(nil, nil, &profit),
			summaries: nil,
			now:       day(2026, 3, 6),
			expected:  database.TargetStatusBehind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			progress := ComputeTargetProgress(tt.target, tt.summaries, tt.now)
			if progress.Status != tt.expected {
				t.Errorf("status = %s, want %s", progress.Status, tt.expected)
			}
		})
	}
}

func TestComputeTargetProgressCompletedAtOverrides(t *testing.T) {
	profit := mustDecimal("1000")
	target := weekTarget(nil, nil, &profit)
	at := day(2026, 3, 5)
	target.CompletedAt = &at

	// No summaries at all, window long over: completedAt still wins
	progress := ComputeTargetProgress(target, nil, day(2026, 3, 20))
	if progress.Status != database.TargetStatusCompleted {
		t.Errorf("expected completed via completedAt, got %s", progress.Status)
	}
}

func TestComputeTargetProgressDaysRemaining(t *testing.T) {
	target := weekTarget(floatPtr(50), nil, nil)

	progress := ComputeTargetProgress(target, nil, day(2026, 3, 6))
	// Window closes at the end of March 8; three calendar days left from March 6
	if progress.DaysRemaining != 3 {
		t.Errorf("expected 3 days remaining, got %d", progress.DaysRemaining)
	}

	after := ComputeTargetProgress(target, nil, day(2026, 3, 20))
	if after.DaysRemaining != 0 {
		t.Errorf("days remaining must floor at 0, got %d", after.DaysRemaining)
	}
}
