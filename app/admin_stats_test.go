package app

import (
	"testing"
	"time"

	"trade-journal/database"
	"trade-journal/database/trades"
)

func TestBestSession(t *testing.T) {
	tests := []struct {
		name     string
		sessions []trades.SessionStats
		expected string
	}{
		{name: "No sessions", expected: ""},
		{
			name: "Highest win rate wins",
			sessions: []trades.SessionStats{
				{Session: database.SessionAsia, Trades: 10, Wins: 4},
				{Session: database.SessionEurope, Trades: 10, Wins: 7},
			},
			expected: database.SessionEurope,
		},
		{
			name: "Tie breaks lexicographically",
			sessions: []trades.SessionStats{
				{Session: database.SessionUS, Trades: 4, Wins: 2},
				{Session: database.SessionEurope, Trades: 10, Wins: 5},
			},
			expected: database.SessionEurope,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bestSession(tt.sessions); got != tt.expected {
				t.Errorf("bestSession = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestBestSopType(t *testing.T) {
	tests := []struct {
		name     string
		sopTypes []trades.SopTypeStats
		expected string
	}{
		{name: "No sop types", expected: ""},
		{
			name: "Below minimum sample is skipped",
			sopTypes: []trades.SopTypeStats{
				{SopTypeID: 1, Name: "Breakout", Trades: 2, Wins: 2},
				{SopTypeID: 2, Name: "Pullback", Trades: 5, Wins: 3},
			},
			expected: "Pullback",
		},
		{
			name: "Tie breaks by name",
			sopTypes: []trades.SopTypeStats{
				{SopTypeID: 1, Name: "Reversal", Trades: 4, Wins: 2},
				{SopTypeID: 2, Name: "Breakout", Trades: 6, Wins: 3},
			},
			expected: "Breakout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bestSopType(tt.sopTypes); got != tt.expected {
				t.Errorf("bestSopType = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestUserPerformancesIsolatesFailures(t *testing.T) {
	tradeStore := newFakeTradeStore()
	summaryStore := newFakeSummaryStore()
	userStore := &fakeUserStore{users: []database.User{
		{ID: 1, Email: "a@example.com", DisplayName: "A"},
		{ID: 2, Email: "b@example.com", DisplayName: "B"},
	}}
	svc := NewAdminStatsService(userStore, tradeStore, summaryStore)
	summarySvc := NewSummaryService(tradeStore, summaryStore)

	d := day(2026, 3, 10)
	seedTrade(t, tradeStore, 1, d.Add(10*time.Hour), database.ResultWin, true, "100.00")
	seedTrade(t, tradeStore, 1, d.Add(11*time.Hour), database.ResultLoss, false, "-40.00")
	if _, err := summarySvc.Recompute(1, d); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	performances, err := svc.UserPerformances()
	if err != nil {
		t.Fatalf("UserPerformances failed: %v", err)
	}
	if len(performances) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(performances))
	}

	byID := make(map[int64]UserPerformance)
	for _, p := range performances {
		byID[p.UserID] = p
	}
	if byID[1].WinRate != 50 {
		t.Errorf("user 1 win rate = %f, want 50", byID[1].WinRate)
	}
	if byID[1].SopRate != 50 {
		t.Errorf("user 1 sop rate = %f, want 50", byID[1].SopRate)
	}
	if byID[2].TotalTrades != 0 || byID[2].Error != "" {
		t.Errorf("user 2 should be an empty row without error, got %+v", byID[2])
	}
}

func TestRankingsOrderedByWinRate(t *testing.T) {
	tradeStore := newFakeTradeStore()
	summaryStore := newFakeSummaryStore()
	userStore := &fakeUserStore{users: []database.User{
		{ID: 1, Email: "low@example.com"},
		{ID: 2, Email: "high@example.com"},
	}}
	svc := NewAdminStatsService(userStore, tradeStore, summaryStore)
	summarySvc := NewSummaryService(tradeStore, summaryStore)

	d := day(2026, 3, 10)
	// User 1: 1 of 2 wins. User 2: 2 of 2 wins.
	seedTrade(t, tradeStore, 1, d.Add(10*time.Hour), database.ResultWin, true, "10.00")
	seedTrade(t, tradeStore, 1, d.Add(11*time.Hour), database.ResultLoss, false, "-10.00")
	seedTrade(t, tradeStore, 2, d.Add(10*time.Hour), database.ResultWin, true, "10.00")
	seedTrade(t, tradeStore, 2, d.Add(11*time.Hour), database.ResultWin, true, "10.00")
	for _, uid := range []int64{1, 2} {
		if _, err := summarySvc.Recompute(uid, d); err != nil {
			t.Fatalf("Recompute failed: %v", err)
		}
	}

	rankings, err := svc.Rankings()
	if err != nil {
		t.Fatalf("Rankings failed: %v", err)
	}
	if rankings[0].UserID != 2 {
		t.Errorf("expected user 2 ranked first, got user %d", rankings[0].UserID)
	}
}
