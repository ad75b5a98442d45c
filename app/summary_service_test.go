package app

import (
	"testing"
	"time"

	"trade-journal/database"
)

func seedTrade(t *testing.T, store *fakeTradeStore, userID int64, ts time.Time, result string, sop bool, pl string) *database.Trade {
	t.Helper()
	trade := &database.Trade{
		UserID:        userID,
		Timestamp:     ts,
		Result:        result,
		SopFollowed:   sop,
		ProfitLossUsd: mustDecimal(pl),
		Session:       ClassifySession(ts),
	}
	if err := store.Insert(trade); err != nil {
		t.Fatalf("failed to seed trade: %v", err)
	}
	return trade
}

func TestRecomputeFoldsDayTrades(t *testing.T) {
	tradeStore := newFakeTradeStore()
	summaryStore := newFakeSummaryStore()
	svc := NewSummaryService(tradeStore, summaryStore)

	d := day(2026, 3, 10)
	seedTrade(t, tradeStore, 1, d.Add(8*time.Hour), database.ResultWin, true, "100.00")
	seedTrade(t, tradeStore, 1, d.Add(10*time.Hour), database.ResultWin, true, "50.00")
	seedTrade(t, tradeStore, 1, d.Add(14*time.Hour), database.ResultLoss, true, "-30.00")
	// Different user and different day must not leak in
	seedTrade(t, tradeStore, 2, d.Add(9*time.Hour), database.ResultWin, false, "999.00")
	seedTrade(t, tradeStore, 1, d.Add(30*time.Hour), database.ResultLoss, false, "-10.00")

	summary, err := svc.Recompute(1, d)
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	if summary.TotalTrades != 3 {
		t.Errorf("expected 3 trades, got %d", summary.TotalTrades)
	}
	if summary.TotalWins != 2 {
		t.Errorf("expected 2 wins, got %d", summary.TotalWins)
	}
	if summary.TotalLosses != 1 {
		t.Errorf("expected 1 loss, got %d", summary.TotalLosses)
	}
	if summary.TotalSopFollowed != 3 {
		t.Errorf("expected 3 sop-followed, got %d", summary.TotalSopFollowed)
	}
	if !summary.TotalProfitLossUsd.Equal(mustDecimal("120.00")) {
		t.Errorf("expected 120.00 profit, got %s", summary.TotalProfitLossUsd)
	}
	if !summary.Day.Equal(d) {
		t.Errorf("expected day %s, got %s", d, summary.Day)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	tradeStore := newFakeTradeStore()
	summaryStore := newFakeSummaryStore()
	svc := NewSummaryService(tradeStore, summaryStore)

	d := day(2026, 3, 10)
	seedTrade(t, tradeStore, 1, d.Add(8*time.Hour), database.ResultWin, true, "100.00")

	first, err := svc.Recompute(1, d)
	if err != nil {
		t.Fatalf("first Recompute failed: %v", err)
	}
	second, err := svc.Recompute(1, d)
	if err != nil {
		t.Fatalf("second Recompute failed: %v", err)
	}

	if first.TotalTrades != second.TotalTrades ||
		!first.TotalProfitLossUsd.Equal(second.TotalProfitLossUsd) {
		t.Errorf("recompute is not idempotent: %+v vs %+v", first, second)
	}
	if len(summaryStore.rows) != 1 {
		t.Errorf("expected a single summary row, got %d", len(summaryStore.rows))
	}
}

func TestRecomputeZeroesRowAfterLastTradeRemoved(t *testing.T) {
	tradeStore := newFakeTradeStore()
	summaryStore := newFakeSummaryStore()
	svc := NewSummaryService(tradeStore, summaryStore)

	d := day(2026, 3, 10)
	trade := seedTrade(t, tradeStore, 1, d.Add(8*time.Hour), database.ResultWin, true, "100.00")
	if _, err := svc.Recompute(1, d); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	if err := tradeStore.Delete(trade.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	summary, err := svc.Recompute(1, d)
	if err != nil {
		t.Fatalf("Recompute after delete failed: %v", err)
	}

	// The row stays behind, zeroed, to record that the day had activity once
	if summary.TotalTrades != 0 || summary.TotalWins != 0 || !summary.TotalProfitLossUsd.IsZero() {
		t.Errorf("expected zeroed summary, got %+v", summary)
	}
	if _, err := summaryStore.Get(1, d); err != nil {
		t.Errorf("expected summary row to survive, got %v", err)
	}
}

func TestRecomputeDaysDeduplicates(t *testing.T) {
	tradeStore := newFakeTradeStore()
	summaryStore := newFakeSummaryStore()
	svc := NewSummaryService(tradeStore, summaryStore)

	d := day(2026, 3, 10)
	seedTrade(t, tradeStore, 1, d.Add(8*time.Hour), database.ResultWin, true, "100.00")
	seedTrade(t, tradeStore, 1, d.Add(26*time.Hour), database.ResultLoss, false, "-20.00")

	err := svc.RecomputeDays(1, []time.Time{
		d.Add(8 * time.Hour),
		d.Add(10 * time.Hour), // same day twice
		d.Add(26 * time.Hour),
	})
	if err != nil {
		t.Fatalf("RecomputeDays failed: %v", err)
	}
	if len(summaryStore.rows) != 2 {
		t.Errorf("expected 2 summary rows, got %d", len(summaryStore.rows))
	}
}
