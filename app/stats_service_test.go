package app

import (
	"encoding/json"
	"testing"
	"time"

	"trade-journal/database"
)

// memoryStatsCache is an in-process StatsCache for exercising the
// cache-aside path without Redis
type memoryStatsCache struct {
	entries map[int64][]byte
	hits    int
	writes  int
}

func newMemoryStatsCache() *memoryStatsCache {
	return &memoryStatsCache{entries: make(map[int64][]byte)}
}

func (c *memoryStatsCache) GetStats(userID int64, dest interface{}) (bool, error) {
	raw, ok := c.entries[userID]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryStatsCache) SetStats(userID int64, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[userID] = raw
	c.writes++
	return nil
}

func (c *memoryStatsCache) Invalidate(userID int64) error {
	delete(c.entries, userID)
	return nil
}

func TestUserStatsSnapshot(t *testing.T) {
	tradeStore := newFakeTradeStore()
	summaryStore := newFakeSummaryStore()
	summarySvc := NewSummaryService(tradeStore, summaryStore)
	svc := NewStatsService(tradeStore, summaryStore, nil)

	d := day(2026, 3, 10)
	seedTrade(t, tradeStore, 1, d.Add(10*time.Hour), database.ResultWin, true, "100.00")  // EUROPE
	seedTrade(t, tradeStore, 1, d.Add(18*time.Hour), database.ResultLoss, true, "-40.00") // US
	if _, err := summarySvc.Recompute(1, d); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	d2 := d.AddDate(0, 0, 1)
	seedTrade(t, tradeStore, 1, d2.Add(10*time.Hour), database.ResultWin, false, "25.00")
	if _, err := summarySvc.Recompute(1, d2); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	stats, err := svc.UserStats(1)
	if err != nil {
		t.Fatalf("UserStats failed: %v", err)
	}

	if stats.TotalTrades != 3 || stats.TotalWins != 2 || stats.TotalLosses != 1 {
		t.Errorf("totals wrong: %+v", stats)
	}
	if !stats.NetProfitUsd.Equal(mustDecimal("85.00")) {
		t.Errorf("net profit = %s, want 85.00", stats.NetProfitUsd)
	}
	if stats.SessionTrades[database.SessionEurope] != 2 {
		t.Errorf("EUROPE trades = %d, want 2", stats.SessionTrades[database.SessionEurope])
	}
	if stats.SessionTrades[database.SessionUS] != 1 {
		t.Errorf("US trades = %d, want 1", stats.SessionTrades[database.SessionUS])
	}
	// Every session key is present even with zero trades
	if _, ok := stats.SessionTrades[database.SessionAsia]; !ok {
		t.Error("expected ASIA key in session map")
	}
	if stats.TotalLoggingDays != 2 {
		t.Errorf("logging days = %d, want 2", stats.TotalLoggingDays)
	}
	if stats.MaxTradesInOneDay != 2 {
		t.Errorf("max trades in one day = %d, want 2", stats.MaxTradesInOneDay)
	}
	if stats.Streaks.Logging.Current != 2 {
		t.Errorf("logging streak = %d, want 2", stats.Streaks.Logging.Current)
	}
}

func TestUserStatsUsesCache(t *testing.T) {
	tradeStore := newFakeTradeStore()
	summaryStore := newFakeSummaryStore()
	summarySvc := NewSummaryService(tradeStore, summaryStore)
	memCache := newMemoryStatsCache()
	svc := NewStatsService(tradeStore, summaryStore, memCache)

	d := day(2026, 3, 10)
	seedTrade(t, tradeStore, 1, d.Add(10*time.Hour), database.ResultWin, true, "100.00")
	if _, err := summarySvc.Recompute(1, d); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	if _, err := svc.UserStats(1); err != nil {
		t.Fatalf("first UserStats failed: %v", err)
	}
	if memCache.writes != 1 {
		t.Errorf("expected one cache write, got %d", memCache.writes)
	}

	if _, err := svc.UserStats(1); err != nil {
		t.Fatalf("second UserStats failed: %v", err)
	}
	if memCache.hits != 1 {
		t.Errorf("expected one cache hit, got %d", memCache.hits)
	}

	svc.Invalidate(1)
	if _, err := svc.UserStats(1); err != nil {
		t.Fatalf("post-invalidate UserStats failed: %v", err)
	}
	if memCache.writes != 2 {
		t.Errorf("expected recompute after invalidation, writes = %d", memCache.writes)
	}
}
