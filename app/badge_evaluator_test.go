package app

import (
	"testing"
	"time"

	"trade-journal/database"
)

func testCatalog() []database.Badge {
	return []database.Badge{
		{ID: 1, Slug: "first-trade", Requirement: `{"type":"TOTAL_TRADES","target":1}`},
		{ID: 2, Slug: "ten-trades", Requirement: `{"type":"TOTAL_TRADES","target":10}`},
		{ID: 3, Slug: "win-streak-3", Requirement: `{"type":"WIN_STREAK","target":3}`},
		{ID: 4, Slug: "profit-1k", Requirement: `{"type":"PROFIT_TOTAL","target":1000}`},
		{ID: 5, Slug: "win-rate-60", Requirement: `{"type":"WIN_RATE","target":60}`},
		{ID: 6, Slug: "london-regular", Requirement: `{"type":"SESSION_TRADES","target":5,"sessionType":"EUROPE"}`},
		{ID: 7, Slug: "broken", Requirement: `{"type":"NO_SUCH_RULE","target":1}`},
	}
}

func setupEvaluator(t *testing.T) (*BadgeEvaluator, *fakeTradeStore, *fakeSummaryStore, *fakeBadgeStore, *SummaryService) {
	t.Helper()
	tradeStore := newFakeTradeStore()
	summaryStore := newFakeSummaryStore()
	badgeStore := newFakeBadgeStore(testCatalog())
	eval := NewBadgeEvaluator(badgeStore, tradeStore, summaryStore)
	return eval, tradeStore, summaryStore, badgeStore, NewSummaryService(tradeStore, summaryStore)
}

func TestParseBadgeRule(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "Valid total trades", input: `{"type":"TOTAL_TRADES","target":10}`},
		{name: "Valid session rule", input: `{"type":"SESSION_TRADES","target":5,"sessionType":"US"}`},
		{name: "Unknown type", input: `{"type":"BOGUS","target":5}`, wantErr: true},
		{name: "Zero target", input: `{"type":"TOTAL_TRADES","target":0}`, wantErr: true},
		{name: "Negative target", input: `{"type":"TOTAL_TRADES","target":-3}`, wantErr: true},
		{name: "Session rule without session", input: `{"type":"SESSION_TRADES","target":5}`, wantErr: true},
		{name: "Malformed JSON", input: `{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBadgeRule(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseBadgeRule(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestEvaluateAwardsAtThreshold(t *testing.T) {
	eval, tradeStore, _, _, summarySvc := setupEvaluator(t)

	d := day(2026, 3, 10)
	seedTrade(t, tradeStore, 1, d.Add(8*time.Hour), database.ResultWin, true, "100.00")
	if _, err := summarySvc.Recompute(1, d); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	awarded, err := eval.Evaluate(1, database.TriggerTradeInsert)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	slugs := make(map[string]bool)
	for _, b := range awarded {
		slugs[b.Slug] = true
	}
	if !slugs["first-trade"] {
		t.Error("expected first-trade to be awarded at 1 trade")
	}
	if slugs["ten-trades"] {
		t.Error("ten-trades must not be awarded at 1 trade")
	}
	// 1 win of 1 trade = 100% win rate
	if !slugs["win-rate-60"] {
		t.Error("expected win-rate-60 at 100% win rate")
	}
}

func TestEvaluateDoesNotReAward(t *testing.T) {
	eval, tradeStore, _, badgeStore, summarySvc := setupEvaluator(t)

	d := day(2026, 3, 10)
	seedTrade(t, tradeStore, 1, d.Add(8*time.Hour), database.ResultWin, true, "100.00")
	if _, err := summarySvc.Recompute(1, d); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	first, err := eval.Evaluate(1, database.TriggerTradeInsert)
	if err != nil {
		t.Fatalf("first Evaluate failed: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("expected awards on first evaluation")
	}

	second, err := eval.Evaluate(1, database.TriggerManual)
	if err != nil {
		t.Fatalf("second Evaluate failed: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("expected no new awards on re-evaluation, got %d", len(second))
	}

	held, _ := badgeStore.ListForUser(1)
	if len(held) != len(first) {
		t.Errorf("expected %d held badges, got %d", len(first), len(held))
	}
}

func TestEvaluateAwardsExactlyAtTransition(t *testing.T) {
	eval, tradeStore, _, badgeStore, summarySvc := setupEvaluator(t)

	d := day(2026, 3, 10)
	addTradeAndEvaluate := func(n int) []database.Badge {
		t.Helper()
		seedTrade(t, tradeStore, 1, d.Add(time.Duration(n)*time.Minute), database.ResultLoss, false, "-1.00")
		if _, err := summarySvc.Recompute(1, d); err != nil {
			t.Fatalf("Recompute failed: %v", err)
		}
		awarded, err := eval.Evaluate(1, database.TriggerTradeInsert)
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		return awarded
	}

	hasTen := func(awarded []database.Badge) bool {
		for _, b := range awarded {
			if b.Slug == "ten-trades" {
				return true
			}
		}
		return false
	}

	for n := 1; n <= 9; n++ {
		if hasTen(addTradeAndEvaluate(n)) {
			t.Fatalf("ten-trades awarded prematurely at trade %d", n)
		}
	}
	if !hasTen(addTradeAndEvaluate(10)) {
		t.Error("ten-trades must be awarded at trade 10")
	}
	if hasTen(addTradeAndEvaluate(11)) {
		t.Error("ten-trades must not be re-awarded at trade 11")
	}

	held, _ := badgeStore.ListForUser(1)
	count := 0
	for _, ub := range held {
		if ub.BadgeID == 2 {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one ten-trades row, got %d", count)
	}
}

func TestEvaluateSessionRule(t *testing.T) {
	eval, tradeStore, _, _, summarySvc := setupEvaluator(t)

	d := day(2026, 3, 10)
	// Five trades at 10:00 UTC land in the EUROPE session
	for i := 0; i < 5; i++ {
		seedTrade(t, tradeStore, 1, d.AddDate(0, 0, i).Add(10*time.Hour), database.ResultLoss, false, "-10.00")
		if _, err := summarySvc.Recompute(1, d.AddDate(0, 0, i)); err != nil {
			t.Fatalf("Recompute failed: %v", err)
		}
	}

	awarded, err := eval.Evaluate(1, database.TriggerTradeInsert)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	found := false
	for _, b := range awarded {
		if b.Slug == "london-regular" {
			found = true
		}
	}
	if !found {
		t.Error("expected london-regular after 5 EUROPE trades")
	}
}

func TestEvaluateSkipsMalformedRule(t *testing.T) {
	eval, tradeStore, _, _, summarySvc := setupEvaluator(t)

	d := day(2026, 3, 10)
	seedTrade(t, tradeStore, 1, d.Add(8*time.Hour), database.ResultWin, true, "100.00")
	if _, err := summarySvc.Recompute(1, d); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	// The "broken" catalog entry must not abort the sweep
	if _, err := eval.Evaluate(1, database.TriggerTradeInsert); err != nil {
		t.Fatalf("Evaluate failed on malformed catalog entry: %v", err)
	}
}

func TestProgressCapsAtHundred(t *testing.T) {
	eval, tradeStore, _, _, summarySvc := setupEvaluator(t)

	d := day(2026, 3, 10)
	// Three trades against the target of 1 for first-trade
	for i := 0; i < 3; i++ {
		seedTrade(t, tradeStore, 1, d.Add(time.Duration(i+1)*time.Hour), database.ResultWin, true, "10.00")
	}
	if _, err := summarySvc.Recompute(1, d); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	progress, err := eval.Progress(1)
	if err != nil {
		t.Fatalf("Progress failed: %v", err)
	}

	for _, p := range progress {
		if p.Percent > 100 {
			t.Errorf("badge %s progress %f exceeds 100", p.Badge.Slug, p.Percent)
		}
		if p.Badge.Slug == "ten-trades" {
			if p.Current != 3 || p.Percent != 30 {
				t.Errorf("ten-trades progress = %f current %f, want 30/3", p.Percent, p.Current)
			}
		}
	}
}
