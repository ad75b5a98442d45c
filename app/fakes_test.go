package app

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"trade-journal/database"
	"trade-journal/database/summaries"
	"trade-journal/database/trades"
)

// In-memory store fakes. They mirror the query semantics of the real
// repositories closely enough for service-level tests.

type fakeTradeStore struct {
	nextID int64
	rows   map[int64]database.Trade
}

func newFakeTradeStore() *fakeTradeStore {
	return &fakeTradeStore{nextID: 1, rows: make(map[int64]database.Trade)}
}

func (f *fakeTradeStore) Insert(trade *database.Trade) error {
	trade.ID = f.nextID
	f.nextID++
	f.rows[trade.ID] = *trade
	return nil
}

func (f *fakeTradeStore) BatchInsert(batch []*database.Trade) error {
	for _, trade := range batch {
		if err := f.Insert(trade); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeTradeStore) Get(id int64) (*database.Trade, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, database.NewNotFoundErrorWithID("trade", id)
	}
	return &row, nil
}

func (f *fakeTradeStore) Update(trade *database.Trade) error {
	if _, ok := f.rows[trade.ID]; !ok {
		return database.NewNotFoundErrorWithID("trade", trade.ID)
	}
	f.rows[trade.ID] = *trade
	return nil
}

func (f *fakeTradeStore) Delete(id int64) error {
	if _, ok := f.rows[id]; !ok {
		return database.NewNotFoundErrorWithID("trade", id)
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeTradeStore) ListForUserAndDay(userID int64, day time.Time) ([]database.Trade, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)
	return f.ListForUser(userID, dayStart, dayEnd)
}

func (f *fakeTradeStore) ListForUser(userID int64, start, end time.Time) ([]database.Trade, error) {
	var out []database.Trade
	for _, row := range f.rows {
		if row.UserID != userID {
			continue
		}
		if !start.IsZero() && row.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && !row.Timestamp.Before(end) {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (f *fakeTradeStore) SessionBreakdown(userID int64) ([]trades.SessionStats, error) {
	bySession := make(map[string]*trades.SessionStats)
	for _, row := range f.rows {
		if row.UserID != userID {
			continue
		}
		stat, ok := bySession[row.Session]
		if !ok {
			stat = &trades.SessionStats{Session: row.Session}
			bySession[row.Session] = stat
		}
		stat.Trades++
		if row.Result == database.ResultWin {
			stat.Wins++
		}
	}
	var out []trades.SessionStats
	for _, stat := range bySession {
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Session < out[j].Session })
	return out, nil
}

func (f *fakeTradeStore) SopTypeBreakdown(userID int64, start, end time.Time) ([]trades.SopTypeStats, error) {
	list, _ := f.ListForUser(userID, start, end)
	byType := make(map[int64]*trades.SopTypeStats)
	for _, row := range list {
		if row.SopTypeID == nil {
			continue
		}
		stat, ok := byType[*row.SopTypeID]
		if !ok {
			stat = &trades.SopTypeStats{
				SopTypeID: *row.SopTypeID,
				Name:      fmt.Sprintf("sop-%d", *row.SopTypeID),
			}
			byType[*row.SopTypeID] = stat
		}
		stat.Trades++
		if row.Result == database.ResultWin {
			stat.Wins++
		}
	}
	var out []trades.SopTypeStats
	for _, stat := range byType {
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SopTypeID < out[j].SopTypeID })
	return out, nil
}

type fakeSummaryStore struct {
	rows map[string]database.DailySummary
}

func newFakeSummaryStore() *fakeSummaryStore {
	return &fakeSummaryStore{rows: make(map[string]database.DailySummary)}
}

func summaryRowKey(userID int64, day time.Time) string {
	return fmt.Sprintf("%d:%s", userID, day.UTC().Format("2006-01-02"))
}

func (f *fakeSummaryStore) Upsert(summary *database.DailySummary) error {
	f.rows[summaryRowKey(summary.UserID, summary.Day)] = *summary
	return nil
}

func (f *fakeSummaryStore) Get(userID int64, day time.Time) (*database.DailySummary, error) {
	row, ok := f.rows[summaryRowKey(userID, day)]
	if !ok {
		return nil, database.NewNotFoundError("daily summary")
	}
	return &row, nil
}

func (f *fakeSummaryStore) List(userID int64, start, end time.Time) ([]database.DailySummary, error) {
	var out []database.DailySummary
	for _, row := range f.rows {
		if row.UserID != userID {
			continue
		}
		if !start.IsZero() && row.Day.Before(start) {
			continue
		}
		if !end.IsZero() && !row.Day.Before(end) {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (f *fakeSummaryStore) TotalsForUser(userID int64) (*summaries.Totals, error) {
	totals := &summaries.Totals{TotalProfitLossUsd: decimal.Zero}
	for _, row := range f.rows {
		if row.UserID != userID {
			continue
		}
		totals.TotalTrades += row.TotalTrades
		totals.TotalWins += row.TotalWins
		totals.TotalLosses += row.TotalLosses
		totals.TotalSopFollowed += row.TotalSopFollowed
		totals.TotalProfitLossUsd = totals.TotalProfitLossUsd.Add(row.TotalProfitLossUsd)
		if row.TotalTrades > 0 {
			totals.LoggingDays++
		}
		if row.TotalTrades > totals.MaxTradesInOneDay {
			totals.MaxTradesInOneDay = row.TotalTrades
		}
	}
	return totals, nil
}

type fakeBadgeStore struct {
	catalog []database.Badge
	held    map[string]database.UserBadge
	nextID  int64
}

func newFakeBadgeStore(catalog []database.Badge) *fakeBadgeStore {
	return &fakeBadgeStore{catalog: catalog, held: make(map[string]database.UserBadge), nextID: 1}
}

func (f *fakeBadgeStore) ListCatalog() ([]database.Badge, error) {
	return f.catalog, nil
}

func (f *fakeBadgeStore) ListForUser(userID int64) ([]database.UserBadge, error) {
	var out []database.UserBadge
	for _, ub := range f.held {
		if ub.UserID == userID {
			out = append(out, ub)
		}
	}
	return out, nil
}

func (f *fakeBadgeStore) Award(userID, badgeID int64, triggerSource string) (bool, error) {
	key := fmt.Sprintf("%d:%d", userID, badgeID)
	if _, ok := f.held[key]; ok {
		return false, nil
	}
	f.held[key] = database.UserBadge{
		ID:            f.nextID,
		UserID:        userID,
		BadgeID:       badgeID,
		TriggerSource: triggerSource,
		AwardedAt:     time.Now().UTC(),
	}
	f.nextID++
	return true, nil
}

type fakeUserStore struct {
	users []database.User
}

func (f *fakeUserStore) ListNonAdmins() ([]database.User, error) {
	return f.users, nil
}

// helpers for building test data

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
