package app

import (
	"log"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"trade-journal/database"
	"trade-journal/database/trades"
)

// UserPerformance is the admin-facing aggregate for one user. Error is set
// instead of the metrics when that user's aggregation failed; one broken
// user never takes down the whole report.
type UserPerformance struct {
	UserID       int64           `json:"userId"`
	Email        string          `json:"email"`
	DisplayName  string          `json:"displayName"`
	TotalTrades  int             `json:"totalTrades"`
	WinRate      float64         `json:"winRate"`
	SopRate      float64         `json:"sopRate"`
	NetProfitUsd decimal.Decimal `json:"netProfitUsd"`
	BestSession  string          `json:"bestSession,omitempty"`
	BestSopType  string          `json:"bestSopType,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// AdminStatsService aggregates performance across all non-admin users.
type AdminStatsService struct {
	users     UserStore
	trades    TradeStore
	summaries SummaryStore
}

// NewAdminStatsService creates a new admin stats service
func NewAdminStatsService(users UserStore, trades TradeStore, summaries SummaryStore) *AdminStatsService {
	return &AdminStatsService{users: users, trades: trades, summaries: summaries}
}

// UserPerformances computes the aggregate row for every non-admin user.
// Per-user failures are recorded in the row and the sweep continues.
func (s *AdminStatsService) UserPerformances() ([]UserPerformance, error) {
	allUsers, err := s.users.ListNonAdmins()
	if err != nil {
		return nil, err
	}

	performances := make([]UserPerformance, 0, len(allUsers))
	for _, u := range allUsers {
		perf := UserPerformance{UserID: u.ID, Email: u.Email, DisplayName: u.DisplayName}
		if err := s.fillPerformance(&perf); err != nil {
			log.Printf("⚠️ Aggregation failed for user %d: %v", u.ID, err)
			perf.Error = err.Error()
		}
		performances = append(performances, perf)
	}
	return performances, nil
}

// Rankings returns user performances ordered by win rate, SOP rate breaking
// ties. Users whose aggregation failed sort last.
func (s *AdminStatsService) Rankings() ([]UserPerformance, error) {
	performances, err := s.UserPerformances()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(performances, func(i, j int) bool {
		a, b := performances[i], performances[j]
		if (a.Error == "") != (b.Error == "") {
			return a.Error == ""
		}
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		return a.SopRate > b.SopRate
	})
	return performances, nil
}

func (s *AdminStatsService) fillPerformance(perf *UserPerformance) error {
	totals, err := s.summaries.TotalsForUser(perf.UserID)
	if err != nil {
		return err
	}
	perf.TotalTrades = totals.TotalTrades
	perf.NetProfitUsd = totals.TotalProfitLossUsd
	if totals.TotalTrades > 0 {
		perf.WinRate = 100 * float64(totals.TotalWins) / float64(totals.TotalTrades)
		perf.SopRate = 100 * float64(totals.TotalSopFollowed) / float64(totals.TotalTrades)
	}

	sessions, err := s.trades.SessionBreakdown(perf.UserID)
	if err != nil {
		return err
	}
	perf.BestSession = bestSession(sessions)

	sopTypes, err := s.trades.SopTypeBreakdown(perf.UserID, time.Time{}, time.Time{})
	if err != nil {
		return err
	}
	perf.BestSopType = bestSopType(sopTypes)
	return nil
}

// bestSession picks the session with the highest win rate among sessions the
// user traded in at all. Equal win rates break lexicographically so the
// report is deterministic.
func bestSession(sessions []trades.SessionStats) string {
	best := ""
	bestRate := -1.0
	for _, s := range sessions {
		if s.Trades == 0 {
			continue
		}
		rate := float64(s.Wins) / float64(s.Trades)
		if rate > bestRate || (rate == bestRate && s.Session < best) {
			best = s.Session
			bestRate = rate
		}
	}
	return best
}

// bestSopType picks the SOP type with the highest win rate among types with
// enough trades to be meaningful. Ties break lexicographically by name.
func bestSopType(sopTypes []trades.SopTypeStats) string {
	best := ""
	bestRate := -1.0
	for _, s := range sopTypes {
		if s.Trades < database.MinTradesForBestSop {
			continue
		}
		rate := float64(s.Wins) / float64(s.Trades)
		if rate > bestRate || (rate == bestRate && s.Name < best) {
			best = s.Name
			bestRate = rate
		}
	}
	return best
}
