package app

import (
	"time"

	"trade-journal/database"
	"trade-journal/database/summaries"
	"trade-journal/database/trades"
)

// The services in this package consume their persistence collaborators
// through small interfaces so the aggregation logic can be tested against
// in-memory fakes. The database sub-repositories satisfy them directly.

// TradeStore is the persistence contract for trade records
type TradeStore interface {
	Insert(trade *database.Trade) error
	BatchInsert(trades []*database.Trade) error
	Get(id int64) (*database.Trade, error)
	Update(trade *database.Trade) error
	Delete(id int64) error
	ListForUserAndDay(userID int64, day time.Time) ([]database.Trade, error)
	ListForUser(userID int64, start, end time.Time) ([]database.Trade, error)
	SessionBreakdown(userID int64) ([]trades.SessionStats, error)
	SopTypeBreakdown(userID int64, start, end time.Time) ([]trades.SopTypeStats, error)
}

// SummaryStore is the persistence contract for daily summaries
type SummaryStore interface {
	Upsert(summary *database.DailySummary) error
	Get(userID int64, day time.Time) (*database.DailySummary, error)
	List(userID int64, start, end time.Time) ([]database.DailySummary, error)
	TotalsForUser(userID int64) (*summaries.Totals, error)
}

// BadgeStore is the persistence contract for the badge catalog and awards
type BadgeStore interface {
	ListCatalog() ([]database.Badge, error)
	ListForUser(userID int64) ([]database.UserBadge, error)
	Award(userID, badgeID int64, triggerSource string) (bool, error)
}

// TargetStore is the persistence contract for user targets
type TargetStore interface {
	Get(id int64) (*database.UserTarget, error)
}

// UserStore is the persistence contract the admin aggregation needs
type UserStore interface {
	ListNonAdmins() ([]database.User, error)
}

// EventPublisher pushes journal events to connected dashboards. Implemented
// by realtime.Broker; nil disables publishing.
type EventPublisher interface {
	Broadcast(event string, payload interface{})
}
