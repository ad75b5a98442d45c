package summaries

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trade-journal/database"
	models "trade-journal/database/models_pkg"
)

// Repository handles database operations for daily summaries and the period
// rollups derived from them.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new summaries repository
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db.DB()}
}

// Upsert writes the summary row for (user, day). The unique index on
// (user_id, day) makes concurrent upserts last-writer-wins, which is safe
// because every writer recomputes from the full set of that day's trades.
func (r *Repository) Upsert(summary *models.DailySummary) error {
	summary.Day = truncateToDay(summary.Day)

	err := r.db.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "day"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_trades", "total_wins", "total_losses",
				"total_sop_followed", "total_profit_loss_usd", "updated_at",
			}),
		}).
		Create(summary).Error
	if err != nil {
		return database.WrapDBError("Upsert", err)
	}
	return nil
}

// Get retrieves the summary for (user, day). Returns NotFoundError when no
// row exists for the day.
func (r *Repository) Get(userID int64, day time.Time) (*models.DailySummary, error) {
	var summary models.DailySummary
	err := r.db.
		Where("user_id = ? AND day = ?", userID, truncateToDay(day)).
		First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.NewNotFoundErrorWithID("daily summary", day.Format("2006-01-02"))
	}
	if err != nil {
		return nil, database.WrapDBError("Get", err)
	}
	return &summary, nil
}

// List retrieves summaries for a user within a date range, oldest first.
// Zero start/end values leave that bound open.
func (r *Repository) List(userID int64, start, end time.Time) ([]models.DailySummary, error) {
	query := r.db.Where("user_id = ?", userID).Order("day ASC")
	if !start.IsZero() {
		query = query.Where("day >= ?", truncateToDay(start))
	}
	if !end.IsZero() {
		query = query.Where("day <= ?", truncateToDay(end))
	}

	var rows []models.DailySummary
	if err := query.Find(&rows).Error; err != nil {
		return nil, database.WrapDBError("List", err)
	}
	return rows, nil
}

// Totals folds every summary row for a user into cumulative counters
type Totals struct {
	TotalTrades        int
	TotalWins          int
	TotalLosses        int
	TotalSopFollowed   int
	TotalProfitLossUsd decimal.Decimal
	LoggingDays        int
	MaxTradesInOneDay  int
}

// TotalsForUser aggregates the user's entire summary history. LoggingDays
// and MaxTradesInOneDay only count days that still have trades.
func (r *Repository) TotalsForUser(userID int64) (*Totals, error) {
	var row struct {
		TotalTrades        int
		TotalWins          int
		TotalLosses        int
		TotalSopFollowed   int
		TotalProfitLossUsd decimal.Decimal
		LoggingDays        int
		MaxTradesInOneDay  int
	}
	err := r.db.Model(&models.DailySummary{}).
		Select(`COALESCE(SUM(total_trades), 0) as total_trades,
			COALESCE(SUM(total_wins), 0) as total_wins,
			COALESCE(SUM(total_losses), 0) as total_losses,
			COALESCE(SUM(total_sop_followed), 0) as total_sop_followed,
			COALESCE(SUM(total_profit_loss_usd), 0) as total_profit_loss_usd,
			COALESCE(SUM(CASE WHEN total_trades > 0 THEN 1 ELSE 0 END), 0) as logging_days,
			COALESCE(MAX(total_trades), 0) as max_trades_in_one_day`).
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return nil, database.WrapDBError("TotalsForUser", err)
	}

	return &Totals{
		TotalTrades:        row.TotalTrades,
		TotalWins:          row.TotalWins,
		TotalLosses:        row.TotalLosses,
		TotalSopFollowed:   row.TotalSopFollowed,
		TotalProfitLossUsd: row.TotalProfitLossUsd,
		LoggingDays:        row.LoggingDays,
		MaxTradesInOneDay:  row.MaxTradesInOneDay,
	}, nil
}

// PeriodSummary represents summaries rolled up to a week or month
type PeriodSummary struct {
	PeriodStart        time.Time       `json:"period_start"`
	TotalTrades        int             `json:"total_trades"`
	TotalWins          int             `json:"total_wins"`
	TotalLosses        int             `json:"total_losses"`
	WinRate            float64         `json:"win_rate"`
	TotalSopFollowed   int             `json:"total_sop_followed"`
	TotalProfitLossUsd decimal.Decimal `json:"total_profit_loss_usd"`
}

// ListWeekly rolls daily summaries up to ISO weeks within a date range
func (r *Repository) ListWeekly(userID int64, start, end time.Time) ([]PeriodSummary, error) {
	return r.listPeriod(userID, start, end, "week")
}

// ListMonthly rolls daily summaries up to calendar months within a date range
func (r *Repository) ListMonthly(userID int64, start, end time.Time) ([]PeriodSummary, error) {
	return r.listPeriod(userID, start, end, "month")
}

func (r *Repository) listPeriod(userID int64, start, end time.Time, unit string) ([]PeriodSummary, error) {
	query := `
		SELECT
			DATE_TRUNC(?, day) as period_start,
			SUM(total_trades) as total_trades,
			SUM(total_wins) as total_wins,
			SUM(total_losses) as total_losses,
			CASE WHEN SUM(total_trades) > 0
				THEN SUM(total_wins)::float / SUM(total_trades) * 100
				ELSE 0
			END as win_rate,
			SUM(total_sop_followed) as total_sop_followed,
			SUM(total_profit_loss_usd) as total_profit_loss_usd
		FROM daily_summaries
		WHERE user_id = ?
	`
	args := []interface{}{unit, userID}
	if !start.IsZero() {
		query += " AND day >= ?"
		args = append(args, truncateToDay(start))
	}
	if !end.IsZero() {
		query += " AND day <= ?"
		args = append(args, truncateToDay(end))
	}
	query += `
		GROUP BY DATE_TRUNC(?, day)
		ORDER BY period_start ASC
	`
	args = append(args, unit)

	var rows []PeriodSummary
	err := r.db.Raw(query, args...).Scan(&rows).Error
	if err != nil {
		return nil, database.WrapDBError("listPeriod", err)
	}
	return rows, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
