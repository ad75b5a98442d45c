package trades

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"trade-journal/database"
	models "trade-journal/database/models_pkg"
)

// Repository handles database operations for trade records
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new trades repository
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db.DB()}
}

// Insert saves a new trade record
func (r *Repository) Insert(trade *models.Trade) error {
	if err := r.db.Create(trade).Error; err != nil {
		return database.WrapDBError("Insert", err)
	}
	return nil
}

// BatchInsert saves multiple trade records in one statement. Used by CSV
// import; callers recompute summaries once per distinct affected day.
func (r *Repository) BatchInsert(trades []*models.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	if err := r.db.CreateInBatches(trades, 100).Error; err != nil {
		return database.WrapDBError("BatchInsert", err)
	}
	return nil
}

// Get retrieves a trade by ID
func (r *Repository) Get(id int64) (*models.Trade, error) {
	var trade models.Trade
	err := r.db.First(&trade, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.NewNotFoundErrorWithID("trade", id)
	}
	if err != nil {
		return nil, database.WrapDBError("Get", err)
	}
	return &trade, nil
}

// Update persists changes to an existing trade
func (r *Repository) Update(trade *models.Trade) error {
	result := r.db.Model(&models.Trade{}).Where("id = ?", trade.ID).Updates(map[string]interface{}{
		"timestamp":       trade.Timestamp,
		"result":          trade.Result,
		"sop_followed":    trade.SopFollowed,
		"sop_type_id":     trade.SopTypeID,
		"profit_loss_usd": trade.ProfitLossUsd,
		"symbol":          trade.Symbol,
		"session":         trade.Session,
		"notes":           trade.Notes,
	})
	if result.Error != nil {
		return database.WrapDBError("Update", result.Error)
	}
	if result.RowsAffected == 0 {
		return database.NewNotFoundErrorWithID("trade", trade.ID)
	}
	return nil
}

// Delete removes a trade by ID
func (r *Repository) Delete(id int64) error {
	result := r.db.Delete(&models.Trade{}, id)
	if result.Error != nil {
		return database.WrapDBError("Delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return database.NewNotFoundErrorWithID("trade", id)
	}
	return nil
}

// ListForUserAndDay retrieves every trade for a user whose timestamp falls
// within [day 00:00, day+1) UTC, oldest first.
func (r *Repository) ListForUserAndDay(userID int64, day time.Time) ([]models.Trade, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	var trades []models.Trade
	err := r.db.
		Where("user_id = ? AND timestamp >= ? AND timestamp < ?", userID, start, end).
		Order("timestamp ASC").
		Find(&trades).Error
	if err != nil {
		return nil, database.WrapDBError("ListForUserAndDay", err)
	}
	return trades, nil
}

// ListForUser retrieves trades for a user within a time range, oldest first.
// Zero start/end values leave that bound open.
func (r *Repository) ListForUser(userID int64, start, end time.Time) ([]models.Trade, error) {
	query := r.db.Where("user_id = ?", userID).Order("timestamp ASC")
	if !start.IsZero() {
		query = query.Where("timestamp >= ?", start)
	}
	if !end.IsZero() {
		query = query.Where("timestamp <= ?", end)
	}

	var trades []models.Trade
	if err := query.Find(&trades).Error; err != nil {
		return nil, database.WrapDBError("ListForUser", err)
	}
	return trades, nil
}

// ListRecent retrieves the newest trades for a user with optional filters
func (r *Repository) ListRecent(userID int64, limit int, result string, sopTypeID *int64) ([]models.Trade, error) {
	if limit <= 0 || limit > database.MaxLimit {
		limit = database.DefaultLimit
	}

	query := r.db.Where("user_id = ?", userID).Order("timestamp DESC").Limit(limit)
	if result != "" {
		query = query.Where("result = ?", result)
	}
	if sopTypeID != nil {
		query = query.Where("sop_type_id = ?", *sopTypeID)
	}

	var trades []models.Trade
	if err := query.Find(&trades).Error; err != nil {
		return nil, database.WrapDBError("ListRecent", err)
	}
	return trades, nil
}

// CountForUser returns the total number of trades a user has logged
func (r *Repository) CountForUser(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Trade{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, database.WrapDBError("CountForUser", err)
	}
	return count, nil
}

// CountBySopType returns how many trades reference a SOP type. Used to block
// deletion of referenced taxonomy entries.
func (r *Repository) CountBySopType(sopTypeID int64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Trade{}).Where("sop_type_id = ?", sopTypeID).Count(&count).Error
	if err != nil {
		return 0, database.WrapDBError("CountBySopType", err)
	}
	return count, nil
}

// SessionStats holds per-session trade and win counts
type SessionStats struct {
	Session string `json:"session"`
	Trades  int    `json:"trades"`
	Wins    int    `json:"wins"`
}

// SessionBreakdown returns per-session trade and win counts for a user
func (r *Repository) SessionBreakdown(userID int64) ([]SessionStats, error) {
	var rows []SessionStats
	err := r.db.Model(&models.Trade{}).
		Select(fmt.Sprintf(`session, COUNT(*) as trades,
			SUM(CASE WHEN result = '%s' THEN 1 ELSE 0 END) as wins`, database.ResultWin)).
		Where("user_id = ?", userID).
		Group("session").
		Find(&rows).Error
	if err != nil {
		return nil, database.WrapDBError("SessionBreakdown", err)
	}
	return rows, nil
}

// SopTypeStats holds per-SOP-type trade and win counts
type SopTypeStats struct {
	SopTypeID int64  `json:"sop_type_id"`
	Name      string `json:"name"`
	Trades    int    `json:"trades"`
	Wins      int    `json:"wins"`
}

// SopTypeBreakdown aggregates per-SOP-type performance for a user in a range
// via a join on the taxonomy table. Trades without a SOP type are excluded.
func (r *Repository) SopTypeBreakdown(userID int64, start, end time.Time) ([]SopTypeStats, error) {
	query := r.db.Table("trades").
		Select(fmt.Sprintf(`trades.sop_type_id, sop_types.name,
			COUNT(*) as trades,
			SUM(CASE WHEN trades.result = '%s' THEN 1 ELSE 0 END) as wins`, database.ResultWin)).
		Joins("JOIN sop_types ON sop_types.id = trades.sop_type_id").
		Where("trades.user_id = ? AND trades.sop_type_id IS NOT NULL", userID).
		Group("trades.sop_type_id, sop_types.name")
	if !start.IsZero() {
		query = query.Where("trades.timestamp >= ?", start)
	}
	if !end.IsZero() {
		query = query.Where("trades.timestamp <= ?", end)
	}

	var rows []SopTypeStats
	if err := query.Find(&rows).Error; err != nil {
		return nil, database.WrapDBError("SopTypeBreakdown", err)
	}
	return rows, nil
}
