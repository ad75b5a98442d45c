package cronlogs

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trade-journal/database"
	models "trade-journal/database/models_pkg"
)

// Repository handles database operations for cron audit rows and the
// economic events imported by the calendar sync.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new cron logs repository
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db.DB()}
}

// InsertLog writes one audit row for a sync execution
func (r *Repository) InsertLog(log *models.CronLog) error {
	if err := r.db.Create(log).Error; err != nil {
		return database.WrapDBError("InsertLog", err)
	}
	return nil
}

// ListLogs retrieves recent runs of a job, newest first
func (r *Repository) ListLogs(jobName string, limit int) ([]models.CronLog, error) {
	if limit <= 0 || limit > database.MaxLimit {
		limit = database.DefaultLimit
	}

	query := r.db.Order("started_at DESC").Limit(limit)
	if jobName != "" {
		query = query.Where("job_name = ?", jobName)
	}

	var rows []models.CronLog
	if err := query.Find(&rows).Error; err != nil {
		return nil, database.WrapDBError("ListLogs", err)
	}
	return rows, nil
}

// UpsertEvents writes imported calendar events keyed on external_id and
// returns how many rows were touched.
func (r *Repository) UpsertEvents(events []*models.EconomicEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	result := r.db.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "country", "currency", "impact",
				"event_time", "actual", "forecast", "previous", "updated_at",
			}),
		}).
		CreateInBatches(events, 100)
	if result.Error != nil {
		return 0, database.WrapDBError("UpsertEvents", result.Error)
	}
	return int(result.RowsAffected), nil
}

// ListEvents retrieves calendar events within a time range, soonest first
func (r *Repository) ListEvents(start, end time.Time, limit int) ([]models.EconomicEvent, error) {
	if limit <= 0 || limit > database.MaxLimit {
		limit = database.DefaultLimit
	}

	query := r.db.Order("event_time ASC").Limit(limit)
	if !start.IsZero() {
		query = query.Where("event_time >= ?", start)
	}
	if !end.IsZero() {
		query = query.Where("event_time <= ?", end)
	}

	var rows []models.EconomicEvent
	if err := query.Find(&rows).Error; err != nil {
		return nil, database.WrapDBError("ListEvents", err)
	}
	return rows, nil
}
