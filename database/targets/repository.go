package targets

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"trade-journal/database"
	models "trade-journal/database/models_pkg"
)

// Repository handles database operations for user targets
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new targets repository
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db.DB()}
}

// Insert saves a new target
func (r *Repository) Insert(target *models.UserTarget) error {
	if err := r.db.Create(target).Error; err != nil {
		return database.WrapDBError("Insert", err)
	}
	return nil
}

// Get retrieves a target by ID
func (r *Repository) Get(id int64) (*models.UserTarget, error) {
	var target models.UserTarget
	err := r.db.First(&target, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.NewNotFoundErrorWithID("target", id)
	}
	if err != nil {
		return nil, database.WrapDBError("Get", err)
	}
	return &target, nil
}

// ListFilter narrows List results
type ListFilter struct {
	TargetType string
	ActiveOnly bool
}

// List retrieves a user's targets, newest range first
func (r *Repository) List(userID int64, filter ListFilter) ([]models.UserTarget, error) {
	query := r.db.Where("user_id = ?", userID).Order("start_date DESC")
	if filter.TargetType != "" {
		query = query.Where("target_type = ?", filter.TargetType)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var rows []models.UserTarget
	if err := query.Find(&rows).Error; err != nil {
		return nil, database.WrapDBError("List", err)
	}
	return rows, nil
}

// Update persists changes to an existing target
func (r *Repository) Update(target *models.UserTarget) error {
	result := r.db.Model(&models.UserTarget{}).Where("id = ?", target.ID).Updates(map[string]interface{}{
		"target_type":     target.TargetType,
		"target_win_rate": target.TargetWinRate,
		"target_sop_rate": target.TargetSopRate,
		"target_profit":   target.TargetProfit,
		"start_date":      target.StartDate,
		"end_date":        target.EndDate,
		"is_active":       target.IsActive,
		"completed_at":    target.CompletedAt,
	})
	if result.Error != nil {
		return database.WrapDBError("Update", result.Error)
	}
	if result.RowsAffected == 0 {
		return database.NewNotFoundErrorWithID("target", target.ID)
	}
	return nil
}

// MarkCompleted sets the manual completion timestamp
func (r *Repository) MarkCompleted(id int64, at time.Time) error {
	result := r.db.Model(&models.UserTarget{}).Where("id = ?", id).Update("completed_at", at)
	if result.Error != nil {
		return database.WrapDBError("MarkCompleted", result.Error)
	}
	if result.RowsAffected == 0 {
		return database.NewNotFoundErrorWithID("target", id)
	}
	return nil
}

// Delete removes a target by ID
func (r *Repository) Delete(id int64) error {
	result := r.db.Delete(&models.UserTarget{}, id)
	if result.Error != nil {
		return database.WrapDBError("Delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return database.NewNotFoundErrorWithID("target", id)
	}
	return nil
}
