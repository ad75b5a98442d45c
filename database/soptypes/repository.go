package soptypes

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"trade-journal/database"
	models "trade-journal/database/models_pkg"
)

// Repository handles database operations for the global SOP taxonomy
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new SOP types repository
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db.DB()}
}

// Insert saves a new SOP type. Duplicate names surface as ConflictError.
func (r *Repository) Insert(sopType *models.SopType) error {
	if err := r.db.Create(sopType).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return database.NewConflictError("sop type", "name already exists")
		}
		return database.WrapDBError("Insert", err)
	}
	return nil
}

// Get retrieves a SOP type by ID
func (r *Repository) Get(id int64) (*models.SopType, error) {
	var sopType models.SopType
	err := r.db.First(&sopType, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.NewNotFoundErrorWithID("sop type", id)
	}
	if err != nil {
		return nil, database.WrapDBError("Get", err)
	}
	return &sopType, nil
}

// List retrieves SOP types in sort order. activeOnly filters out
// deactivated entries.
func (r *Repository) List(activeOnly bool) ([]models.SopType, error) {
	query := r.db.Order("sort_order ASC, name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var rows []models.SopType
	if err := query.Find(&rows).Error; err != nil {
		return nil, database.WrapDBError("List", err)
	}
	return rows, nil
}

// Update persists name, active flag and sort order changes
func (r *Repository) Update(sopType *models.SopType) error {
	result := r.db.Model(&models.SopType{}).Where("id = ?", sopType.ID).Updates(map[string]interface{}{
		"name":       sopType.Name,
		"is_active":  sopType.IsActive,
		"sort_order": sopType.SortOrder,
	})
	if result.Error != nil {
		if strings.Contains(result.Error.Error(), "duplicate key value violates unique constraint") {
			return database.NewConflictError("sop type", "name already exists")
		}
		return database.WrapDBError("Update", result.Error)
	}
	if result.RowsAffected == 0 {
		return database.NewNotFoundErrorWithID("sop type", sopType.ID)
	}
	return nil
}

// Delete removes an unreferenced SOP type. Callers must check trade
// references first; referenced types are deactivated instead.
func (r *Repository) Delete(id int64) error {
	result := r.db.Delete(&models.SopType{}, id)
	if result.Error != nil {
		return database.WrapDBError("Delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return database.NewNotFoundErrorWithID("sop type", id)
	}
	return nil
}
