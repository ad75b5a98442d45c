package badges

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trade-journal/database"
	models "trade-journal/database/models_pkg"
)

// Repository handles database operations for the badge catalog and awards
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new badges repository
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db.DB()}
}

// ListCatalog retrieves the full badge catalog in a stable order
func (r *Repository) ListCatalog() ([]models.Badge, error) {
	var catalog []models.Badge
	if err := r.db.Order("id ASC").Find(&catalog).Error; err != nil {
		return nil, database.WrapDBError("ListCatalog", err)
	}
	return catalog, nil
}

// ListForUser retrieves the badges a user has earned, newest first
func (r *Repository) ListForUser(userID int64) ([]models.UserBadge, error) {
	var awards []models.UserBadge
	err := r.db.
		Where("user_id = ?", userID).
		Order("awarded_at DESC").
		Find(&awards).Error
	if err != nil {
		return nil, database.WrapDBError("ListForUser", err)
	}
	return awards, nil
}

// Award inserts a (user, badge) pair. The unique index makes the insert a
// no-op on duplicates: an already-earned badge is never double-granted and
// never revoked. Returns true when a new row was written.
func (r *Repository) Award(userID, badgeID int64, triggerSource string) (bool, error) {
	award := models.UserBadge{
		UserID:        userID,
		BadgeID:       badgeID,
		TriggerSource: triggerSource,
	}

	result := r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
			DoNothing: true,
		}).
		Create(&award)
	if result.Error != nil {
		return false, database.WrapDBError("Award", result.Error)
	}
	return result.RowsAffected > 0, nil
}
