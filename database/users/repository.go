package users

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"trade-journal/database"
	models "trade-journal/database/models_pkg"
)

// Repository handles database operations for users and invite codes
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db.DB()}
}

// Insert saves a new user. Duplicate emails surface as ConflictError.
func (r *Repository) Insert(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return database.NewConflictError("user", "email already registered")
		}
		return database.WrapDBError("Insert", err)
	}
	return nil
}

// Get retrieves a user by ID
func (r *Repository) Get(id int64) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.NewNotFoundErrorWithID("user", id)
	}
	if err != nil {
		return nil, database.WrapDBError("Get", err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email
func (r *Repository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.NewNotFoundErrorWithID("user", email)
	}
	if err != nil {
		return nil, database.WrapDBError("GetByEmail", err)
	}
	return &user, nil
}

// List retrieves all users, oldest first
func (r *Repository) List() ([]models.User, error) {
	var rows []models.User
	if err := r.db.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, database.WrapDBError("List", err)
	}
	return rows, nil
}

// ListNonAdmins retrieves every non-admin user for cross-user aggregation
func (r *Repository) ListNonAdmins() ([]models.User, error) {
	var rows []models.User
	err := r.db.Where("is_admin = ?", false).Order("id ASC").Find(&rows).Error
	if err != nil {
		return nil, database.WrapDBError("ListNonAdmins", err)
	}
	return rows, nil
}

// TouchLastLogin records a successful login
func (r *Repository) TouchLastLogin(id int64, at time.Time) error {
	err := r.db.Model(&models.User{}).Where("id = ?", id).Update("last_login_at", at).Error
	if err != nil {
		return database.WrapDBError("TouchLastLogin", err)
	}
	return nil
}

// CreateInviteCode mints a fresh invite code
func (r *Repository) CreateInviteCode(createdBy int64, maxUses int, expiresAt *time.Time) (*models.InviteCode, error) {
	code := &models.InviteCode{
		Code:      uuid.NewString(),
		MaxUses:   maxUses,
		ExpiresAt: expiresAt,
		IsActive:  true,
		CreatedBy: createdBy,
	}
	if err := r.db.Create(code).Error; err != nil {
		return nil, database.WrapDBError("CreateInviteCode", err)
	}
	return code, nil
}

// GetInviteCode retrieves an invite code by its code string
func (r *Repository) GetInviteCode(code string) (*models.InviteCode, error) {
	var invite models.InviteCode
	err := r.db.Where("code = ?", code).First(&invite).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.NewNotFoundError("invite code")
	}
	if err != nil {
		return nil, database.WrapDBError("GetInviteCode", err)
	}
	return &invite, nil
}

// ListInviteCodes retrieves all invite codes, newest first
func (r *Repository) ListInviteCodes() ([]models.InviteCode, error) {
	var rows []models.InviteCode
	err := r.db.Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, database.WrapDBError("ListInviteCodes", err)
	}
	return rows, nil
}

// ConsumeInviteCode atomically increments the used count of a still-valid
// code. The guarded UPDATE keeps two concurrent registrations from pushing
// used_count past max_uses.
func (r *Repository) ConsumeInviteCode(id int64) error {
	result := r.db.Model(&models.InviteCode{}).
		Where("id = ? AND is_active = ? AND used_count < max_uses", id, true).
		Update("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return database.WrapDBError("ConsumeInviteCode", result.Error)
	}
	if result.RowsAffected == 0 {
		return database.NewConflictError("invite code", "code exhausted or inactive")
	}
	return nil
}

// ReleaseInviteCode hands back a use taken by ConsumeInviteCode when the
// registration it was spent on fails.
func (r *Repository) ReleaseInviteCode(id int64) error {
	err := r.db.Model(&models.InviteCode{}).
		Where("id = ? AND used_count > 0", id).
		Update("used_count", gorm.Expr("used_count - 1")).Error
	if err != nil {
		return database.WrapDBError("ReleaseInviteCode", err)
	}
	return nil
}

// DeactivateInviteCode turns a code off without deleting its audit trail
func (r *Repository) DeactivateInviteCode(id int64) error {
	result := r.db.Model(&models.InviteCode{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return database.WrapDBError("DeactivateInviteCode", result.Error)
	}
	if result.RowsAffected == 0 {
		return database.NewNotFoundErrorWithID("invite code", id)
	}
	return nil
}
