package database

import (
	"fmt"

	"gorm.io/gorm/clause"

	models "trade-journal/database/models_pkg"
)

// JournalRepository is the root repository. It owns schema initialization and
// catalog seeding; per-concern repositories hang off the same connection.
type JournalRepository struct {
	db *Database
}

// NewJournalRepository creates the root repository
func NewJournalRepository(db *Database) *JournalRepository {
	return &JournalRepository{db: db}
}

// InitSchema performs auto-migration and seeds the static catalogs
func (r *JournalRepository) InitSchema() error {
	fmt.Println("🔄 Starting database schema initialization...")

	err := r.db.db.AutoMigrate(
		&models.User{},
		&models.InviteCode{},
		&models.Trade{},
		&models.DailySummary{},
		&models.SopType{},
		&models.UserTarget{},
		&models.Badge{},
		&models.UserBadge{},
		&models.CronLog{},
		&models.EconomicEvent{},
	)
	if err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	if err := r.seedBadgeCatalog(); err != nil {
		return err
	}
	if err := r.seedSopTypes(); err != nil {
		return err
	}

	fmt.Println("✅ Database schema initialization completed successfully")
	return nil
}

// seedBadgeCatalog inserts the static badge catalog. Existing slugs are left
// untouched so re-running migrations never re-awards or mutates tiers.
func (r *JournalRepository) seedBadgeCatalog() error {
	catalog := []models.Badge{
		{Slug: "first-trade", Name: "First Trade", Description: "Log your first trade", Icon: "🌱", Tier: "BRONZE", Category: "volume", Points: 10,
			Requirement: `{"type": "TOTAL_TRADES", "target": 1}`},
		{Slug: "ten-trades", Name: "Getting Started", Description: "Log 10 trades", Icon: "📈", Tier: "BRONZE", Category: "volume", Points: 25,
			Requirement: `{"type": "TOTAL_TRADES", "target": 10}`},
		{Slug: "hundred-trades", Name: "Century Club", Description: "Log 100 trades", Icon: "💯", Tier: "SILVER", Category: "volume", Points: 100,
			Requirement: `{"type": "TOTAL_TRADES", "target": 100}`},
		{Slug: "win-streak-3", Name: "Hat Trick", Description: "3 winning days in a row", Icon: "🎩", Tier: "BRONZE", Category: "streak", Points: 30,
			Requirement: `{"type": "WIN_STREAK", "target": 3}`},
		{Slug: "win-streak-7", Name: "On Fire", Description: "7 winning days in a row", Icon: "🔥", Tier: "GOLD", Category: "streak", Points: 150,
			Requirement: `{"type": "WIN_STREAK", "target": 7}`},
		{Slug: "log-streak-7", Name: "Daily Habit", Description: "Log trades 7 days in a row", Icon: "📅", Tier: "SILVER", Category: "streak", Points: 50,
			Requirement: `{"type": "LOG_STREAK", "target": 7}`},
		{Slug: "sop-streak-10", Name: "Disciplined", Description: "10 consecutive SOP-followed trades", Icon: "🎯", Tier: "SILVER", Category: "discipline", Points: 75,
			Requirement: `{"type": "SOP_STREAK", "target": 10}`},
		{Slug: "profit-1k", Name: "Four Figures", Description: "Reach $1,000 total profit", Icon: "💰", Tier: "SILVER", Category: "profit", Points: 100,
			Requirement: `{"type": "PROFIT_TOTAL", "target": 1000}`},
		{Slug: "win-rate-60", Name: "Sharp Shooter", Description: "Hold a 60% win rate", Icon: "🏹", Tier: "GOLD", Category: "performance", Points: 120,
			Requirement: `{"type": "WIN_RATE", "target": 60}`},
		{Slug: "sop-rate-80", Name: "By The Book", Description: "Hold an 80% SOP compliance rate", Icon: "📖", Tier: "GOLD", Category: "discipline", Points: 120,
			Requirement: `{"type": "SOP_RATE", "target": 80}`},
		{Slug: "london-regular", Name: "London Regular", Description: "Log 25 trades during the Europe session", Icon: "🇬🇧", Tier: "SILVER", Category: "session", Points: 60,
			Requirement: `{"type": "SESSION_TRADES", "target": 25, "sessionType": "EUROPE"}`},
		{Slug: "ny-regular", Name: "New York Regular", Description: "Log 25 trades during the US session", Icon: "🗽", Tier: "SILVER", Category: "session", Points: 60,
			Requirement: `{"type": "SESSION_TRADES", "target": 25, "sessionType": "US"}`},
		{Slug: "busy-day", Name: "Busy Day", Description: "Log 10 trades in a single day", Icon: "⚡", Tier: "BRONZE", Category: "volume", Points: 40,
			Requirement: `{"type": "MAX_TRADES_DAY", "target": 10}`},
		{Slug: "journal-month", Name: "Journaling Month", Description: "30 total days with at least one trade logged", Icon: "🗓️", Tier: "GOLD", Category: "streak", Points: 150,
			Requirement: `{"type": "TOTAL_LOGGING_DAYS", "target": 30}`},
	}

	err := r.db.db.
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slug"}}, DoNothing: true}).
		Create(&catalog).Error
	if err != nil {
		return fmt.Errorf("failed to seed badge catalog: %w", err)
	}
	return nil
}

// seedSopTypes inserts a starter SOP taxonomy; admins manage it afterwards.
func (r *JournalRepository) seedSopTypes() error {
	types := []models.SopType{
		{Name: "Breakout", SortOrder: 1, IsActive: true},
		{Name: "Pullback", SortOrder: 2, IsActive: true},
		{Name: "Reversal", SortOrder: 3, IsActive: true},
		{Name: "News", SortOrder: 4, IsActive: true},
	}

	err := r.db.db.
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&types).Error
	if err != nil {
		return fmt.Errorf("failed to seed sop types: %w", err)
	}
	return nil
}
