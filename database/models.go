package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	models "trade-journal/database/models_pkg"
)

// Database wraps a GORM connection
type Database struct {
	db *gorm.DB
}

// DB returns the underlying GORM database instance for direct access when needed.
func (d *Database) DB() *gorm.DB {
	return d.db
}

// Connect establishes the database connection using GORM
func Connect(host string, port int, dbname, user, password string) (*Database, error) {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		host, port, dbname, user, password)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Silent logging for production
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Database{db: db}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Type aliases so callers outside the database package can refer to entities
// without importing models_pkg directly.
type (
	User          = models.User
	InviteCode    = models.InviteCode
	Trade         = models.Trade
	DailySummary  = models.DailySummary
	SopType       = models.SopType
	UserTarget    = models.UserTarget
	Badge         = models.Badge
	UserBadge     = models.UserBadge
	CronLog       = models.CronLog
	EconomicEvent = models.EconomicEvent
)
