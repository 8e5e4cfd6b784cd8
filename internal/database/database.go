package database

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"coursedesk/internal/domain"
)

// Connect opens PostgreSQL for postgres:// URLs and the pure-Go SQLite driver
// for anything else (a file path or ":memory:").
func Connect(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		slog.Info("connecting to postgres")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	slog.Info("using sqlite", "dsn", dsn)
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
	if err != nil {
		return nil, err
	}

	// one writer at a time; also keeps ":memory:" on a single connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// SeedPagePermissions inserts the default page table when it is empty.
func SeedPagePermissions(db *gorm.DB) error {
	var count int64
	if err := db.Model(&domain.PagePermission{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	perms := domain.DefaultPagePermissions()
	return db.Create(&perms).Error
}

// SQLX wraps the pool behind db for hand-written queries. The driver name
// picks the placeholder style used by Rebind.
func SQLX(db *gorm.DB) (*sqlx.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return sqlx.NewDb(sqlDB, db.Dialector.Name()), nil
}
