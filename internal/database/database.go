package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqliteParams = "_busy_timeout=5000&_foreign_keys=on"

func isPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&" + sqliteParams
	}
	return path + "?" + sqliteParams
}

// GormConfig translates driver errors so unique index violations surface as
// gorm.ErrDuplicatedKey.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}
}

// NewDatabase opens a postgres database when given a postgres url and a sqlite
// database file otherwise, then applies all migrations.
func NewDatabase(databaseURL string) (*gorm.DB, error) {
	log.Println("Connecting to database...")

	config := GormConfig()

	var (
		db  *gorm.DB
		err error
	)
	if isPostgresURL(databaseURL) {
		db, err = gorm.Open(postgres.Open(databaseURL), config)
	} else {
		if !strings.HasPrefix(databaseURL, "file:") {
			if err := os.MkdirAll(filepath.Dir(databaseURL), os.ModePerm); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		db, err = gorm.Open(sqlite.Open(sqliteDSN(databaseURL)), config)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unable to access connection pool: %w", err)
	}
	if isPostgresURL(databaseURL) {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(2)
	} else {
		// sqlite allows a single writer at a time
		sqlDB.SetMaxOpenConns(1)
	}
	sqlDB.SetConnMaxIdleTime(time.Minute)

	if err := GetMigrator(db).Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Println("Database connection established.")
	return db, nil
}
