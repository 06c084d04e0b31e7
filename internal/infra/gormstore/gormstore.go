// Package gormstore implements the persistence ports on GORM. It speaks
// Postgres in production and falls back to a local SQLite file when no
// DATABASE_URL is configured, so the API runs out of the box.
package gormstore

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/casadocigano/fidelidade-api/internal/domain"
)

// DB wraps the GORM handle and implements UserStore, StoreDirectory,
// ClientStore, VisitLedger and Seeder.
type DB struct {
	gorm *gorm.DB
	log  *zap.Logger
}

// Open connects to the database. An empty URL selects the SQLite fallback
// (db.sqlite3 in the working directory), a "sqlite:" prefix names an
// explicit SQLite file, and anything else is treated as a Postgres DSN.
// An optional schema is applied via search_path.
func Open(url, schema string, log *zap.Logger) (*DB, error) {
	var dialector gorm.Dialector
	switch {
	case url == "":
		log.Info("no DATABASE_URL set, using local sqlite fallback", zap.String("file", "db.sqlite3"))
		dialector = sqlite.Open("db.sqlite3")
	case strings.HasPrefix(url, "sqlite:"):
		dialector = sqlite.Open(strings.TrimPrefix(url, "sqlite:"))
	default:
		if schema != "" {
			sep := "?"
			if strings.Contains(url, "?") {
				sep = "&"
			}
			url += sep + "search_path=" + schema
		}
		dialector = postgres.Open(url)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &DB{gorm: db, log: log}, nil
}

// AutoMigrate creates or updates the schema for every entity.
func (d *DB) AutoMigrate(ctx context.Context) error {
	return d.gorm.WithContext(ctx).AutoMigrate(domain.AllModels()...)
}

// Close releases the underlying connection pool.
func (d *DB) Close() error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *DB) postgres() bool {
	return d.gorm.Dialector.Name() == "postgres"
}
