package database

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/junaidrashid-git/aurelia-api/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// Tables in creation order.
var Tables = []any{
	&models.User{},
	&models.Product{},
	&models.CartItem{},
	&models.Order{},
	&models.OrderItem{},
	&models.Review{},
}

// Open connects to Postgres or SQLite depending on the URL.
//
//	postgres://..., postgresql://..., "host=... dbname=..."  -> Postgres
//	sqlite://path, file:..., :memory:                         -> SQLite
func Open(url string, logger *slog.Logger) (*gorm.DB, error) {
	dialector, driver, err := dialectorFor(url)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(logger),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// SQLite has a single writer; one connection turns lock contention
		// into queueing instead of SQLITE_BUSY errors.
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Tables...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Reset drops every table and migrates again.
func Reset(db *gorm.DB) error {
	for i := len(Tables) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(Tables[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return Migrate(db)
}

// DriverFor reports which driver a database URL selects.
func DriverFor(url string) (Driver, error) {
	_, driver, err := dialectorFor(url)
	return driver, err
}

func dialectorFor(url string) (gorm.Dialector, Driver, error) {
	url = strings.TrimSpace(url)
	switch {
	case url == "":
		return nil, "", fmt.Errorf("database url is empty")
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"), strings.Contains(url, "host="):
		return postgres.Open(url), DriverPostgres, nil
	case strings.HasPrefix(url, "sqlite://"):
		return sqlite.Open(sqliteDSN(strings.TrimPrefix(url, "sqlite://"))), DriverSQLite, nil
	case strings.HasPrefix(url, "file:"), url == ":memory:":
		return sqlite.Open(sqliteDSN(url)), DriverSQLite, nil
	default:
		return nil, "", fmt.Errorf("unsupported database url %q", url)
	}
}

func sqliteDSN(path string) string {
	if path == "" {
		path = ":memory:"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func newGormLogger(logger *slog.Logger) gormlogger.Interface {
	if logger == nil {
		return gormlogger.Discard
	}
	return gormlogger.New(
		slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}
