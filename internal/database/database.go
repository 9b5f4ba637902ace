package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/locallibrary/internal/config"
	"github.com/mrlokans/locallibrary/internal/entities"
)

var defaultGenres = []string{"Fiction", "Non-fiction", "Science Fiction", "Fantasy", "Poetry"}

var defaultLanguages = []string{"English", "French", "German", "Spanish"}

type Database struct {
	DB     *gorm.DB
	Driver string
}

// Models lists every entity managed by AutoMigrate, in dependency order.
func Models() []any {
	return []any{
		&entities.User{},
		&entities.UserPermission{},
		&entities.Genre{},
		&entities.Language{},
		&entities.Author{},
		&entities.Book{},
		&entities.BookInstance{},
		&entities.AuditEvent{},
	}
}

// NewDatabase opens the configured driver, migrates the schema and seeds
// the default genres and languages.
func NewDatabase(cfg config.Database) (*Database, error) {
	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(parseLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db, Driver: driverName(cfg.Driver)}

	if err := database.seedTaxonomy(); err != nil {
		return nil, fmt.Errorf("failed to seed taxonomy: %w", err)
	}

	log.Printf("Database initialized successfully (%s)", database.Driver)

	return database, nil
}

// NewSQLiteDatabase is a shortcut for a SQLite file database.
func NewSQLiteDatabase(path string) (*Database, error) {
	return NewDatabase(config.Database{Driver: config.DriverSQLite, Path: path, LogLevel: "silent"})
}

func driverName(driver string) string {
	if driver == "" {
		return config.DriverSQLite
	}
	return strings.ToLower(driver)
}

func openDialector(cfg config.Database) (gorm.Dialector, error) {
	switch driverName(cfg.Driver) {
	case config.DriverSQLite:
		if cfg.Path == "" {
			return nil, errors.New("database path is required for sqlite")
		}
		return sqlite.Open(sqliteDSN(cfg.Path)), nil
	case config.DriverPostgres:
		if cfg.DSN == "" {
			return nil, errors.New("DATABASE_DSN is required for postgres")
		}
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// sqliteDSN enables foreign keys so ON DELETE SET NULL is honoured.
func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&_foreign_keys=on"
	}
	return path + "?_foreign_keys=on"
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks database connectivity.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// seedTaxonomy creates the default genres and languages on an empty database.
func (d *Database) seedTaxonomy() error {
	var genreCount int64
	if err := d.DB.Model(&entities.Genre{}).Count(&genreCount).Error; err != nil {
		return err
	}
	if genreCount == 0 {
		for _, name := range defaultGenres {
			if err := d.DB.Create(&entities.Genre{Name: name}).Error; err != nil {
				return fmt.Errorf("failed to create genre %s: %w", name, err)
			}
		}
		log.Printf("Seeded %d default genres", len(defaultGenres))
	}

	var languageCount int64
	if err := d.DB.Model(&entities.Language{}).Count(&languageCount).Error; err != nil {
		return err
	}
	if languageCount == 0 {
		for _, name := range defaultLanguages {
			if err := d.DB.Create(&entities.Language{Name: name}).Error; err != nil {
				return fmt.Errorf("failed to create language %s: %w", name, err)
			}
		}
		log.Printf("Seeded %d default languages", len(defaultLanguages))
	}
	return nil
}

// NotFound maps gorm's missing-record error onto entities.ErrNotFound.
func NotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.ErrNotFound
	}
	return err
}
