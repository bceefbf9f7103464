// Package database persists the site catalog so it can be edited outside the
// binary. The widget only reads it at startup.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ecomap/wastemap/internal/config"
	"github.com/ecomap/wastemap/internal/markers"
	"github.com/ecomap/wastemap/pkg/core"
)

const memoryDSN = "file::memory:?cache=shared"

// Manager handles database connections and operations.
type Manager struct {
	DB     *gorm.DB
	SqlDB  *sql.DB
	Logger zerolog.Logger
}

// NewManager creates a new database manager.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{Logger: log}
}

// Connect opens the database named by cfg and checks the connection.
func (m *Manager) Connect(cfg config.DatabaseConfig) error {
	var err error

	switch cfg.Driver {
	case "postgres":
		m.DB, err = m.GetPostgresDB(cfg)
	case "sqlite", "":
		m.DB, err = m.GetSqliteDB(cfg.Path)
	default:
		return fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
	if err != nil {
		return fmt.Errorf("failed to open %s db: %w", cfg.Driver, err)
	}

	// test connection
	m.SqlDB, err = m.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err := m.SqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to validate connection: %w", err)
	}

	if m.DB.Dialector.Name() == "postgres" {
		m.SqlDB.SetMaxOpenConns(10)
	}

	m.Logger.Info().Str("driver", m.DB.Dialector.Name()).Msg("Connected to database")
	return nil
}

// GetPostgresDB returns a connection to the Postgres database.
func (m *Manager) GetPostgresDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.Database,
	)

	m.Logger.Debug().Str("host", cfg.Host).Str("database", cfg.Database).Msg("Connecting to Postgres DB")

	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        1000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

// GetSqliteDB returns a connection to a SQLite database.
// If path is empty, uses an in-memory database.
func (m *Manager) GetSqliteDB(path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = memoryDSN
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        500,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if path == "" {
		m.Logger.Info().Msg("Using local SQLite DB in memory")
	} else {
		m.Logger.Info().Str("path", path).Msg("Using local SQLite DB")
	}

	// set PRAGMAS
	pragmas := []string{
		"PRAGMA user_version = 1;",
		"PRAGMA journal_mode = MEMORY;",
		"PRAGMA synchronous = OFF;",
		"PRAGMA temp_store = MEMORY;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}

	return db, nil
}

// Setup migrates the catalog schema.
func (m *Manager) Setup() error {
	m.Logger.Info().Msg("Migrating schema")
	if err := m.DB.AutoMigrate(DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	m.Logger.Info().Msg("Database setup complete")
	return nil
}

// SaveCatalog replaces every stored site with the contents of store.
func (m *Manager) SaveCatalog(store *markers.Store) error {
	var rows []MarkerRow
	for _, c := range core.Categories() {
		for i, r := range store.Markers(c) {
			row, err := rowFromRecord(c, i, r)
			if err != nil {
				return fmt.Errorf("%s[%d]: %w", c, i, err)
			}
			rows = append(rows, row)
		}
	}

	start := time.Now()
	err := m.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&MarkerRow{}).Error; err != nil {
			return fmt.Errorf("clear markers: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert markers: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.Logger.Info().Int("count", len(rows)).Dur("duration", time.Since(start)).Msg("Saved catalog")
	return nil
}

// LoadCatalog reads every stored site back into a Store, keeping the
// per-category order.
func (m *Manager) LoadCatalog() (*markers.Store, error) {
	var rows []MarkerRow
	if err := m.DB.Order("category").Order("position").Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load markers: %w", err)
	}

	records := make(map[core.Category][]core.MarkerRecord, len(core.Categories()))
	for _, row := range rows {
		c, r, err := row.record()
		if err != nil {
			return nil, err
		}
		records[c] = append(records[c], r)
	}

	m.Logger.Debug().Int("count", len(rows)).Msg("Loaded catalog")
	return markers.New(records), nil
}

// DumpMemoryToDisk vacuums the database to a file, replacing any existing one.
func (m *Manager) DumpMemoryToDisk(path string) error {
	if path == "" {
		return fmt.Errorf("sqlite file path not set")
	}
	if m.DB.Dialector.Name() != "sqlite" {
		return fmt.Errorf("dump is only supported for sqlite")
	}

	// remove existing file if it exists
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("error removing existing DB file: %w", err)
		}
	}

	start := time.Now()
	if err := m.DB.Exec("VACUUM INTO '" + strings.ReplaceAll(path, "'", "''") + "';").Error; err != nil {
		return fmt.Errorf("error dumping DB to disk: %w", err)
	}

	m.Logger.Debug().Dur("duration", time.Since(start)).Str("path", path).Msg("Dumped DB to disk")
	return nil
}

// Close releases the underlying connection pool.
func (m *Manager) Close() error {
	if m.SqlDB == nil {
		return nil
	}
	return m.SqlDB.Close()
}
