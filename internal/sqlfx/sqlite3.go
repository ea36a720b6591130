package sqlfx

import (
	"context"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

const (
	ConfigJournalDSN        = "journal.dsn"
	ConfigJournalMigrations = "journal.migrations"
)

type JournalConfig struct {
	DSN            string
	DatabaseName   string
	MigrationsPath string
}

// Enabled reports whether cycles are journaled to sqlite.
func (c *JournalConfig) Enabled() bool {
	return c.DSN != ""
}

func JournalConfigProvider(v *viper.Viper) *JournalConfig {
	return &JournalConfig{
		DSN:            v.GetString(ConfigJournalDSN),
		DatabaseName:   "logrotd",
		MigrationsPath: v.GetString(ConfigJournalMigrations),
	}
}

// OpenSqliteDatabase returns a nil database when the journal is disabled.
func OpenSqliteDatabase(config *JournalConfig, logger *logrus.Logger) (*sqlx.DB, error) {
	if !config.Enabled() {
		logger.Debug("Cycle journal is disabled")
		return nil, nil
	}

	logger.WithField("dsn", config.DSN).Debug("Connecting to DB with DSN")

	db, err := sqlx.Open("sqlite3", config.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to connect to DB")
	}

	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	if err := Migrate(db, config); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func Migrate(db *sqlx.DB, config *JournalConfig) error {
	driver, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	if err != nil {
		return errors.Wrap(err, "Unable to create instance of migrate")
	}

	m, err := migrate.NewWithDatabaseInstance(config.MigrationsPath, config.DatabaseName, driver)
	if err != nil {
		return errors.Wrap(err, "Unable to load migrations")
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, "Unable to migrate DB")
	}

	return nil
}

func CloseSqliteDatabase(lc fx.Lifecycle, db *sqlx.DB) {
	if db == nil {
		return
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})
}
