package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type ConnectorConfig struct {
	Host     string
	Port     string
	Username string
	DbName   string
	Password string
	SslMode  string
}

func (c ConnectorConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s password=%s", c.Host, c.Port, c.Username, c.DbName, c.SslMode, c.Password)
}

type ConnectorFunc func() (*gorm.DB, zerolog.Logger, error)

// NewSQLiteConnector opens a file backed database at path, or a private in-memory
// database when path is empty.
func NewSQLiteConnector(log zerolog.Logger, path string) ConnectorFunc {
	return func() (*gorm.DB, zerolog.Logger, error) {
		dsn, err := sqliteDSN(path)
		if err != nil {
			return nil, log, err
		}

		sublogger := log.With().Str("database", dsn).Logger()

		db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
			Logger:          logger.Default.LogMode(logger.Silent),
			CreateBatchSize: 1000,
		})
		if err != nil {
			return nil, sublogger, err
		}

		if path == "" {
			// every connection to :memory: is a separate database
			sqldb, err := db.DB()
			if err != nil {
				return nil, sublogger, err
			}
			sqldb.SetMaxOpenConns(1)
		}

		sublogger.Info().Msg("opened sqlite database")

		return db, sublogger, nil
	}
}

func sqliteDSN(path string) (string, error) {
	if path == "" {
		return "file::memory:", nil
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	// immediate transactions take the write lock up front so that concurrent
	// ingestions wait on busy_timeout instead of failing on lock upgrade
	params := []string{
		"_foreign_keys=on",
		"_busy_timeout=5000",
		"_journal_mode=WAL",
		"_txlock=immediate",
	}

	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}

	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}

func NewPostgreSQLConnector(log zerolog.Logger, cfg ConnectorConfig) ConnectorFunc {
	return func() (*gorm.DB, zerolog.Logger, error) {
		sublogger := log.With().Str("host", cfg.Host).Str("database", cfg.DbName).Logger()

		sublogger.Info().Msg("connecting to database host")

		db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger: logger.New(
				&sublogger,
				logger.Config{
					SlowThreshold:             time.Second,
					LogLevel:                  logger.Warn,
					IgnoreRecordNotFoundError: true,
					Colorful:                  false,
				},
			),
		})
		if err != nil {
			sublogger.Error().Err(err).Msg("failed to connect to database")
			return nil, sublogger, err
		}

		return db, sublogger, nil
	}
}
