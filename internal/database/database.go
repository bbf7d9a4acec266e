package database

import (
	"fmt"
	"os"

	phxlog "eduflix/backend/pkg/log"

	"github.com/golang-migrate/migrate/v4"
	postgresdriver "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// ConnectDB abre a conexão GORM com o Postgres.
// TranslateError ligado para que violações de índice único cheguem aos
// handlers como gorm.ErrDuplicatedKey — é esse o sinal autoritativo de
// conflito de e-mail, não o check de existência que o precede.
func ConnectDB(dsn string) error {
	logLevel := logger.Silent
	if os.Getenv("APP_ENV") == "development" {
		logLevel = logger.Info
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	phxlog.L.Info("Database connection established")
	return nil
}

// MigrateDB aplica as migrações SQL de internal/database/migrations
// usando golang-migrate sobre a conexão já aberta.
func MigrateDB() error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized, call ConnectDB first")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	driver, err := postgresdriver.WithInstance(sqlDB, &postgresdriver.Config{})
	if err != nil {
		return fmt.Errorf("could not create postgres driver for migrate: %w", err)
	}

	sourceURL := os.Getenv("MIGRATIONS_SOURCE_URL")
	if sourceURL == "" {
		sourceURL = "file://internal/database/migrations"
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to initialize migrate with source %q: %w", sourceURL, err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		phxlog.L.Warn("Could not read migration version after applying", zap.Error(err))
	} else {
		phxlog.L.Info("Database migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}
	return nil
}

// GetDB returns the current database instance.
func GetDB() *gorm.DB {
	return DB
}

// SetDB substitui a instância global. Usado pelos testes para injetar o mock.
func SetDB(db *gorm.DB) {
	DB = db
}
