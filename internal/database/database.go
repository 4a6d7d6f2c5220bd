// Package database opens the PostgreSQL pool and bootstraps the schema.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"actionflow/backend/internal/models"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models are migrated in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.Organization{},
		&models.Admin{},
		&models.User{},
		&models.Resolver{},
		&models.Complaint{},
	}
}

// GormConfig is shared by every dialector. TranslateError makes uniqueness
// violations surface as gorm.ErrDuplicatedKey.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), GormConfig())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// EnsureDatabase creates name through a connection to another database of
// the same server. It reports whether the database was created.
func EnsureDatabase(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, "SELECT 1 FROM pg_database WHERE datname = $1", name).Scan(&one)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("look up database %s: %w", name, err)
	}
	if _, err := db.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		return false, fmt.Errorf("create database %s: %w", name, err)
	}
	return true, nil
}

// MaintenanceDSN points a postgres:// URL at the postgres maintenance
// database and returns it with the target database name.
func MaintenanceDSN(dsn string) (string, string, error) {
	u, err := url.Parse(dsn)
	if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
		return "", "", fmt.Errorf("database url must be postgres://, got %q", redact(dsn))
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return "", "", errors.New("database url has no database name")
	}
	u.Path = "/postgres"
	return u.String(), name, nil
}

// Bootstrap creates the target database when missing.
func Bootstrap(ctx context.Context, dsn string) (bool, error) {
	maint, name, err := MaintenanceDSN(dsn)
	if err != nil {
		return false, err
	}
	db, err := sql.Open("postgres", maint)
	if err != nil {
		return false, err
	}
	defer db.Close()
	return EnsureDatabase(ctx, db, name)
}

func redact(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.User != nil {
		return u.Redacted()
	}
	return dsn
}
