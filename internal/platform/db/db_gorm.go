package db

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	authadapters "stockflow_backend/internal/feature/auth/adapters"
	authentity "stockflow_backend/internal/feature/auth/domain/entity"
	cacheadapters "stockflow_backend/internal/feature/apicache/adapters"
	symbolentity "stockflow_backend/internal/feature/symbollist/domain/entity"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config holds database connection settings.
type Config struct {
	Driver       string // "sqlite" (default) or "postgres"
	Path         string // SQLite file path
	User         string
	Password     string
	Name         string
	Host         string
	Port         string
	InstanceName string // Cloud SQL instance (project:region:instance)
}

// Opener opens a gorm session for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

// LoadConfigFromEnv reads database settings from environment variables.
func LoadConfigFromEnv() Config {
	cfg := Config{
		Driver:       os.Getenv("DB_DRIVER"),
		Path:         os.Getenv("DB_PATH"),
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		Name:         os.Getenv("DB_NAME"),
		Host:         os.Getenv("DB_HOST"),
		Port:         os.Getenv("DB_PORT"),
		InstanceName: os.Getenv("INSTANCE_CONNECTION_NAME"),
	}
	if cfg.Driver == "" {
		cfg.Driver = "sqlite"
	}
	if cfg.Path == "" {
		cfg.Path = "stockflow.db"
	}
	return cfg
}

// BuildDSN assembles the connection string for the configured driver.
// For Cloud SQL, InstanceName takes precedence over Host/Port.
func BuildDSN(cfg Config) string {
	if cfg.Driver == "sqlite" {
		return cfg.Path
	}
	if cfg.InstanceName != "" {
		// Cloud SQL connects over a Unix socket
		return fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.InstanceName, cfg.User, cfg.Password, cfg.Name)
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port)
}

// ConnectWithRetry keeps opening the database until it succeeds or the
// timeout elapses. The database may still be starting when the server boots.
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("database connect failed after %s: %w", timeout, err)
		}
		slog.Warn("database connect failed, retrying", "error", err)
		time.Sleep(3 * time.Second)
	}
}

// Open connects using environment configuration and runs migrations
// when RUN_MIGRATIONS=true.
func Open() (*gorm.DB, error) {
	cfg := LoadConfigFromEnv()

	// TranslateErrorで重複キー違反をgorm.ErrDuplicatedKeyへ変換する
	gormCfg := &gorm.Config{TranslateError: true}
	opener := func(dsn string) (*gorm.DB, error) {
		if cfg.Driver == "postgres" {
			return gorm.Open(postgres.Open(dsn), gormCfg)
		}
		return gorm.Open(sqlite.Open(dsn), gormCfg)
	}

	db, err := ConnectWithRetry(BuildDSN(cfg), 60*time.Second, opener)
	if err != nil {
		return nil, err
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		// マイグレーション（User, Session, キャッシュ, 銘柄リスト）
		if err := db.AutoMigrate(
			&authentity.User{},
			&authadapters.SessionModel{},
			&cacheadapters.EntryModel{},
			&symbolentity.Symbol{},
		); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}

	return db, nil
}
