// Package database owns the gorm connection, pooling and migrations.
// Production runs on PostgreSQL; sqlite is supported for local runs
// and tests.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/avesovich/reporting-with-rss-news/internal/config"
	"github.com/avesovich/reporting-with-rss-news/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// PoolConfig holds connection pool limits.
type PoolConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int // seconds
	ConnMaxIdleTime int // seconds
}

// BuildDSN builds the PostgreSQL DSN.
func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

func defaultPoolConfig(production bool) *PoolConfig {
	if production {
		return &PoolConfig{
			MaxIdleConns:    20,
			MaxOpenConns:    200,
			ConnMaxLifetime: 3600,
			ConnMaxIdleTime: 300,
		}
	}
	return &PoolConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: 3600,
		ConnMaxIdleTime: 600,
	}
}

func poolFromConfig(cfg config.DatabaseConfig, production bool) *PoolConfig {
	pool := defaultPoolConfig(production)
	if cfg.MaxIdleConns > 0 {
		pool.MaxIdleConns = cfg.MaxIdleConns
	}
	if cfg.MaxOpenConns > 0 {
		pool.MaxOpenConns = cfg.MaxOpenConns
	}
	if cfg.ConnMaxLifetime > 0 {
		pool.ConnMaxLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		pool.ConnMaxIdleTime = cfg.ConnMaxIdleTime
	}
	return pool
}

func open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Driver {
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.DBName), &gorm.Config{})
	default:
		return gorm.Open(postgres.Open(BuildDSN(cfg)), &gorm.Config{})
	}
}

// Connect opens the database and applies pool limits. production only
// affects the pool defaults when the config leaves them unset.
func Connect(cfg config.DatabaseConfig, production bool) (*gorm.DB, error) {
	db, err := open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	pool := poolFromConfig(cfg, production)
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTime) * time.Second)

	return db, nil
}

// ConnectWithRetry retries Connect with exponential backoff. Useful
// when the database container comes up after the service.
func ConnectWithRetry(cfg config.DatabaseConfig, production bool, maxRetries int, retryInterval time.Duration) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < maxRetries; i++ {
		db, err = Connect(cfg, production)
		if err == nil {
			return db, nil
		}
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
			retryInterval *= 2
		}
	}

	return nil, fmt.Errorf("failed to connect database after %d retries: %w", maxRetries, err)
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Article{},
		&model.Comment{},
		&model.NewsItem{},
	); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// createIndexes adds the composite indexes AutoMigrate does not cover.
func createIndexes(db *gorm.DB) error {
	statements := []string{
		// Status listings are always (status, order-by-time) scans.
		"CREATE INDEX IF NOT EXISTS idx_articles_status_created ON articles(approval_status, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_articles_status_updated ON articles(approval_status, updated_at)",
		// Editor-scoped listings filter on owner within a status.
		"CREATE INDEX IF NOT EXISTS idx_articles_user_status ON articles(user_id, approval_status)",
		"CREATE INDEX IF NOT EXISTS idx_comments_article_created ON comments(article_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_news_source_pubdate ON news_rss(source, pub_date)",
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// CheckHealth reports whether the database answers a ping.
func CheckHealth(db *gorm.DB) bool {
	if db == nil {
		return false
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx) == nil
}
