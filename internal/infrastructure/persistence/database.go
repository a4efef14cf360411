package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openship/backend/internal/infrastructure/config"
)

const connectTimeout = 10 * time.Second

// Database is the postgres handle shared by the shop, channel, order and
// cart repositories.
type Database struct {
	DB *gorm.DB
}

// Option customises the gorm handle once the pool is reachable
type Option func(db *gorm.DB) error

// WithPlugin installs a callback plugin such as tracing or pool metrics
func WithPlugin(register func(db *gorm.DB) error) Option {
	return Option(register)
}

// WithLogger routes gorm's statement log through l
func WithLogger(l logger.Interface) Option {
	return func(db *gorm.DB) error {
		db.Logger = l
		return nil
	}
}

// NewDatabase opens the pool sized from cfg, verifies it with a ping and then
// applies opts. Statement logging stays silent unless WithLogger is given.
func NewDatabase(cfg *config.DatabaseConfig, opts ...Option) (*Database, error) {
	gdb, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	d := &Database{DB: gdb}
	pool, err := d.SQL()
	if err != nil {
		return nil, err
	}
	configurePool(pool, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := d.apply(opts...); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return d, nil
}

func configurePool(pool *sql.DB, cfg *config.DatabaseConfig) {
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	pool.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
}

func (d *Database) apply(opts ...Option) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(d.DB); err != nil {
			return fmt.Errorf("configure database: %w", err)
		}
	}
	return nil
}

// SQL exposes the pool for health checks and pool metrics
func (d *Database) SQL() (*sql.DB, error) {
	pool, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("database pool: %w", err)
	}
	return pool, nil
}

func (d *Database) Ping() error {
	pool, err := d.SQL()
	if err != nil {
		return err
	}
	return pool.Ping()
}

func (d *Database) Close() error {
	pool, err := d.SQL()
	if err != nil {
		return err
	}
	return pool.Close()
}
