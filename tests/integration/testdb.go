//go:build integration

// Package integration runs the persistence layer against a real PostgreSQL
// started with testcontainers.
package integration

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/openship/backend/internal/infrastructure/logger"
	"github.com/openship/backend/internal/infrastructure/migration"
	"github.com/openship/backend/migrations"
)

// appTables are truncated between tests, children first.
var appTables = []string{"cart_items", "orders", "channels", "shops", "platforms"}

// postgresBox is the one container shared by every test in the package
var postgresBox struct {
	mu        sync.Mutex
	container *tcpostgres.PostgresContainer
	dsn       string
}

// TestDB is a handle on the migrated shared database
type TestDB struct {
	DB *gorm.DB
}

// NewSharedTestDB connects to the shared container, starting and migrating
// it on first use, and returns with every application table empty.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()
	dsn := sharedDSN(t)

	gdb, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger: logger.NewGormLogger(zaptest.NewLogger(t), gormlogger.Warn),
	})
	require.NoError(t, err, "connect to test database")
	pool, err := gdb.DB()
	require.NoError(t, err)
	pool.SetMaxOpenConns(10)
	t.Cleanup(func() { _ = pool.Close() })

	tdb := &TestDB{DB: gdb}
	tdb.Truncate(t)
	return tdb
}

// Truncate empties every application table in one statement
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()
	err := tdb.DB.Exec("TRUNCATE TABLE " + strings.Join(appTables, ", ") + " CASCADE").Error
	require.NoError(t, err, "truncate application tables")
}

func sharedDSN(t *testing.T) string {
	t.Helper()
	postgresBox.mu.Lock()
	defer postgresBox.mu.Unlock()
	if postgresBox.container != nil {
		return postgresBox.dsn
	}

	ctx := context.Background()
	c, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("openship_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err, "start postgres container")
	dsn, err := c.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrate(t, dsn)
	postgresBox.container, postgresBox.dsn = c, dsn
	return dsn
}

func migrate(t *testing.T, dsn string) {
	t.Helper()
	gdb, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	pool, err := gdb.DB()
	require.NoError(t, err)
	defer pool.Close()

	m, err := migration.NewFromFS(pool, migrations.FS, zaptest.NewLogger(t))
	require.NoError(t, err, "build migrator")
	require.NoError(t, m.Up(), "apply migrations")
}

// CleanupSharedContainer stops the container. TestMain calls it once.
func CleanupSharedContainer() {
	postgresBox.mu.Lock()
	defer postgresBox.mu.Unlock()
	if postgresBox.container != nil {
		_ = postgresBox.container.Terminate(context.Background())
		postgresBox.container = nil
	}
}
