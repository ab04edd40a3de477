package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"healthsure/internal/infrastructure/database"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

var (
	containerOnce sync.Once
	container     *postgres.PostgresContainer
	sharedDB      *gorm.DB
	sharedDSN     string
	migrationsDir string
	containerErr  error
)

func TestMain(m *testing.M) {
	code := m.Run()
	if container != nil {
		if err := testcontainers.TerminateContainer(container); err != nil {
			fmt.Fprintf(os.Stderr, "failed to terminate postgres container: %v\n", err)
		}
	}
	os.Exit(code)
}

// newTestDB returns a migrated database with empty tables. The container is
// started once per package run; tests are skipped with -short or when Docker
// is not available.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	containerOnce.Do(func() {
		sharedDB, containerErr = startPostgres(context.Background())
	})
	if containerErr != nil {
		t.Skipf("postgres container unavailable: %v", containerErr)
	}

	err := sharedDB.Exec("TRUNCATE audit_logs, policies, patients RESTART IDENTITY CASCADE").Error
	require.NoError(t, err)
	return sharedDB
}

func startPostgres(ctx context.Context) (db *gorm.DB, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("docker provider: %v", r)
		}
	}()

	container, err = postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("healthsure_test"),
		postgres.WithUsername("healthsure"),
		postgres.WithPassword("healthsure"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, fmt.Errorf("connection string: %w", err)
	}

	db, err = database.Open(dsn, "test")
	if err != nil {
		return nil, err
	}

	migrationsDir, err = filepath.Abs(filepath.Join("..", "..", "migrations"))
	if err != nil {
		return nil, err
	}
	if err := database.MigrateUp(dsn, migrationsDir); err != nil {
		return nil, err
	}
	sharedDSN = dsn
	return db, nil
}
