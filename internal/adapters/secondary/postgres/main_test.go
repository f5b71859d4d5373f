package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// testPool is shared by every test in the package; tests isolate their
// rows by user id.
var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	ctx := context.Background()

	if err := dockerAvailable(ctx); err != nil {
		log.Printf("journal integration tests will skip: %v", err)
		return m.Run()
	}

	container, connStr, err := startPostgres(ctx)
	if err != nil {
		log.Printf("journal integration tests will skip: %v", err)
		return m.Run()
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			log.Printf("could not terminate postgres container: %v", err)
		}
	}()

	if err := migrateUp(connStr); err != nil {
		log.Printf("could not run migrations: %v", err)
		return 1
	}

	testPool, err = pgxpool.New(ctx, connStr)
	if err != nil {
		log.Printf("could not create connection pool: %v", err)
		return 1
	}
	defer testPool.Close()

	return m.Run()
}

// requireDatabase skips the test when no container could be started.
func requireDatabase(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skip("postgres container not available")
	}
}

// dockerAvailable reports whether a Docker daemon can be reached.
func dockerAvailable(ctx context.Context) error {
	return recoverPanic(func() error {
		provider, err := testcontainers.NewDockerProvider()
		if err != nil {
			return err
		}
		defer func() { _ = provider.Close() }()
		return provider.Health(ctx)
	})
}

// recoverPanic runs fn and turns a panic into an error. testcontainers
// panics when it cannot find a Docker host at all.
func recoverPanic(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("testcontainers: %v", r)
		}
	}()
	return fn()
}

func TestRecoverPanic(t *testing.T) {
	err := recoverPanic(func() error { panic("rootless Docker not found") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rootless Docker not found")

	assert.NoError(t, recoverPanic(func() error { return nil }))
}

func startPostgres(ctx context.Context) (container *postgres.PostgresContainer, connStr string, err error) {
	err = recoverPanic(func() error {
		container, connStr, err = runPostgres(ctx)
		return err
	})
	return container, connStr, err
}

func runPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("board-test"),
		postgres.WithUsername("board"),
		postgres.WithPassword("board"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, "", fmt.Errorf("connection string: %w", err)
	}
	return container, connStr, nil
}

// migrateUp applies the repository's migrations directory
// (postgres -> secondary -> adapters -> internal -> module root).
func migrateUp(connStr string) error {
	dir, err := filepath.Abs("../../../../migrations")
	if err != nil {
		return err
	}

	mig, err := migrate.New("file://"+dir, connStr)
	if err != nil {
		return err
	}
	defer mig.Close()

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
