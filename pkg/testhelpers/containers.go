// Package testhelpers provides shared infrastructure for integration
// tests: a PostgreSQL container with the wedding schema applied, and
// seed data helpers.
package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/vowsuite-inc/vowsuite-reports/pkg/database"
)

// PostgresImage is the container image used for integration tests.
const PostgresImage = "postgres:16-alpine"

// TestDB holds a shared test database container and connection pool.
// The wedding schema migrations are applied before it is handed out.
type TestDB struct {
	Container testcontainers.Container
	Pool      *pgxpool.Pool
	ConnStr   string
}

var (
	sharedTestDB     *TestDB
	sharedTestDBOnce sync.Once
	sharedTestDBErr  error
)

// GetTestDB returns a shared PostgreSQL container for integration tests.
// The container is created once and reused across all tests in the run.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedTestDBOnce.Do(func() {
		sharedTestDB, sharedTestDBErr = setupTestDB()
	})

	if sharedTestDBErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedTestDBErr)
	}

	return sharedTestDB
}

func setupTestDB() (*TestDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "vowsuite_test",
			"POSTGRES_USER":     "vowsuite",
			"POSTGRES_PASSWORD": "test_password",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	connStr := fmt.Sprintf("postgres://vowsuite:test_password@%s:%s/vowsuite_test?sslmode=disable",
		host, port.Port())

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection with retry
	for i := 0; i < 10; i++ {
		if err := pool.Ping(ctx); err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}

	if err := applyMigrations(connStr); err != nil {
		return nil, err
	}

	return &TestDB{
		Container: container,
		Pool:      pool,
		ConnStr:   connStr,
	}, nil
}

func applyMigrations(connStr string) error {
	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("failed to open sql connection: %w", err)
	}
	defer sqlDB.Close()

	// Resolve the migrations directory relative to this source file so
	// tests in any package find it.
	_, thisFile, _, _ := runtime.Caller(0)
	migrationsPath := filepath.Join(filepath.Dir(thisFile), "..", "..", "migrations")

	if err := database.RunMigrations(sqlDB, migrationsPath, zap.NewNop()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SeedSampleWedding inserts a small wedding data set and returns its
// wedding ID: two families (one accepted with two members, one pending),
// a seating table, an admin and a gift.
func SeedSampleWedding(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()

	ctx := context.Background()
	weddingID := uuid.New()

	var familyA, familyB, tableA uuid.UUID

	err := pool.QueryRow(ctx,
		`INSERT INTO families (wedding_id, name, rsvp_status, invited_count, confirmed_count)
		 VALUES ($1, 'Alvarez', 'accepted', 2, 2) RETURNING id`, weddingID).Scan(&familyA)
	if err != nil {
		t.Fatalf("seed family A: %v", err)
	}

	err = pool.QueryRow(ctx,
		`INSERT INTO families (wedding_id, name, rsvp_status, invited_count)
		 VALUES ($1, 'Bennett', 'pending', 3) RETURNING id`, weddingID).Scan(&familyB)
	if err != nil {
		t.Fatalf("seed family B: %v", err)
	}

	err = pool.QueryRow(ctx,
		`INSERT INTO seating_tables (wedding_id, name, capacity)
		 VALUES ($1, 'Garden', 8) RETURNING id`, weddingID).Scan(&tableA)
	if err != nil {
		t.Fatalf("seed seating table: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO family_members (wedding_id, family_id, name, age_group, is_attending, seating_table_id)
		 VALUES ($1, $2, 'Maria Alvarez', 'adult', true, $3),
		        ($1, $2, 'Leo Alvarez', 'child', true, $3)`,
		weddingID, familyA, tableA)
	if err != nil {
		t.Fatalf("seed family members: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO wedding_admins (wedding_id, name, email, role)
		 VALUES ($1, 'Planner', 'planner@example.com', 'owner')`, weddingID)
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO gifts (wedding_id, family_id, amount, method)
		 VALUES ($1, $2, 150.00, 'transfer')`, weddingID, familyA)
	if err != nil {
		t.Fatalf("seed gift: %v", err)
	}

	return weddingID
}
