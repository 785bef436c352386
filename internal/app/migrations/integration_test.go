//go:build integration

package migrations

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// These tests need a real PostgreSQL instance. Run with:
//
//	TEST_DATABASE_DSN=postgres://... go test -tags integration ./internal/app/migrations/
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	// Start from a clean ledger and scratch tables.
	_, err = pool.Exec(context.Background(),
		`DROP TABLE IF EXISTS schema_migrations, m_widgets, m_gadgets CASCADE`)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	return pool
}

func writeMigrations(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestUpgradeIsIdempotent(t *testing.T) {
	pool := testPool(t)
	dir := writeMigrations(t, map[string]string{
		"0001_widgets.sql": "CREATE TABLE m_widgets (id BIGSERIAL PRIMARY KEY);",
		"0002_gadgets.sql": "CREATE TABLE m_gadgets (id BIGSERIAL PRIMARY KEY);",
	})

	m := NewMigrator(pool, dir)
	ctx := context.Background()

	applied, err := m.Upgrade(ctx)
	if err != nil {
		t.Fatalf("first upgrade: %v", err)
	}
	if len(applied) != 2 {
		t.Fatalf("expected 2 applied, got %v", applied)
	}

	applied, err = m.Upgrade(ctx)
	if err != nil {
		t.Fatalf("second upgrade: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("second upgrade should be a no-op, applied %v", applied)
	}

	if err := m.Verify(ctx); err != nil {
		t.Fatalf("verify after upgrade: %v", err)
	}
}

func TestUpgradeRollsBackFailedMigration(t *testing.T) {
	pool := testPool(t)
	dir := writeMigrations(t, map[string]string{
		"0001_widgets.sql": "CREATE TABLE m_widgets (id BIGSERIAL PRIMARY KEY);",
		"0002_broken.sql":  "CREATE TABLE m_gadgets (id BIGSERIAL PRIMARY KEY); SYNTAX ERROR HERE;",
	})

	m := NewMigrator(pool, dir)
	ctx := context.Background()

	applied, err := m.Upgrade(ctx)
	if err == nil {
		t.Fatal("expected upgrade to fail on 0002")
	}
	var me *MigrationError
	if !errors.As(err, &me) || me.Version != 2 {
		t.Fatalf("expected MigrationError for version 2, got %v", err)
	}
	if len(applied) != 1 || applied[0] != 1 {
		t.Fatalf("expected only version 1 applied, got %v", applied)
	}

	// The failed migration must leave no trace: no gadgets table, no ledger row.
	var exists bool
	err = pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM information_schema.tables WHERE table_name = 'm_gadgets')`).Scan(&exists)
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("failed migration left its table behind")
	}
	records, err := m.records(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Version != 1 {
		t.Errorf("ledger should contain only version 1, got %+v", records)
	}
}

func TestBaselineThenStatus(t *testing.T) {
	pool := testPool(t)
	dir := writeMigrations(t, map[string]string{
		"0001_widgets.sql": "CREATE TABLE m_widgets (id BIGSERIAL PRIMARY KEY);",
		"0002_gadgets.sql": "CREATE TABLE m_gadgets (id BIGSERIAL PRIMARY KEY);",
	})

	m := NewMigrator(pool, dir)
	ctx := context.Background()

	marked, err := m.Baseline(ctx, 1)
	if err != nil {
		t.Fatalf("baseline: %v", err)
	}
	if len(marked) != 1 || marked[0] != 1 {
		t.Fatalf("expected [1] marked, got %v", marked)
	}

	statuses, err := m.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !statuses[0].Applied || statuses[1].Applied {
		t.Errorf("expected version 1 applied and version 2 pending, got %+v", statuses)
	}

	// Baseline never executes SQL, so the table must not exist.
	var exists bool
	err = pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM information_schema.tables WHERE table_name = 'm_widgets')`).Scan(&exists)
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("baseline executed migration statements")
	}

	// Re-baselining an already recorded version fails.
	if _, err := m.Baseline(ctx, 1); err == nil {
		t.Error("expected baseline of recorded version to fail")
	}
}

func TestVerifyDetectsGap(t *testing.T) {
	pool := testPool(t)
	dir := writeMigrations(t, map[string]string{
		"0001_widgets.sql": "CREATE TABLE m_widgets (id BIGSERIAL PRIMARY KEY);",
		"0002_gadgets.sql": "CREATE TABLE m_gadgets (id BIGSERIAL PRIMARY KEY);",
		"0003_noop.sql":    "SELECT 1;",
	})

	m := NewMigrator(pool, dir)
	ctx := context.Background()

	if _, err := m.Upgrade(ctx); err != nil {
		t.Fatalf("upgrade: %v", err)
	}

	// Fabricate a gap: remove version 2 from the ledger.
	if _, err := pool.Exec(ctx, `DELETE FROM schema_migrations WHERE version = 2`); err != nil {
		t.Fatal(err)
	}

	err := m.Verify(ctx)
	ie, ok := AsIntegrityError(err)
	if !ok {
		t.Fatalf("expected IntegrityError, got %v", err)
	}
	if ie.Version != 2 {
		t.Errorf("expected discrepancy at version 2, got %d", ie.Version)
	}
}

func TestReadOperationsLeaveFreshDatabaseUntouched(t *testing.T) {
	pool := testPool(t)
	dir := writeMigrations(t, map[string]string{
		"0001_widgets.sql": "CREATE TABLE m_widgets (id BIGSERIAL PRIMARY KEY);",
		"0002_gadgets.sql": "CREATE TABLE m_gadgets (id BIGSERIAL PRIMARY KEY);",
	})

	m := NewMigrator(pool, dir)
	ctx := context.Background()

	statuses, err := m.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 known migrations, got %d", len(statuses))
	}
	for _, s := range statuses {
		if s.Applied {
			t.Errorf("version %d reported applied on a fresh database", s.Version)
		}
	}

	history, err := m.History(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d rows", len(history))
	}

	if err := m.Verify(ctx); err != nil {
		t.Fatalf("verify on fresh database: %v", err)
	}

	// None of the read operations may create the ledger table.
	var exists bool
	err = pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_tables WHERE schemaname = 'public' AND tablename = 'schema_migrations')`).Scan(&exists)
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("a read operation created the migration ledger")
	}
}
