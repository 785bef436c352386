package migrations

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func mig(version int64, name, sum string) Migration {
	return Migration{Version: version, Name: name, Checksum: sum}
}

func rec(version int64, name, sum string) Record {
	return Record{Version: version, Name: name, Checksum: sum, AppliedAt: time.Now()}
}

func TestPlanUpgrade(t *testing.T) {
	known := []Migration{mig(1, "initial", "a"), mig(2, "due_date", "b"), mig(3, "indexes", "c")}

	t.Run("nothing applied", func(t *testing.T) {
		pending, err := planUpgrade(known, map[int64]bool{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pending) != 3 {
			t.Fatalf("expected 3 pending, got %d", len(pending))
		}
	})

	t.Run("prefix applied", func(t *testing.T) {
		pending, err := planUpgrade(known, map[int64]bool{1: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pending) != 2 || pending[0].Version != 2 {
			t.Fatalf("expected pending [2 3], got %+v", pending)
		}
	})

	t.Run("all applied is a no-op", func(t *testing.T) {
		pending, err := planUpgrade(known, map[int64]bool{1: true, 2: true, 3: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pending) != 0 {
			t.Fatalf("expected no pending migrations, got %+v", pending)
		}
	})

	t.Run("gap is detected, never skipped", func(t *testing.T) {
		// version 3 applied while 2 is not
		_, err := planUpgrade(known, map[int64]bool{1: true, 3: true})
		if err == nil {
			t.Fatal("expected gap error")
		}
		var me *MigrationError
		if !errors.As(err, &me) {
			t.Fatalf("expected MigrationError, got %T", err)
		}
		if me.Version != 2 {
			t.Fatalf("expected gap reported at version 2, got %d", me.Version)
		}
	})
}

func TestCheckLedger(t *testing.T) {
	known := []Migration{mig(1, "initial", "a"), mig(2, "due_date", "b"), mig(3, "indexes", "c")}

	t.Run("empty ledger is consistent", func(t *testing.T) {
		if err := checkLedger(known, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("contiguous prefix is consistent", func(t *testing.T) {
		records := []Record{rec(1, "initial", "a"), rec(2, "due_date", "b")}
		if err := checkLedger(known, records); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("gap identifies the missing version", func(t *testing.T) {
		// version 2 missing, version 3 present
		records := []Record{rec(1, "initial", "a"), rec(3, "indexes", "c")}
		err := checkLedger(known, records)
		var ie *IntegrityError
		if !errors.As(err, &ie) {
			t.Fatalf("expected IntegrityError, got %v", err)
		}
		if ie.Version != 2 {
			t.Fatalf("expected discrepancy at version 2, got %d", ie.Version)
		}
	})

	t.Run("unknown future version", func(t *testing.T) {
		records := []Record{rec(1, "initial", "a"), rec(2, "due_date", "b"), rec(3, "indexes", "c"), rec(4, "mystery", "d")}
		err := checkLedger(known, records)
		var ie *IntegrityError
		if !errors.As(err, &ie) {
			t.Fatalf("expected IntegrityError, got %v", err)
		}
		if ie.Version != 4 {
			t.Fatalf("expected discrepancy at version 4, got %d", ie.Version)
		}
	})

	t.Run("checksum drift", func(t *testing.T) {
		records := []Record{rec(1, "initial", "tampered")}
		err := checkLedger(known, records)
		var ie *IntegrityError
		if !errors.As(err, &ie) {
			t.Fatalf("expected IntegrityError, got %v", err)
		}
		if ie.Version != 1 {
			t.Fatalf("expected discrepancy at version 1, got %d", ie.Version)
		}
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	write("0002_add_assignment_due_date.sql", "ALTER TABLE assignments ADD COLUMN due_date TIMESTAMPTZ;")
	write("0001_initial.sql", "CREATE TABLE users (id BIGSERIAL PRIMARY KEY);")
	write("README.md", "not a migration")
	write("notes.sql", "ignored, no version prefix")

	m := NewMigrator(nil, dir)
	migs, err := m.load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if len(migs) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migs))
	}
	if migs[0].Version != 1 || migs[0].Name != "initial" {
		t.Errorf("unexpected first migration: %+v", migs[0])
	}
	if migs[1].Version != 2 || migs[1].Name != "add_assignment_due_date" {
		t.Errorf("unexpected second migration: %+v", migs[1])
	}
	if migs[0].Checksum == "" || migs[0].Checksum == migs[1].Checksum {
		t.Error("checksums should be non-empty and distinct per content")
	}
}

func TestLoadRejectsDuplicateVersions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0001_initial.sql", "0001_other.sql"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	m := NewMigrator(nil, dir)
	if _, err := m.load(); err == nil {
		t.Fatal("expected duplicate version error")
	}
}
