package migrations

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ipelms/ipelms/internal/pkg/dberrors"
	"github.com/ipelms/ipelms/internal/pkg/logger"
)

// migrationFilePattern matches versioned migration files, e.g. 0001_initial.sql.
var migrationFilePattern = regexp.MustCompile(`^(\d{4})_([a-zA-Z0-9_-]+)\.sql$`)

// Migration is one versioned, named bundle of schema statements on disk.
type Migration struct {
	Version  int64
	Name     string
	Path     string
	Checksum string // sha256 hex of the file content
}

// Record is one row of the schema_migrations ledger.
type Record struct {
	Version   int64
	Name      string
	Checksum  string
	AppliedAt time.Time
}

// Status pairs a known migration with its ledger state.
type Status struct {
	Version   int64
	Name      string
	Applied   bool
	AppliedAt *time.Time
}

// Migrator manages database schema migrations. Its lifecycle is scoped to a
// single CLI invocation or server start: construct, operate, discard.
type Migrator struct {
	db  *pgxpool.Pool
	dir string
}

// NewMigrator creates a new migrator reading migration files from dir.
func NewMigrator(db *pgxpool.Pool, dir string) *Migrator {
	return &Migrator{
		db:  db,
		dir: dir,
	}
}

// ensureLedger creates the migration ledger table if it doesn't exist.
func (m *Migrator) ensureLedger(ctx context.Context) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		checksum TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`

	_, err := m.db.Exec(ctx, createTableSQL)
	if err != nil {
		return fmt.Errorf("failed to create migration ledger table: %w", err)
	}
	return nil
}

// load reads, parses and checksums every migration file in the directory,
// sorted by ascending version.
func (m *Migrator) load() ([]Migration, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	var migs []Migration
	seen := make(map[int64]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := migrationFilePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		version, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid version in %s: %w", entry.Name(), err)
		}
		if other, ok := seen[version]; ok {
			return nil, fmt.Errorf("duplicate migration version %04d: %s and %s", version, other, entry.Name())
		}
		seen[version] = entry.Name()

		path := filepath.Join(m.dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		migs = append(migs, Migration{
			Version:  version,
			Name:     match[2],
			Path:     path,
			Checksum: checksum(content),
		})
	}

	sort.Slice(migs, func(i, j int) bool { return migs[i].Version < migs[j].Version })
	return migs, nil
}

func checksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// records returns ledger rows ordered by version. A database without the
// ledger table yields no records; read-only operations must not create it.
func (m *Migrator) records(ctx context.Context) ([]Record, error) {
	rows, err := m.db.Query(ctx, `SELECT version, name, checksum, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		if dberrors.IsUndefinedTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read migration ledger: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Version, &r.Name, &r.Checksum, &r.AppliedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		// pgx can surface the query error here rather than at Query time.
		if dberrors.IsUndefinedTable(err) {
			return nil, nil
		}
		return nil, err
	}
	return records, nil
}

// Status reports every known migration with whether and when it was applied.
// It is read-only: a fresh database is reported as all-pending without
// creating the ledger table.
func (m *Migrator) Status(ctx context.Context) ([]Status, error) {
	migs, err := m.load()
	if err != nil {
		return nil, err
	}
	records, err := m.records(ctx)
	if err != nil {
		return nil, err
	}

	applied := make(map[int64]Record, len(records))
	for _, r := range records {
		applied[r.Version] = r
	}

	statuses := make([]Status, 0, len(migs))
	for _, mig := range migs {
		s := Status{Version: mig.Version, Name: mig.Name}
		if r, ok := applied[mig.Version]; ok {
			s.Applied = true
			t := r.AppliedAt
			s.AppliedAt = &t
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

// History returns applied migrations in application order. Like Status it is
// read-only and reports an empty history when the ledger table is absent.
func (m *Migrator) History(ctx context.Context) ([]Record, error) {
	rows, err := m.db.Query(ctx, `SELECT version, name, checksum, applied_at FROM schema_migrations ORDER BY applied_at, version`)
	if err != nil {
		if dberrors.IsUndefinedTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read migration history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Version, &r.Name, &r.Checksum, &r.AppliedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		if dberrors.IsUndefinedTable(err) {
			return nil, nil
		}
		return nil, err
	}
	return records, nil
}

// Upgrade applies all pending migrations in ascending version order, each in
// its own transaction. A failed migration rolls back and halts; earlier
// migrations stay applied. Returns the versions newly applied. Running it
// again with no new files is a no-op.
func (m *Migrator) Upgrade(ctx context.Context) ([]int64, error) {
	if err := m.ensureLedger(ctx); err != nil {
		return nil, err
	}
	migs, err := m.load()
	if err != nil {
		return nil, err
	}
	records, err := m.records(ctx)
	if err != nil {
		return nil, err
	}

	applied := make(map[int64]bool, len(records))
	for _, r := range records {
		applied[r.Version] = true
	}

	pending, err := planUpgrade(migs, applied)
	if err != nil {
		return nil, err
	}

	var appliedNow []int64
	for _, mig := range pending {
		if err := m.apply(ctx, mig); err != nil {
			return appliedNow, err
		}
		appliedNow = append(appliedNow, mig.Version)
		logger.Info().Int64("version", mig.Version).Str("name", mig.Name).Msg("Migration applied")
	}
	return appliedNow, nil
}

// apply executes one migration and records it, atomically.
func (m *Migrator) apply(ctx context.Context, mig Migration) error {
	content, err := os.ReadFile(mig.Path)
	if err != nil {
		return &MigrationError{Version: mig.Version, Name: mig.Name, Err: err}
	}

	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return &MigrationError{Version: mig.Version, Name: mig.Name, Err: err}
	}

	_, err = tx.Exec(ctx, `INSERT INTO schema_migrations (version, name, checksum) VALUES ($1, $2, $3)`,
		mig.Version, mig.Name, mig.Checksum)
	if err != nil {
		return &MigrationError{Version: mig.Version, Name: mig.Name, Err: fmt.Errorf("failed to record migration: %w", err)}
	}

	if err := tx.Commit(ctx); err != nil {
		return &MigrationError{Version: mig.Version, Name: mig.Name, Err: fmt.Errorf("failed to commit: %w", err)}
	}
	return nil
}

// planUpgrade returns the migrations still to apply, verifying that the
// applied set forms a contiguous prefix of the known sequence. Gaps are never
// silently skipped.
func planUpgrade(known []Migration, applied map[int64]bool) ([]Migration, error) {
	var pending []Migration
	for _, mig := range known {
		if applied[mig.Version] {
			if len(pending) > 0 {
				gap := pending[0]
				return nil, &MigrationError{
					Version: gap.Version,
					Name:    gap.Name,
					Err:     fmt.Errorf("gap in applied migrations: version %04d is applied but %04d is not", mig.Version, gap.Version),
				}
			}
			continue
		}
		pending = append(pending, mig)
	}
	return pending, nil
}

// Baseline marks every migration up to and including targetVersion as applied
// without executing its statements. Intended for adopting the tool on a
// database that already has the schema. Fails if the target is unknown or any
// affected version is already recorded.
func (m *Migrator) Baseline(ctx context.Context, targetVersion int64) ([]int64, error) {
	if err := m.ensureLedger(ctx); err != nil {
		return nil, err
	}
	migs, err := m.load()
	if err != nil {
		return nil, err
	}

	found := false
	for _, mig := range migs {
		if mig.Version == targetVersion {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("baseline target %04d not found among known migrations", targetVersion)
	}

	records, err := m.records(ctx)
	if err != nil {
		return nil, err
	}
	recorded := make(map[int64]bool, len(records))
	for _, r := range records {
		recorded[r.Version] = true
	}

	var toMark []Migration
	for _, mig := range migs {
		if mig.Version > targetVersion {
			break
		}
		if recorded[mig.Version] {
			return nil, fmt.Errorf("cannot baseline: version %04d is already recorded", mig.Version)
		}
		toMark = append(toMark, mig)
	}

	tx, err := m.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var marked []int64
	for _, mig := range toMark {
		_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, name, checksum) VALUES ($1, $2, $3)`,
			mig.Version, mig.Name, mig.Checksum)
		if err != nil {
			return nil, fmt.Errorf("failed to record baseline for %04d: %w", mig.Version, err)
		}
		marked = append(marked, mig.Version)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit baseline: %w", err)
	}

	logger.Info().Int64("target", targetVersion).Int("marked", len(marked)).Msg("Baseline recorded")
	return marked, nil
}

// Verify checks that the ledger forms a contiguous prefix of the known
// migration sequence and that recorded checksums still match the files on
// disk. The first discrepancy is reported as an IntegrityError.
func (m *Migrator) Verify(ctx context.Context) error {
	migs, err := m.load()
	if err != nil {
		return err
	}
	records, err := m.records(ctx)
	if err != nil {
		return err
	}
	return checkLedger(migs, records)
}

// checkLedger validates records (sorted by version) against the known
// sequence (sorted by version).
func checkLedger(known []Migration, records []Record) error {
	for i, r := range records {
		if i >= len(known) {
			return &IntegrityError{
				Version: r.Version,
				Reason:  "recorded version is not among known migrations",
			}
		}
		want := known[i]
		if r.Version != want.Version {
			if r.Version > want.Version {
				return &IntegrityError{
					Version: want.Version,
					Reason:  fmt.Sprintf("version %04d is recorded but %04d is missing", r.Version, want.Version),
				}
			}
			return &IntegrityError{
				Version: r.Version,
				Reason:  "recorded version is not among known migrations",
			}
		}
		if r.Checksum != want.Checksum {
			return &IntegrityError{
				Version: r.Version,
				Reason:  fmt.Sprintf("checksum mismatch: ledger has %s, file has %s", r.Checksum, want.Checksum),
			}
		}
	}
	return nil
}

// Pending reports how many known migrations are not yet recorded. Used by the
// server startup gate.
func (m *Migrator) Pending(ctx context.Context) (int, error) {
	statuses, err := m.Status(ctx)
	if err != nil {
		return 0, err
	}
	pending := 0
	for _, s := range statuses {
		if !s.Applied {
			pending++
		}
	}
	return pending, nil
}

// AsIntegrityError extracts an IntegrityError from an error chain.
func AsIntegrityError(err error) (*IntegrityError, bool) {
	var ie *IntegrityError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
