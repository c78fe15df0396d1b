package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/linkcheck/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/linkcheck/internal/core/domain"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driven"
)

// dbFile is the database file name inside the data directory.
const dbFile = "history.db"

// Store is an SQLite database holding run history.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.linkcheck/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".linkcheck", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)

	// Pragmas in the DSN apply to every pooled connection
	db, err := sql.Open("sqlite", dbPath+
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RunStore returns a RunStore interface backed by this store.
func (s *Store) RunStore() driven.RunStore {
	return &runStore{store: s}
}

// migrate applies pending up migrations in version order, each in its own
// transaction together with its schema_migrations row.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Run Store ====================

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// Save stores or replaces a run and its invalid records.
func (s *runStore) Save(ctx context.Context, result *domain.RunResult) error {
	if result == nil || result.RunID == "" {
		return domain.ErrInvalidInput
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, source, format, status, total_processed, valid, invalid, skipped,
			truncated, invalid_dropped, duration_ms, started_at, finished_at, code, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			format = excluded.format,
			status = excluded.status,
			total_processed = excluded.total_processed,
			valid = excluded.valid,
			invalid = excluded.invalid,
			skipped = excluded.skipped,
			truncated = excluded.truncated,
			invalid_dropped = excluded.invalid_dropped,
			duration_ms = excluded.duration_ms,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			code = excluded.code,
			message = excluded.message
	`, result.RunID, result.Source, string(result.Format), string(result.Status),
		result.TotalProcessed, result.Valid, result.Invalid, result.Skipped,
		result.Truncated, result.InvalidDropped, result.Duration.Milliseconds(),
		result.StartedAt.UTC(), nullTime(result.FinishedAt), string(result.Code), result.Message)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM invalid_records WHERE run_id = ?", result.RunID); err != nil {
		return fmt.Errorf("clearing invalid records: %w", err)
	}

	if len(result.InvalidRecords) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO invalid_records (run_id, seq, raw, reason, location) VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing invalid record insert: %w", err)
		}
		defer stmt.Close()

		for i, rec := range result.InvalidRecords {
			locJSON, err := json.Marshal(rec.Candidate.Location)
			if err != nil {
				return fmt.Errorf("marshalling location: %w", err)
			}
			if _, err := stmt.ExecContext(ctx, result.RunID, i, rec.Candidate.Raw, string(rec.Reason), string(locJSON)); err != nil {
				return fmt.Errorf("saving invalid record %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

// Get retrieves a run by ID with its invalid records.
func (s *runStore) Get(ctx context.Context, runID string) (*domain.RunResult, error) {
	row := s.store.db.QueryRowContext(ctx, selectRuns+" WHERE id = ?", runID)

	result, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	records, err := s.invalidRecords(ctx, runID)
	if err != nil {
		return nil, err
	}
	result.InvalidRecords = records
	return result, nil
}

func (s *runStore) invalidRecords(ctx context.Context, runID string) ([]domain.ClassifiedRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT raw, reason, location FROM invalid_records WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying invalid records: %w", err)
	}
	defer rows.Close()

	var records []domain.ClassifiedRecord
	for rows.Next() {
		var raw, reason, locJSON string
		if err := rows.Scan(&raw, &reason, &locJSON); err != nil {
			return nil, fmt.Errorf("scanning invalid record: %w", err)
		}
		var loc domain.Location
		if err := json.Unmarshal([]byte(locJSON), &loc); err != nil {
			return nil, fmt.Errorf("unmarshalling location: %w", err)
		}
		records = append(records, domain.Invalid(domain.Candidate{Raw: raw, Location: loc}, domain.RejectReason(reason)))
	}
	return records, rows.Err()
}

// List returns runs newest first, without invalid records.
func (s *runStore) List(ctx context.Context, limit int) ([]domain.RunResult, error) {
	query := selectRuns + " ORDER BY started_at DESC, id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var results []domain.RunResult
	for rows.Next() {
		result, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		results = append(results, *result)
	}
	return results, rows.Err()
}

// Delete removes a run and its invalid records.
func (s *runStore) Delete(ctx context.Context, runID string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", runID)
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Prune keeps the newest keep runs and deletes the rest.
func (s *runStore) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.store.db.ExecContext(ctx, `
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_at DESC, id DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned runs: %w", err)
	}
	return int(n), nil
}

const selectRuns = `
	SELECT id, source, format, status, total_processed, valid, invalid, skipped,
		truncated, invalid_dropped, duration_ms, started_at, finished_at, code, message
	FROM runs`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.RunResult, error) {
	var (
		r                     domain.RunResult
		format, status, code  string
		durationMS            int64
		startedAt, finishedAt sql.NullTime
	)
	if err := row.Scan(&r.RunID, &r.Source, &format, &status, &r.TotalProcessed, &r.Valid,
		&r.Invalid, &r.Skipped, &r.Truncated, &r.InvalidDropped, &durationMS,
		&startedAt, &finishedAt, &code, &r.Message); err != nil {
		return nil, err
	}

	r.Format = domain.Format(format)
	r.Status = domain.RunStatus(status)
	r.Code = domain.Code(code)
	r.Duration = time.Duration(durationMS) * time.Millisecond
	if startedAt.Valid {
		r.StartedAt = startedAt.Time
	}
	if finishedAt.Valid {
		r.FinishedAt = finishedAt.Time
	}
	return &r, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
