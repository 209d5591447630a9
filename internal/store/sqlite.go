package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/ykvlv/pr-reminder-bot/internal/domain"
)

// MemoryDSN keeps the whole database inside the process; it is gone on restart.
const MemoryDSN = ":memory:"

// SQLiteRepo implements Repo on top of SQLite.
type SQLiteRepo struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens the database at dsn, applies PRAGMAs, runs migrations and
// returns a repository. Use MemoryDSN for a process-local store.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// An in-memory database lives exactly as long as its connection,
	// so the pool must hold one connection and never recycle it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db, now: time.Now}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// AddTracked adds handle to the tracked set. It reports false if the handle was already tracked.
func (r *SQLiteRepo) AddTracked(ctx context.Context, handle string) (bool, error) {
	return r.insertHandle(ctx, "tracked_users", handle)
}

// AddExempt adds handle to the exempt set. It reports false if the handle was already exempt.
func (r *SQLiteRepo) AddExempt(ctx context.Context, handle string) (bool, error) {
	return r.insertHandle(ctx, "exempt_users", handle)
}

func (r *SQLiteRepo) insertHandle(ctx context.Context, table, handle string) (bool, error) {
	if strings.TrimSpace(handle) == "" {
		return false, domain.ErrEmptyHandle
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO `+table+` (handle, added_at) VALUES (?, ?)`,
		handle, r.now().UTC().Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("insert into %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// RemoveExempt deletes handle from the exempt set. It reports whether the handle was present.
func (r *SQLiteRepo) RemoveExempt(ctx context.Context, handle string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM exempt_users WHERE handle = ?`, handle)
	if err != nil {
		return false, fmt.Errorf("delete exempt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsExempt reports whether handle is in the exempt set.
func (r *SQLiteRepo) IsExempt(ctx context.Context, handle string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM exempt_users WHERE handle = ?`, handle).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query exempt: %w", err)
	}
	return true, nil
}

// RecordSubmission tracks handle (if not yet tracked) and appends it to today's
// submissions in one transaction.
func (r *SQLiteRepo) RecordSubmission(ctx context.Context, handle, link string, at time.Time) error {
	if strings.TrimSpace(handle) == "" {
		return domain.ErrEmptyHandle
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ts := at.UTC().Unix()
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO tracked_users (handle, added_at) VALUES (?, ?)`,
		handle, ts,
	); err != nil {
		return fmt.Errorf("track submitter: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO daily_submissions (handle, link, submitted_at) VALUES (?, ?, ?)`,
		handle, link, ts,
	); err != nil {
		return fmt.Errorf("append submission: %w", err)
	}
	return tx.Commit()
}

// Snapshot returns tracked, exempt and submitted handles in insertion order.
func (r *SQLiteRepo) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	var s domain.Snapshot

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return s, err
	}
	defer func() { _ = tx.Rollback() }()

	if s.Tracked, err = listHandles(ctx, tx, `SELECT handle FROM tracked_users ORDER BY id`); err != nil {
		return s, fmt.Errorf("list tracked: %w", err)
	}
	if s.Exempt, err = listHandles(ctx, tx, `SELECT handle FROM exempt_users ORDER BY id`); err != nil {
		return s, fmt.Errorf("list exempt: %w", err)
	}
	if s.Submitted, err = listHandles(ctx, tx, `SELECT handle FROM daily_submissions ORDER BY id`); err != nil {
		return s, fmt.Errorf("list submissions: %w", err)
	}
	return s, tx.Commit()
}

func listHandles(ctx context.Context, tx *sql.Tx, query string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		res = append(res, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// MissingForToday returns tracked users that are not exempt and have not submitted today.
func (r *SQLiteRepo) MissingForToday(ctx context.Context) ([]string, error) {
	s, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Missing(s), nil
}

// ResetDaily clears today's submissions and returns how many were removed.
func (r *SQLiteRepo) ResetDaily(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM daily_submissions`)
	if err != nil {
		return 0, fmt.Errorf("reset submissions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
