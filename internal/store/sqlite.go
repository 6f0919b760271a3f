package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite" // register sqlite driver
)

// SQLite is a KV backed by a single SQLite file. It also keeps one summary
// row per day for history charts.
type SQLite struct {
	db *sql.DB
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Get(key string) (string, bool, error) {
	var v string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return v, true, nil
}

func (s *SQLite) Set(key, value string) error {
	return s.Write(Batch{Set: map[string]string{key: value}})
}

func (s *SQLite) Remove(key string) error {
	return s.Write(Batch{Remove: []string{key}})
}

// Write applies the batch in one transaction.
func (s *SQLite) Write(b Batch) error {
	if b.Empty() {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, k := range b.Remove {
		if _, err := tx.Exec("DELETE FROM kv WHERE key = ?", k); err != nil {
			return fmt.Errorf("removing %s: %w", k, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for k, v := range b.Set {
		_, err := tx.Exec(`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			k, v, now)
		if err != nil {
			return fmt.Errorf("writing %s: %w", k, err)
		}
	}

	return tx.Commit()
}

func (s *SQLite) Keys() ([]string, error) {
	rows, err := s.db.Query("SELECT key FROM kv ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// DailySnapshot is the end-of-day summary of a budget.
type DailySnapshot struct {
	Day             string          `json:"day" yaml:"day"`
	Income          decimal.Decimal `json:"income" yaml:"income"`
	Spent           decimal.Decimal `json:"spent" yaml:"spent"`
	Remaining       decimal.Decimal `json:"remaining" yaml:"remaining"`
	SavingsTarget   decimal.Decimal `json:"savings_target" yaml:"savings_target"`
	SavingsProgress decimal.Decimal `json:"savings_progress" yaml:"savings_progress"`
	ExpenseCount    int             `json:"expense_count" yaml:"expense_count"`
	AlertCount      int             `json:"alert_count" yaml:"alert_count"`
}

// SnapshotRecorder is implemented by stores that keep daily history.
type SnapshotRecorder interface {
	RecordSnapshot(DailySnapshot) error
	Snapshots(since string) ([]DailySnapshot, error)
	ClearSnapshots() error
}

// RecordSnapshot upserts the row for snap.Day. Later calls on the same day win.
func (s *SQLite) RecordSnapshot(snap DailySnapshot) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO daily_snapshots
		(day, income, spent, remaining, savings_target, savings_progress,
		 expense_count, alert_count, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.Day, snap.Income.String(), snap.Spent.String(), snap.Remaining.String(),
		snap.SavingsTarget.String(), snap.SavingsProgress.String(),
		snap.ExpenseCount, snap.AlertCount, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Snapshots returns rows with day >= since, oldest first. An empty since
// returns everything.
func (s *SQLite) Snapshots(since string) ([]DailySnapshot, error) {
	rows, err := s.db.Query(`SELECT
		day, income, spent, remaining, savings_target, savings_progress,
		expense_count, alert_count
		FROM daily_snapshots WHERE day >= ? ORDER BY day`, since)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []DailySnapshot
	for rows.Next() {
		var snap DailySnapshot
		var income, spent, remaining, target, progress string
		if err := rows.Scan(&snap.Day, &income, &spent, &remaining, &target, &progress,
			&snap.ExpenseCount, &snap.AlertCount); err != nil {
			return nil, err
		}
		for _, f := range []struct {
			dst *decimal.Decimal
			raw string
		}{
			{&snap.Income, income},
			{&snap.Spent, spent},
			{&snap.Remaining, remaining},
			{&snap.SavingsTarget, target},
			{&snap.SavingsProgress, progress},
		} {
			v, err := decimal.NewFromString(f.raw)
			if err != nil {
				return nil, fmt.Errorf("snapshot %s: %w", snap.Day, err)
			}
			*f.dst = v
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// ClearSnapshots drops the daily history.
func (s *SQLite) ClearSnapshots() error {
	_, err := s.db.Exec("DELETE FROM daily_snapshots")
	return err
}
