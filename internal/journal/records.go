package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DefaultLimit caps Recent when no positive limit is given.
const DefaultLimit = 20

// Record is one reconciliation attempt. ReloadExitCode is nil when no
// reload ran.
type Record struct {
	ID             int64
	RunID          string
	Key            string
	State          string
	Value          string
	File           string
	Changed        bool
	Outcome        string
	Detail         string
	ReloadExitCode *int
	Backup         string
	CreatedAt      time.Time
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// OutcomeOK marks a reconciliation that finished without error.
const OutcomeOK = "ok"

// Record appends rec to the journal and returns it with ID and CreatedAt set.
func (s *Store) Record(ctx context.Context, rec Record) (Record, error) {
	if rec.RunID == "" || rec.Key == "" {
		return rec, errors.New("journal record requires run id and key")
	}
	if rec.Outcome == "" {
		rec.Outcome = OutcomeOK
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var exitCode sql.NullInt64
	if rec.ReloadExitCode != nil {
		exitCode = sql.NullInt64{Int64: int64(*rec.ReloadExitCode), Valid: true}
	}

	ctx = ensureContext(ctx)
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, `INSERT INTO runs
			(run_id, key_name, state, value, file, changed, outcome, detail, reload_exit_code, backup_path, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.RunID, rec.Key, rec.State, rec.Value, rec.File, boolToInt(rec.Changed),
			rec.Outcome, rec.Detail, exitCode, rec.Backup, rec.CreatedAt.UTC().Format(timeLayout),
		)
		return execErr
	})
	if err != nil {
		return rec, fmt.Errorf("insert journal record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return rec, fmt.Errorf("journal record id: %w", err)
	}
	rec.ID = id
	return rec, nil
}

// Recent returns the newest records first. An empty key returns records
// for every key.
func (s *Store) Recent(ctx context.Context, key string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	ctx = ensureContext(ctx)

	query := `SELECT id, run_id, key_name, state, value, file, changed, outcome, detail, reload_exit_code, backup_path, created_at
		FROM runs`
	args := []any{}
	if key != "" {
		query += " WHERE key_name = ?"
		args = append(args, key)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return records, nil
}

// Prune deletes records older than cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx = ensureContext(ctx)
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, "DELETE FROM runs WHERE created_at < ?", cutoff.UTC().Format(timeLayout))
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}
	return res.RowsAffected()
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		rec       Record
		changed   int
		exitCode  sql.NullInt64
		createdAt string
	)
	if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Key, &rec.State, &rec.Value, &rec.File,
		&changed, &rec.Outcome, &rec.Detail, &exitCode, &rec.Backup, &createdAt); err != nil {
		return Record{}, fmt.Errorf("scan journal record: %w", err)
	}
	rec.Changed = changed != 0
	if exitCode.Valid {
		code := int(exitCode.Int64)
		rec.ReloadExitCode = &code
	}
	parsed, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return Record{}, fmt.Errorf("parse journal timestamp %q: %w", createdAt, err)
	}
	rec.CreatedAt = parsed
	return rec, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
