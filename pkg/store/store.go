// Package store keeps a local SQLite history of scan results so scores can be
// compared across runs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	_ "modernc.org/sqlite" // Import sqlite driver

	"github.com/user/vsce-audit/pkg/engine"
)

const schema = `
CREATE TABLE IF NOT EXISTS scans (
	run_id TEXT PRIMARY KEY,
	generated_at TEXT NOT NULL,
	extensions_scanned INTEGER NOT NULL,
	errors INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS extension_scores (
	run_id TEXT NOT NULL REFERENCES scans(run_id),
	folder_name TEXT NOT NULL,
	extension_name TEXT,
	publisher TEXT,
	verified BOOLEAN DEFAULT false,
	license TEXT,
	gdpr_status TEXT,
	semgrep_findings INTEGER,
	final_score INTEGER NOT NULL,
	reason TEXT,
	scan_date DATE,
	PRIMARY KEY (run_id, folder_name)
);
CREATE INDEX IF NOT EXISTS idx_scores_folder ON extension_scores(folder_name);
`

// Store wraps the history database.
type Store struct {
	db *sql.DB
}

// ScoreRecord is one extension's score in one past run.
type ScoreRecord struct {
	RunID       string
	GeneratedAt string
	Folder      string
	Name        string
	Publisher   string
	Verified    bool
	License     string
	GDPRStatus  string
	Findings    int
	FinalScore  int
	Reason      string
}

// RunRecord summarizes one past run.
type RunRecord struct {
	RunID             string
	GeneratedAt       string
	ExtensionsScanned int
	Errors            int
	Blocklisted       int
}

// Open opens (creating if needed) the database at path and bootstraps the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database %s: %w", path, err)
	}
	// one writer, no concurrent connections
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.Bootstrap(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Bootstrap creates the tables if they don't exist.
func (s *Store) Bootstrap(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordBatch stores a finished run in a single transaction. Re-recording the
// same run id is a no-op.
func (s *Store) RecordBatch(ctx context.Context, runID string, g engine.GlobalReport) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); !errors.Is(rbErr, sql.ErrTxDone) {
			err = multierr.Append(err, rbErr)
		}
	}()

	if _, err = tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO scans (run_id, generated_at, extensions_scanned, errors)
		VALUES (?, ?, ?, ?)
	`, runID, g.GeneratedAt, g.ExtensionsScanned, len(g.Errors)); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO extension_scores
			(run_id, folder_name, extension_name, publisher, verified, license, gdpr_status,
			 semgrep_findings, final_score, reason, scan_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, DATE('now'))
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range g.Reports {
		if _, err = stmt.ExecContext(ctx, runID, r.FolderName, r.ExtensionName, r.PublisherField,
			r.PublisherInfo.Verified, r.License, r.GDPRStatus, r.SemgrepFindingsCount,
			r.FinalScore, r.Reason); err != nil {
			return fmt.Errorf("failed to record %s: %w", r.FolderName, err)
		}
	}
	return tx.Commit()
}

// History returns the recorded scores of one extension folder, newest first.
// An empty folder returns scores of every extension.
func (s *Store) History(ctx context.Context, folder string, limit int) ([]ScoreRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT e.run_id, s.generated_at, e.folder_name, e.extension_name, e.publisher, e.verified,
		       e.license, e.gdpr_status, e.semgrep_findings, e.final_score, e.reason
		FROM extension_scores e JOIN scans s ON s.run_id = e.run_id
		WHERE (? = '' OR e.folder_name = ?)
		ORDER BY s.generated_at DESC, e.folder_name
		LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, folder, folder, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []ScoreRecord
	for rows.Next() {
		var r ScoreRecord
		var name, publisher, license, gdpr, reason sql.NullString
		if err := rows.Scan(&r.RunID, &r.GeneratedAt, &r.Folder, &name, &publisher, &r.Verified,
			&license, &gdpr, &r.Findings, &r.FinalScore, &reason); err != nil {
			return nil, err
		}
		r.Name, r.Publisher, r.License, r.GDPRStatus, r.Reason = name.String, publisher.String, license.String, gdpr.String, reason.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// Runs lists past runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.run_id, s.generated_at, s.extensions_scanned, s.errors,
		       (SELECT COUNT(*) FROM extension_scores e WHERE e.run_id = s.run_id AND e.final_score <= ?)
		FROM scans s
		ORDER BY s.generated_at DESC
		LIMIT ?`, engine.BlocklistThreshold, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.RunID, &r.GeneratedAt, &r.ExtensionsScanned, &r.Errors, &r.Blocklisted); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Prune deletes runs older than the given age.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := engine.Timestamp(time.Now().Add(-olderThan))
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM extension_scores WHERE run_id IN (SELECT run_id FROM scans WHERE generated_at < ?)
	`, cutoff); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM scans WHERE generated_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}
