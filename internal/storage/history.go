package storage

import (
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"time"
)

// timeLayout has a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one recorded analysis run.
type Run struct {
	ID            string
	StartedAt     time.Time
	Duration      time.Duration
	ProjectRoot   string
	ConfigKind    string
	IssueCount    int
	WeightedCount int
	Threshold     int
	Passed        bool
	ToolVersion   string

	// RuleSets maps rule set id to its open issue count.
	RuleSets map[string]int
	Metrics  map[string]int
}

// RecordRun stores a run with its per-rule-set counts and metrics.
func (db *DB) RecordRun(run *Run) error {
	err := db.WithTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO runs (id, started_at, duration_ms, project_root, config_kind,
				issue_count, weighted_count, threshold, passed, tool_version)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID,
			run.StartedAt.UTC().Format(timeLayout),
			run.Duration.Milliseconds(),
			run.ProjectRoot,
			run.ConfigKind,
			run.IssueCount,
			run.WeightedCount,
			run.Threshold,
			boolToInt(run.Passed),
			run.ToolVersion,
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		for _, rs := range slices.Sorted(maps.Keys(run.RuleSets)) {
			if _, err := tx.Exec("INSERT INTO run_rule_sets (run_id, rule_set, issue_count) VALUES (?, ?, ?)",
				run.ID, rs, run.RuleSets[rs]); err != nil {
				return fmt.Errorf("failed to insert rule set count: %w", err)
			}
		}
		for _, key := range slices.Sorted(maps.Keys(run.Metrics)) {
			if _, err := tx.Exec("INSERT INTO run_metrics (run_id, key, value) VALUES (?, ?, ?)",
				run.ID, key, run.Metrics[key]); err != nil {
				return fmt.Errorf("failed to insert metric: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return unavailable(db.dbPath, "failed to record run", err)
	}
	return nil
}

// ListRuns returns the most recent runs first, at most limit of them
// (all when limit <= 0). Rule set counts and metrics are not loaded.
func (db *DB) ListRuns(limit int) ([]*Run, error) {
	query := `
		SELECT id, started_at, duration_ms, project_root, config_kind,
			issue_count, weighted_count, threshold, passed, tool_version
		FROM runs
		ORDER BY started_at DESC, id
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, unavailable(db.dbPath, "failed to list runs", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, unavailable(db.dbPath, "failed to read run", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(db.dbPath, "failed to list runs", err)
	}
	return runs, nil
}

// GetRun loads one run including rule set counts and metrics. It returns
// nil without error when the id is unknown.
func (db *DB) GetRun(id string) (*Run, error) {
	row := db.conn.QueryRow(`
		SELECT id, started_at, duration_ms, project_root, config_kind,
			issue_count, weighted_count, threshold, passed, tool_version
		FROM runs WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable(db.dbPath, "failed to read run", err)
	}

	if run.RuleSets, err = db.loadCounts("SELECT rule_set, issue_count FROM run_rule_sets WHERE run_id = ?", id); err != nil {
		return nil, unavailable(db.dbPath, "failed to read rule set counts", err)
	}
	if run.Metrics, err = db.loadCounts("SELECT key, value FROM run_metrics WHERE run_id = ?", id); err != nil {
		return nil, unavailable(db.dbPath, "failed to read metrics", err)
	}
	return run, nil
}

func (db *DB) loadCounts(query, id string) (map[string]int, error) {
	rows, err := db.conn.Query(query, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]int)
	for rows.Next() {
		var k string
		var v int
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		run        Run
		startedAt  string
		durationMs int64
		passed     int
	)
	err := s.Scan(&run.ID, &startedAt, &durationMs, &run.ProjectRoot, &run.ConfigKind,
		&run.IssueCount, &run.WeightedCount, &run.Threshold, &passed, &run.ToolVersion)
	if err != nil {
		return nil, err
	}
	run.StartedAt, err = time.Parse(timeLayout, startedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid started_at %q: %w", startedAt, err)
	}
	run.Duration = time.Duration(durationMs) * time.Millisecond
	run.Passed = passed != 0
	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
