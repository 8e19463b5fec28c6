package store

import (
	"database/sql"
	"time"
)

// CreateRun inserts a new run record and returns its ID.
func (db *DB) CreateRun(startedAt time.Time, project, status, version string) (int64, error) {
	result, err := db.conn.Exec(
		"INSERT INTO runs (started_at, project, status, version) VALUES (?, ?, ?, ?)",
		startedAt.UTC().Format(time.RFC3339), project, status, version,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetLatestRun returns the most recent run, or nil if none exist.
func (db *DB) GetLatestRun() (*Run, error) {
	row := db.conn.QueryRow("SELECT id, started_at, project, status, version FROM runs ORDER BY id DESC LIMIT 1")
	return scanRun(row)
}

// GetRun returns a run by ID.
func (db *DB) GetRun(id int64) (*Run, error) {
	row := db.conn.QueryRow("SELECT id, started_at, project, status, version FROM runs WHERE id = ?", id)
	return scanRun(row)
}

// GetRecentRuns returns up to n runs, newest first.
func (db *DB) GetRecentRuns(n int) ([]Run, error) {
	rows, err := db.conn.Query(
		"SELECT id, started_at, project, status, version FROM runs ORDER BY id DESC LIMIT ?",
		n,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt string
		if err := rows.Scan(&r.ID, &startedAt, &r.Project, &r.Status, &r.Version); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func scanRun(row *sql.Row) (*Run, error) {
	var r Run
	var startedAt string
	err := row.Scan(&r.ID, &startedAt, &r.Project, &r.Status, &r.Version)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	return &r, nil
}

// InsertRunMetric inserts a named metric value for a run.
func (db *DB) InsertRunMetric(runID int64, name string, value float64) error {
	_, err := db.conn.Exec(
		"INSERT INTO run_metrics (run_id, metric_name, metric_value) VALUES (?, ?, ?)",
		runID, name, value,
	)
	return err
}

// InsertRecommendation inserts a recommendation for a run. Position
// preserves emission order across reads.
func (db *DB) InsertRecommendation(runID int64, position int, text string) error {
	_, err := db.conn.Exec(
		"INSERT INTO recommendations (run_id, position, text) VALUES (?, ?, ?)",
		runID, position, text,
	)
	return err
}

// InsertFinding inserts a finding for a run.
func (db *DB) InsertFinding(f *Finding) error {
	_, err := db.conn.Exec(
		"INSERT INTO findings (run_id, tool, category, severity, message, file, line) VALUES (?, ?, ?, ?, ?, ?, ?)",
		f.RunID, f.Tool, f.Category, f.Severity, f.Message, f.File, f.Line,
	)
	return err
}

// GetRunMetrics returns all metrics recorded for a run.
func (db *DB) GetRunMetrics(runID int64) ([]Metric, error) {
	rows, err := db.conn.Query(
		"SELECT id, run_id, metric_name, metric_value FROM run_metrics WHERE run_id = ?",
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var metrics []Metric
	for rows.Next() {
		var m Metric
		if err := rows.Scan(&m.ID, &m.RunID, &m.MetricName, &m.MetricValue); err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// GetRecommendations returns a run's recommendations in emission order.
func (db *DB) GetRecommendations(runID int64) ([]Recommendation, error) {
	rows, err := db.conn.Query(
		"SELECT id, run_id, position, text FROM recommendations WHERE run_id = ? ORDER BY position",
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var recs []Recommendation
	for rows.Next() {
		var rec Recommendation
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Position, &rec.Text); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// GetFindings returns all findings recorded for a run.
func (db *DB) GetFindings(runID int64) ([]Finding, error) {
	rows, err := db.conn.Query(
		"SELECT id, run_id, tool, category, severity, message, file, line FROM findings WHERE run_id = ?",
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var findings []Finding
	for rows.Next() {
		var f Finding
		var severity, file sql.NullString
		var line sql.NullInt64
		if err := rows.Scan(&f.ID, &f.RunID, &f.Tool, &f.Category, &severity, &f.Message, &file, &line); err != nil {
			return nil, err
		}
		f.Severity = severity.String
		f.File = file.String
		f.Line = int(line.Int64)
		findings = append(findings, f)
	}
	return findings, rows.Err()
}
