// Package store provides SQLite database access for the pyqa run archive.
package store

import "time"

// Run represents one recorded analysis run.
type Run struct {
	ID        int64     `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Project   string    `json:"project"`
	Status    string    `json:"status"`
	Version   string    `json:"version"`
}

// Metric is a named metric value recorded for a run.
type Metric struct {
	ID          int64   `json:"id"`
	RunID       int64   `json:"run_id"`
	MetricName  string  `json:"metric_name"`
	MetricValue float64 `json:"metric_value"`
}

// Recommendation is an advisory message produced by a run, kept in
// the order the tools emitted it.
type Recommendation struct {
	ID       int64  `json:"id"`
	RunID    int64  `json:"run_id"`
	Position int    `json:"position"`
	Text     string `json:"text"`
}

// Finding is a single issue reported by an analysis tool during a run.
type Finding struct {
	ID       int64  `json:"id"`
	RunID    int64  `json:"run_id"`
	Tool     string `json:"tool"`
	Category string `json:"category"`
	Severity string `json:"severity,omitempty"`
	Message  string `json:"message"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
}
