package watch

import (
	"fmt"
	"strings"
	"time"

	"github.com/samuel-lab/pyqa/internal/history"
)

// Compare detects notable changes between two metric snapshots and returns
// alerts. It checks for critical, warning, and info-level changes.
func Compare(prev, curr *history.Snapshot) []Alert {
	var alerts []Alert

	alerts = append(alerts, compareCritical(prev, curr)...)
	alerts = append(alerts, compareWarning(prev, curr)...)
	alerts = append(alerts, compareInfo(prev, curr)...)

	return alerts
}

// compareCritical detects critical-level changes.
func compareCritical(prev, curr *history.Snapshot) []Alert {
	var alerts []Alert
	now := time.Now()

	// New dependency vulnerabilities appeared.
	if curr.Vulnerabilities > prev.Vulnerabilities {
		alerts = append(alerts, Alert{
			Level:   "critical",
			Title:   "New vulnerabilities",
			Message: fmt.Sprintf("Dependency vulnerabilities increased from %d to %d", prev.Vulnerabilities, curr.Vulnerabilities),
			Time:    now,
		})
	}

	// Security findings increased.
	if curr.SecurityIssues > prev.SecurityIssues {
		alerts = append(alerts, Alert{
			Level:   "critical",
			Title:   "Security regression",
			Message: fmt.Sprintf("Security findings increased from %d to %d", prev.SecurityIssues, curr.SecurityIssues),
			Time:    now,
		})
	}

	return alerts
}

// compareWarning detects warning-level changes.
func compareWarning(prev, curr *history.Snapshot) []Alert {
	var alerts []Alert
	now := time.Now()

	// Issue counts regressed. Security and vulnerabilities already alert
	// at critical level, so they are skipped here.
	before := indexMetrics(prev)
	for _, m := range curr.Metrics() {
		if m.HigherIsBetter || m.Name == "security_issues" || m.Name == "vulnerabilities" {
			continue
		}
		if m.Value > before[m.Name].Value {
			alerts = append(alerts, Alert{
				Level:   "warning",
				Title:   fmt.Sprintf("Regression: %s", strings.ToLower(m.Label)),
				Message: fmt.Sprintf("Increased from %.0f to %.0f", before[m.Name].Value, m.Value),
				Time:    now,
			})
		}
	}

	// Coverage dropped.
	if curr.CodeCoverage < prev.CodeCoverage {
		alerts = append(alerts, Alert{
			Level:   "warning",
			Title:   "Coverage dropped",
			Message: fmt.Sprintf("Code coverage fell from %.2f%% to %.2f%%", prev.CodeCoverage, curr.CodeCoverage),
			Time:    now,
		})
	}

	return alerts
}

// compareInfo detects informational improvements.
func compareInfo(prev, curr *history.Snapshot) []Alert {
	var alerts []Alert
	now := time.Now()

	before := indexMetrics(prev)
	for _, m := range curr.Metrics() {
		if m.HigherIsBetter {
			continue
		}
		if m.Value < before[m.Name].Value {
			alerts = append(alerts, Alert{
				Level:   "info",
				Title:   fmt.Sprintf("Improved: %s", strings.ToLower(m.Label)),
				Message: fmt.Sprintf("Decreased from %.0f to %.0f", before[m.Name].Value, m.Value),
				Time:    now,
			})
		}
	}

	// Coverage rose.
	if curr.CodeCoverage > prev.CodeCoverage {
		alerts = append(alerts, Alert{
			Level:   "info",
			Title:   "Coverage improved",
			Message: fmt.Sprintf("Code coverage rose from %.2f%% to %.2f%%", prev.CodeCoverage, curr.CodeCoverage),
			Time:    now,
		})
	}

	return alerts
}

func indexMetrics(s *history.Snapshot) map[string]history.MetricValue {
	byName := make(map[string]history.MetricValue, 7)
	for _, m := range s.Metrics() {
		byName[m.Name] = m
	}
	return byName
}
