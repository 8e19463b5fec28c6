package history

// MetricValue is one named measurement extracted from a snapshot.
type MetricValue struct {
	Name           string  // stable key, matching the snapshot's JSON field
	Label          string  // human-readable form for tables and alerts
	Value          float64
	HigherIsBetter bool
}

// Metrics returns the snapshot's measurements in display order. Every
// metric counts issues, so lower is better, except code coverage.
func (s Snapshot) Metrics() []MetricValue {
	return []MetricValue{
		{Name: "lint_issues", Label: "Lint issues", Value: float64(s.LintIssues)},
		{Name: "security_issues", Label: "Security issues", Value: float64(s.SecurityIssues)},
		{Name: "formatting_issues", Label: "Formatting issues", Value: float64(s.FormattingIssues)},
		{Name: "documentation_issues", Label: "Documentation issues", Value: float64(s.DocumentationIssues)},
		{Name: "duplication_issues", Label: "Duplication issues", Value: float64(s.DuplicationIssues)},
		{Name: "code_coverage", Label: "Code coverage", Value: s.CodeCoverage, HigherIsBetter: true},
		{Name: "vulnerabilities", Label: "Vulnerabilities", Value: float64(s.Vulnerabilities)},
	}
}
