// Package adapter converts raw tool output into normalized findings and
// recommendations.
//
// Adapters are pure: the same result and settings always produce the same
// report, in the same order. A structured adapter that cannot decode its
// input degrades to a single opaque finding carrying the raw text and flags
// the failure via ParseWarning; it never fails the run.
package adapter

import (
	"strings"

	"github.com/samuel-lab/pyqa/internal/config"
	"github.com/samuel-lab/pyqa/internal/runner"
)

// Finding categories. Snapshot metrics count findings per category.
const (
	CategoryLint          = "lint"
	CategoryType          = "type"
	CategoryComplexity    = "complexity"
	CategorySecurity      = "security"
	CategoryFormatting    = "formatting"
	CategoryDocstring     = "docstring"
	CategoryLicense       = "license"
	CategoryCoverage      = "coverage"
	CategoryVulnerability = "vulnerability"
	CategoryDuplication   = "duplication"
	// CategoryRaw marks opaque findings kept when output could not be
	// decoded.
	CategoryRaw = "raw"
)

// Finding is one normalized issue reported by a tool.
type Finding struct {
	Tool     string `json:"tool"`
	Category string `json:"category"`
	Severity string `json:"severity,omitempty"`
	Message  string `json:"message"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
}

// Report is the normalized outcome of parsing one tool invocation.
type Report struct {
	Findings        []Finding
	Recommendations []string

	// Coverage is set by the testing adapter when the coverage report
	// parsed: percent of lines covered.
	Coverage *float64

	// ParseWarning is non-empty when structured output failed to decode.
	ParseWarning string
}

// Adapter parses one tool family's output.
type Adapter interface {
	Parse(res runner.StepResult, set config.Settings) Report
}

// ForTool returns the adapter for a catalog tool name, or nil for tools
// that report through fixed messages instead (the in-place fixers).
func ForTool(name string) Adapter {
	switch name {
	case "Pylint":
		return pylintAdapter{}
	case "Mypy":
		return mypyAdapter{}
	case "Radon":
		return radonAdapter{}
	case "Bandit":
		return banditAdapter{}
	case "Black":
		return blackAdapter{}
	case "Pydocstyle":
		return pydocstyleAdapter{}
	case "Pip-Licenses":
		return licensesAdapter{}
	case "Pytest":
		return pytestAdapter{}
	case "Pip-Audit":
		return pipAuditAdapter{}
	case "Flake8":
		return flake8Adapter{}
	case "Documentation Generation":
		return docgenAdapter{}
	}
	return nil
}

// opaque builds the degraded report for undecodable structured output. Raw
// findings carry CategoryRaw so they never skew per-category metrics.
func opaque(tool, raw, warning string) Report {
	return Report{
		Findings: []Finding{{
			Tool:     tool,
			Category: CategoryRaw,
			Message:  strings.TrimSpace(raw),
		}},
		ParseWarning: warning,
	}
}
