package adapter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samuel-lab/pyqa/internal/config"
	"github.com/samuel-lab/pyqa/internal/runner"
)

type pytestAdapter struct{}

// The testing adapter reads two sources: pytest's terminal output and the
// coverage JSON report the engine collected from disk after the run.
func (pytestAdapter) Parse(res runner.StepResult, _ config.Settings) Report {
	var rep Report
	if strings.Contains(strings.ToLower(res.Stdout), "no tests ran") {
		rep.Recommendations = append(rep.Recommendations,
			"Pytest: No tests found. Consider adding tests to improve code reliability.")
	} else {
		rep.Recommendations = append(rep.Recommendations,
			"Pytest: Tests executed. Review test results for failures.")
	}

	switch {
	case res.ReportMissing:
		rep.Findings = append(rep.Findings, Finding{
			Tool:     "Pytest",
			Category: CategoryCoverage,
			Message:  "Coverage report not found.",
		})
	case len(res.Report) > 0:
		var cov struct {
			Meta struct {
				CoveragePercent float64 `json:"coverage_percent"`
			} `json:"meta"`
		}
		if err := json.Unmarshal(res.Report, &cov); err != nil {
			rep.Findings = append(rep.Findings, Finding{
				Tool:     "Pytest",
				Category: CategoryCoverage,
				Message:  "Failed to parse coverage report.",
			})
			rep.ParseWarning = "failed to parse coverage report"
			break
		}
		pct := cov.Meta.CoveragePercent
		rep.Coverage = &pct
		if pct < 80 {
			rep.Recommendations = append(rep.Recommendations,
				fmt.Sprintf("Coverage: Code coverage is %.2f%%. Aim for at least 80%%.", pct))
		} else {
			rep.Recommendations = append(rep.Recommendations,
				fmt.Sprintf("Coverage: Good job! Code coverage is %.2f%%.", pct))
		}
	}
	return rep
}
