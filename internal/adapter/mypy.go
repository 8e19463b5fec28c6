package adapter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/samuel-lab/pyqa/internal/config"
	"github.com/samuel-lab/pyqa/internal/runner"
)

// mypyLineRe matches mypy's per-diagnostic lines, with or without a column.
var mypyLineRe = regexp.MustCompile(`^(.+?):(\d+):(?:\d+:)?\s*(error|warning|note):\s*(.+)$`)

type mypyAdapter struct{}

func (mypyAdapter) Parse(res runner.StepResult, _ config.Settings) Report {
	out := res.Stdout
	if strings.Contains(out, "Success: no issues found in") {
		return Report{Recommendations: []string{"Mypy: No type issues found. Excellent!"}}
	}

	rep := Report{Recommendations: []string{"Mypy: Consider adding type annotations to improve code reliability."}}
	for _, line := range strings.Split(out, "\n") {
		m := mypyLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		rep.Findings = append(rep.Findings, Finding{
			Tool:     "Mypy",
			Category: CategoryType,
			Severity: m[3],
			Message:  strings.TrimSpace(m[4]),
			File:     m[1],
			Line:     lineNo,
		})
	}

	// Output that matched no diagnostic shape still surfaces as one block
	// finding rather than disappearing.
	if len(rep.Findings) == 0 {
		if trimmed := strings.TrimSpace(out); trimmed != "" {
			rep.Findings = append(rep.Findings, Finding{
				Tool:     "Mypy",
				Category: CategoryType,
				Message:  trimmed,
			})
		}
	}
	return rep
}
