package adapter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/samuel-lab/pyqa/internal/config"
	"github.com/samuel-lab/pyqa/internal/runner"
)

// flake8LineRe matches the "path:row:col: CODE text" line shape the run
// requests via --format.
var flake8LineRe = regexp.MustCompile(`^(.+?):(\d+):(\d+):\s+(\S+)\s+(.*)$`)

type flake8Adapter struct{}

func (flake8Adapter) Parse(res runner.StepResult, _ config.Settings) Report {
	out := strings.TrimSpace(res.Stdout)
	if out == "" {
		return Report{Recommendations: []string{"Flake8: No code duplication issues found."}}
	}

	rep := Report{Recommendations: []string{"Flake8: Consider refactoring duplicated code to improve maintainability."}}
	for _, line := range strings.Split(out, "\n") {
		m := flake8LineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		rep.Findings = append(rep.Findings, Finding{
			Tool:     "Flake8",
			Category: CategoryDuplication,
			Message:  strings.TrimSpace(m[4] + " " + m[5]),
			File:     m[1],
			Line:     lineNo,
		})
	}
	if len(rep.Findings) == 0 {
		rep.Findings = append(rep.Findings, Finding{
			Tool:     "Flake8",
			Category: CategoryDuplication,
			Message:  out,
		})
	}
	return rep
}
