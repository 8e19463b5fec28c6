package adapter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/samuel-lab/pyqa/internal/config"
	"github.com/samuel-lab/pyqa/internal/runner"
)

// pydocstyleLocRe matches the location line of a violation pair, e.g.
// "app.py:12 in public function `run`:".
var pydocstyleLocRe = regexp.MustCompile(`^(.+?):(\d+)\s`)

type pydocstyleAdapter struct{}

// pydocstyle prints violations as two-line pairs: a location line followed
// by an indented "Dnnn: ..." line. Each pair becomes one finding.
func (pydocstyleAdapter) Parse(res runner.StepResult, _ config.Settings) Report {
	out := strings.TrimSpace(res.Stdout)
	if out == "" {
		return Report{Recommendations: []string{"Pydocstyle: Documentation complies with style guidelines."}}
	}

	rep := Report{Recommendations: []string{"Pydocstyle: Improve docstrings to enhance code maintainability."}}
	lines := strings.Split(out, "\n")
	for i := 0; i < len(lines); i++ {
		m := pydocstyleLocRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		message := strings.TrimSpace(lines[i])
		if i+1 < len(lines) && !pydocstyleLocRe.MatchString(lines[i+1]) {
			if next := strings.TrimSpace(lines[i+1]); next != "" {
				message = next
				i++
			}
		}
		rep.Findings = append(rep.Findings, Finding{
			Tool:     "Pydocstyle",
			Category: CategoryDocstring,
			Message:  message,
			File:     m[1],
			Line:     lineNo,
		})
	}
	if len(rep.Findings) == 0 {
		rep.Findings = append(rep.Findings, Finding{
			Tool:     "Pydocstyle",
			Category: CategoryDocstring,
			Message:  out,
		})
	}
	return rep
}
