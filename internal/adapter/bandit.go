package adapter

import (
	"encoding/json"

	"github.com/samuel-lab/pyqa/internal/config"
	"github.com/samuel-lab/pyqa/internal/runner"
)

// banditIssue is one entry of bandit's results array.
type banditIssue struct {
	Severity string `json:"issue_severity"`
	Text     string `json:"issue_text"`
	Filename string `json:"filename"`
	Line     int    `json:"line_number"`
}

type banditAdapter struct{}

func (banditAdapter) Parse(res runner.StepResult, _ config.Settings) Report {
	var out struct {
		Results []banditIssue `json:"results"`
	}
	if err := json.Unmarshal([]byte(res.Stdout), &out); err != nil {
		return opaque("Bandit", res.Stdout, "failed to parse bandit output as JSON")
	}
	if len(out.Results) == 0 {
		return Report{Recommendations: []string{"Bandit: No security issues found. Good job!"}}
	}

	rep := Report{
		Findings:        make([]Finding, 0, len(out.Results)),
		Recommendations: []string{"Bandit: Address the identified security issues to secure your code."},
	}
	for _, is := range out.Results {
		rep.Findings = append(rep.Findings, Finding{
			Tool:     "Bandit",
			Category: CategorySecurity,
			Severity: is.Severity,
			Message:  is.Text,
			File:     is.Filename,
			Line:     is.Line,
		})
	}
	return rep
}
