package adapter

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/samuel-lab/pyqa/internal/config"
	"github.com/samuel-lab/pyqa/internal/runner"
)

// pylintIssue is the subset of pylint's JSON record the engine keeps.
type pylintIssue struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Line    int    `json:"line"`
	Path    string `json:"path"`
}

type pylintAdapter struct{}

func (pylintAdapter) Parse(res runner.StepResult, _ config.Settings) Report {
	var issues []pylintIssue
	if err := json.Unmarshal([]byte(res.Stdout), &issues); err != nil {
		return opaque("Pylint", res.Stdout, "failed to parse pylint output as JSON")
	}
	if len(issues) == 0 {
		return Report{Recommendations: []string{"Pylint: No issues found. Great job!"}}
	}

	rep := Report{Findings: make([]Finding, 0, len(issues))}
	types := make(map[string]bool)
	for _, is := range issues {
		rep.Findings = append(rep.Findings, Finding{
			Tool:     "Pylint",
			Category: CategoryLint,
			Severity: is.Type,
			Message:  is.Message,
			File:     is.Path,
			Line:     is.Line,
		})
		types[is.Type] = true
	}

	// One recommendation per distinct issue type, sorted for stable output.
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rep.Recommendations = append(rep.Recommendations,
			fmt.Sprintf("Pylint: Address %s issues for better code quality.", name))
	}
	return rep
}
