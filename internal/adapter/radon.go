package adapter

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/samuel-lab/pyqa/internal/config"
	"github.com/samuel-lab/pyqa/internal/runner"
)

// radonBlock is one function/method/class entry in radon's cc JSON output.
type radonBlock struct {
	Name       string `json:"name"`
	Complexity int    `json:"complexity"`
	Lineno     int    `json:"lineno"`
}

type radonAdapter struct{}

func (radonAdapter) Parse(res runner.StepResult, set config.Settings) Report {
	var modules map[string][]radonBlock
	if err := json.Unmarshal([]byte(res.Stdout), &modules); err != nil {
		return opaque("Radon", res.Stdout, "failed to parse radon output as JSON")
	}

	// Module paths are map keys; sort them so findings are deterministic.
	paths := make([]string, 0, len(modules))
	for p := range modules {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var rep Report
	for _, p := range paths {
		for _, b := range modules[p] {
			if b.Complexity <= set.RadonThreshold {
				continue
			}
			rep.Findings = append(rep.Findings, Finding{
				Tool:     "Radon",
				Category: CategoryComplexity,
				Message:  fmt.Sprintf("%s - CC: %d", b.Name, b.Complexity),
				File:     p,
				Line:     b.Lineno,
			})
		}
	}
	if len(rep.Findings) > 0 {
		rep.Recommendations = []string{"Radon: Simplify complex functions to reduce cognitive load."}
	} else {
		rep.Recommendations = []string{"Radon: Code complexity is within acceptable limits."}
	}
	return rep
}
