package adapter

import (
	"strings"

	"github.com/samuel-lab/pyqa/internal/config"
	"github.com/samuel-lab/pyqa/internal/runner"
)

type blackAdapter struct{}

// black reports its reformat candidates on stderr, so the adapter inspects
// the combined output.
func (blackAdapter) Parse(res runner.StepResult, _ config.Settings) Report {
	out := res.Combined()

	var rep Report
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if file, ok := strings.CutPrefix(line, "would reformat "); ok {
			rep.Findings = append(rep.Findings, Finding{
				Tool:     "Black",
				Category: CategoryFormatting,
				Message:  line,
				File:     file,
			})
		}
	}
	if len(rep.Findings) > 0 {
		rep.Recommendations = []string{"Black: Consider formatting your code for better readability."}
	} else {
		rep.Recommendations = []string{"Black: Code is properly formatted."}
	}
	return rep
}
