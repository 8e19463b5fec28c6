package adapter

import (
	"strings"

	"github.com/samuel-lab/pyqa/internal/config"
	"github.com/samuel-lab/pyqa/internal/runner"
)

type docgenAdapter struct{}

// pdoc's success is judged by the absence of "Error" in its combined
// output; it reports via a recommendation and never produces findings.
func (docgenAdapter) Parse(res runner.StepResult, _ config.Settings) Report {
	if strings.Contains(res.Combined(), "Error") {
		return Report{Recommendations: []string{"Documentation: Failed to generate documentation."}}
	}
	return Report{Recommendations: []string{"Documentation: Project documentation generated using pdoc."}}
}
