package adapter

import (
	"encoding/json"
	"fmt"

	"github.com/samuel-lab/pyqa/internal/config"
	"github.com/samuel-lab/pyqa/internal/runner"
)

// auditVulnerability is one entry of pip-audit's JSON vulnerability list.
type auditVulnerability struct {
	Dependency struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"dependency"`
	ID          string `json:"id"`
	Description string `json:"description"`
}

type pipAuditAdapter struct{}

func (pipAuditAdapter) Parse(res runner.StepResult, _ config.Settings) Report {
	var vulns []auditVulnerability
	if err := json.Unmarshal([]byte(res.Stdout), &vulns); err != nil {
		return opaque("Pip-Audit", res.Stdout, "failed to parse pip-audit output as JSON")
	}
	if len(vulns) == 0 {
		return Report{Recommendations: []string{"Pip-Audit: No vulnerabilities found in dependencies."}}
	}

	rep := Report{
		Findings:        make([]Finding, 0, len(vulns)),
		Recommendations: []string{"Pip-Audit: Update dependencies to address vulnerabilities."},
	}
	for _, v := range vulns {
		rep.Findings = append(rep.Findings, Finding{
			Tool:     "Pip-Audit",
			Category: CategoryVulnerability,
			Message: fmt.Sprintf("%s %s: %s (%s)",
				v.Dependency.Name, v.Dependency.Version, v.ID, v.Description),
		})
	}
	return rep
}
