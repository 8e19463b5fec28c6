package adapter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samuel-lab/pyqa/internal/config"
	"github.com/samuel-lab/pyqa/internal/runner"
)

// compliantLicenses is the allow-list for license compliance. Matching is
// by substring, so "BSD License" and "BSD-3-Clause" both pass as BSD.
var compliantLicenses = []string{"MIT", "BSD", "Apache 2.0", "GPLv3", "LGPL", "MPL"}

// licenseEntry mirrors pip-licenses' JSON records (capitalized keys).
type licenseEntry struct {
	Name    string `json:"Name"`
	Version string `json:"Version"`
	License string `json:"License"`
}

type licensesAdapter struct{}

func (licensesAdapter) Parse(res runner.StepResult, _ config.Settings) Report {
	var entries []licenseEntry
	if err := json.Unmarshal([]byte(res.Stdout), &entries); err != nil {
		return opaque("Pip-Licenses", res.Stdout, "failed to parse pip-licenses output as JSON")
	}

	var rep Report
	var offenders []string
	for _, e := range entries {
		if isCompliant(e.License) {
			continue
		}
		offenders = append(offenders, e.Name)
		rep.Findings = append(rep.Findings, Finding{
			Tool:     "Pip-Licenses",
			Category: CategoryLicense,
			Message:  fmt.Sprintf("%s %s is licensed under %s", e.Name, e.Version, e.License),
		})
	}
	if len(offenders) > 0 {
		rep.Recommendations = []string{fmt.Sprintf(
			"Pip-Licenses: Review licenses of %s for compliance.", strings.Join(offenders, ", "))}
	} else {
		rep.Recommendations = []string{"Pip-Licenses: All dependencies have compliant licenses."}
	}
	return rep
}

func isCompliant(license string) bool {
	for _, ok := range compliantLicenses {
		if strings.Contains(license, ok) {
			return true
		}
	}
	return false
}
