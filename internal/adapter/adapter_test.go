package adapter

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/samuel-lab/pyqa/internal/catalog"
	"github.com/samuel-lab/pyqa/internal/config"
	"github.com/samuel-lab/pyqa/internal/runner"
)

func parse(t *testing.T, tool string, res runner.StepResult) Report {
	t.Helper()
	ad := ForTool(tool)
	if ad == nil {
		t.Fatalf("ForTool(%q) = nil", tool)
	}
	return ad.Parse(res, config.DefaultSettings)
}

func TestForToolCoversCatalog(t *testing.T) {
	for _, tool := range catalog.Tools() {
		got := ForTool(tool.Name)
		if tool.Fixer && got != nil {
			t.Errorf("ForTool(%q): fixer has an adapter", tool.Name)
		}
		if !tool.Fixer && got == nil {
			t.Errorf("ForTool(%q) = nil, want an adapter", tool.Name)
		}
	}
	if ForTool("eslint") != nil {
		t.Error("ForTool returned an adapter for an unknown tool")
	}
}

func TestPylintFindingsAndSortedRecommendations(t *testing.T) {
	out := `[
  {"type": "warning", "module": "app", "line": 14, "column": 0, "path": "app.py",
   "symbol": "unused-import", "message": "Unused import os", "message-id": "W0611"},
  {"type": "convention", "module": "app", "line": 1, "column": 0, "path": "app.py",
   "symbol": "missing-module-docstring", "message": "Missing module docstring", "message-id": "C0114"},
  {"type": "convention", "module": "util", "line": 3, "column": 0, "path": "util.py",
   "symbol": "invalid-name", "message": "Constant name \"x\" doesn't conform", "message-id": "C0103"}
]`
	rep := parse(t, "Pylint", runner.StepResult{Stdout: out})

	wantFindings := []Finding{
		{Tool: "Pylint", Category: CategoryLint, Severity: "warning", Message: "Unused import os", File: "app.py", Line: 14},
		{Tool: "Pylint", Category: CategoryLint, Severity: "convention", Message: "Missing module docstring", File: "app.py", Line: 1},
		{Tool: "Pylint", Category: CategoryLint, Severity: "convention", Message: "Constant name \"x\" doesn't conform", File: "util.py", Line: 3},
	}
	if diff := cmp.Diff(wantFindings, rep.Findings); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}

	wantRecs := []string{
		"Pylint: Address convention issues for better code quality.",
		"Pylint: Address warning issues for better code quality.",
	}
	if diff := cmp.Diff(wantRecs, rep.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestPylintCleanOutput(t *testing.T) {
	rep := parse(t, "Pylint", runner.StepResult{Stdout: "[]\n"})
	if len(rep.Findings) != 0 {
		t.Errorf("findings = %v, want none", rep.Findings)
	}
	want := []string{"Pylint: No issues found. Great job!"}
	if diff := cmp.Diff(want, rep.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestPylintUnparsableDegradesToOpaqueFinding(t *testing.T) {
	rep := parse(t, "Pylint", runner.StepResult{Stdout: "Traceback (most recent call last):\n  boom\n"})

	if rep.ParseWarning == "" {
		t.Error("ParseWarning empty, want the decode failure flagged")
	}
	if len(rep.Findings) != 1 {
		t.Fatalf("findings = %d, want exactly one opaque finding", len(rep.Findings))
	}
	f := rep.Findings[0]
	if f.Category != CategoryRaw {
		t.Errorf("Category = %q, want %q", f.Category, CategoryRaw)
	}
	if !strings.Contains(f.Message, "Traceback") {
		t.Errorf("opaque finding %q lost the raw text", f.Message)
	}
	if len(rep.Recommendations) != 0 {
		t.Errorf("recommendations = %v, want none on parse failure", rep.Recommendations)
	}
}

func TestMypySuccess(t *testing.T) {
	rep := parse(t, "Mypy", runner.StepResult{Stdout: "Success: no issues found in 12 source files\n"})
	want := []string{"Mypy: No type issues found. Excellent!"}
	if diff := cmp.Diff(want, rep.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
	if len(rep.Findings) != 0 {
		t.Errorf("findings = %v, want none", rep.Findings)
	}
}

func TestMypyDiagnostics(t *testing.T) {
	out := `app.py:10: error: Incompatible return value type (got "int", expected "str")  [return-value]
        return count
               ^~~~~
app.py:12: note: Revealed type is "builtins.int"
Found 1 error in 1 file (checked 3 source files)
`
	rep := parse(t, "Mypy", runner.StepResult{Stdout: out})

	if len(rep.Findings) != 2 {
		t.Fatalf("findings = %d, want 2:\n%+v", len(rep.Findings), rep.Findings)
	}
	first := rep.Findings[0]
	if first.Severity != "error" || first.File != "app.py" || first.Line != 10 {
		t.Errorf("first finding = %+v", first)
	}
	if rep.Findings[1].Severity != "note" {
		t.Errorf("second finding severity = %q, want note", rep.Findings[1].Severity)
	}
	want := []string{"Mypy: Consider adding type annotations to improve code reliability."}
	if diff := cmp.Diff(want, rep.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestMypyUnshapedOutputBecomesBlockFinding(t *testing.T) {
	rep := parse(t, "Mypy", runner.StepResult{Stdout: "mypy: error: Cannot find config file\n"})
	if len(rep.Findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(rep.Findings))
	}
	if !strings.Contains(rep.Findings[0].Message, "Cannot find config file") {
		t.Errorf("block finding = %q", rep.Findings[0].Message)
	}
}

func TestRadonThreshold(t *testing.T) {
	out := `{
  "utils.py": [{"type": "function", "rank": "B", "complexity": 8, "name": "helper", "lineno": 4, "col_offset": 0, "endline": 30}],
  "app.py": [{"type": "method", "rank": "C", "complexity": 12, "name": "Engine.run", "lineno": 22, "col_offset": 4, "endline": 80}]
}`
	rep := parse(t, "Radon", runner.StepResult{Stdout: out})

	wantFindings := []Finding{
		{Tool: "Radon", Category: CategoryComplexity, Message: "Engine.run - CC: 12", File: "app.py", Line: 22},
	}
	if diff := cmp.Diff(wantFindings, rep.Findings); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}
	want := []string{"Radon: Simplify complex functions to reduce cognitive load."}
	if diff := cmp.Diff(want, rep.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestRadonWithinLimits(t *testing.T) {
	out := `{"utils.py": [{"type": "function", "rank": "A", "complexity": 3, "name": "helper", "lineno": 4, "col_offset": 0, "endline": 9}]}`
	rep := parse(t, "Radon", runner.StepResult{Stdout: out})

	if len(rep.Findings) != 0 {
		t.Errorf("findings = %v, want none", rep.Findings)
	}
	want := []string{"Radon: Code complexity is within acceptable limits."}
	if diff := cmp.Diff(want, rep.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestRadonCustomThreshold(t *testing.T) {
	set := config.DefaultSettings
	set.RadonThreshold = 2
	out := `{"utils.py": [{"type": "function", "rank": "A", "complexity": 3, "name": "helper", "lineno": 4, "col_offset": 0, "endline": 9}]}`
	rep := ForTool("Radon").Parse(runner.StepResult{Stdout: out}, set)
	if len(rep.Findings) != 1 {
		t.Errorf("findings = %d, want 1 with threshold 2", len(rep.Findings))
	}
}

func TestBanditResults(t *testing.T) {
	out := `{
  "errors": [],
  "generated_at": "2026-08-25T10:00:00Z",
  "results": [
    {"filename": "app.py", "issue_confidence": "HIGH", "issue_severity": "MEDIUM",
     "issue_text": "Possible hardcoded password: 'hunter2'", "line_number": 7,
     "test_id": "B105", "test_name": "hardcoded_password_string"}
  ]
}`
	rep := parse(t, "Bandit", runner.StepResult{Stdout: out})

	wantFindings := []Finding{
		{Tool: "Bandit", Category: CategorySecurity, Severity: "MEDIUM",
			Message: "Possible hardcoded password: 'hunter2'", File: "app.py", Line: 7},
	}
	if diff := cmp.Diff(wantFindings, rep.Findings); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}
	want := []string{"Bandit: Address the identified security issues to secure your code."}
	if diff := cmp.Diff(want, rep.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestBanditClean(t *testing.T) {
	rep := parse(t, "Bandit", runner.StepResult{Stdout: `{"errors": [], "results": []}`})
	want := []string{"Bandit: No security issues found. Good job!"}
	if diff := cmp.Diff(want, rep.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestBlackWouldReformat(t *testing.T) {
	stderr := `would reformat app.py
would reformat utils.py

Oh no!
2 files would be reformatted, 1 file would be left unchanged.
`
	rep := parse(t, "Black", runner.StepResult{Stderr: stderr})

	if len(rep.Findings) != 2 {
		t.Fatalf("findings = %d, want 2", len(rep.Findings))
	}
	if rep.Findings[0].File != "app.py" || rep.Findings[1].File != "utils.py" {
		t.Errorf("finding files = %q, %q", rep.Findings[0].File, rep.Findings[1].File)
	}
	want := []string{"Black: Consider formatting your code for better readability."}
	if diff := cmp.Diff(want, rep.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestBlackClean(t *testing.T) {
	rep := parse(t, "Black", runner.StepResult{Stderr: "All done!\n3 files would be left unchanged.\n"})
	if len(rep.Findings) != 0 {
		t.Errorf("findings = %v, want none", rep.Findings)
	}
	want := []string{"Black: Code is properly formatted."}
	if diff := cmp.Diff(want, rep.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestPydocstylePairs(t *testing.T) {
	out := "app.py:1 at module level:\n" +
		"        D100: Missing docstring in public module\n" +
		"app.py:8 in public function `run`:\n" +
		"        D103: Missing docstring in public function\n"
	rep := parse(t, "Pydocstyle", runner.StepResult{Stdout: out})

	wantFindings := []Finding{
		{Tool: "Pydocstyle", Category: CategoryDocstring, Message: "D100: Missing docstring in public module", File: "app.py", Line: 1},
		{Tool: "Pydocstyle", Category: CategoryDocstring, Message: "D103: Missing docstring in public function", File: "app.py", Line: 8},
	}
	if diff := cmp.Diff(wantFindings, rep.Findings); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}
}

func TestPydocstyleClean(t *testing.T) {
	rep := parse(t, "Pydocstyle", runner.StepResult{Stdout: "\n"})
	if len(rep.Findings) != 0 {
		t.Errorf("findings = %v, want none", rep.Findings)
	}
	want := []string{"Pydocstyle: Documentation complies with style guidelines."}
	if diff := cmp.Diff(want, rep.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestLicensesCompliance(t *testing.T) {
	out := `[
  {"License": "MIT License", "Name": "requests", "Version": "2.31.0"},
  {"License": "UNKNOWN", "Name": "leftpad", "Version": "0.1.0"},
  {"License": "BSD License", "Name": "numpy", "Version": "1.26.0"},
  {"License": "Proprietary", "Name": "closedlib", "Version": "4.2.0"}
]`
	rep := parse(t, "Pip-Licenses", runner.StepResult{Stdout: out})

	if len(rep.Findings) != 2 {
		t.Fatalf("findings = %d, want 2:\n%+v", len(rep.Findings), rep.Findings)
	}
	if !strings.Contains(rep.Findings[0].Message, "leftpad 0.1.0") {
		t.Errorf("first finding = %q", rep.Findings[0].Message)
	}
	want := []string{"Pip-Licenses: Review licenses of leftpad, closedlib for compliance."}
	if diff := cmp.Diff(want, rep.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestLicensesAllCompliant(t *testing.T) {
	out := `[{"License": "Apache 2.0", "Name": "ray", "Version": "2.9.0"}]`
	rep := parse(t, "Pip-Licenses", runner.StepResult{Stdout: out})
	want := []string{"Pip-Licenses: All dependencies have compliant licenses."}
	if diff := cmp.Diff(want, rep.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestPytestWithCoverage(t *testing.T) {
	res := runner.StepResult{
		Stdout: "===== 1 failed, 2 passed in 0.12s =====\n",
		Report: []byte(`{"meta": {"coverage_percent": 72.5}, "files": {}}`),
	}
	rep := parse(t, "Pytest", res)

	if rep.Coverage == nil || *rep.Coverage != 72.5 {
		t.Fatalf("Coverage = %v, want 72.5", rep.Coverage)
	}
	want := []string{
		"Pytest: Tests executed. Review test results for failures.",
		"Coverage: Code coverage is 72.50%. Aim for at least 80%.",
	}
	if diff := cmp.Diff(want, rep.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestPytestGoodCoverage(t *testing.T) {
	res := runner.StepResult{
		Stdout: "===== 5 passed in 0.08s =====\n",
		Report: []byte(`{"meta": {"coverage_percent": 93.1}}`),
	}
	rep := parse(t, "Pytest", res)

	want := []string{
		"Pytest: Tests executed. Review test results for failures.",
		"Coverage: Good job! Code coverage is 93.10%.",
	}
	if diff := cmp.Diff(want, rep.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestPytestNoTestsRan(t *testing.T) {
	res := runner.StepResult{
		Stdout:        "===== No tests ran in 0.01s =====\n",
		ReportMissing: true,
	}
	rep := parse(t, "Pytest", res)

	if got := rep.Recommendations[0]; got != "Pytest: No tests found. Consider adding tests to improve code reliability." {
		t.Errorf("recommendation = %q", got)
	}
	if len(rep.Findings) != 1 || rep.Findings[0].Message != "Coverage report not found." {
		t.Errorf("findings = %+v, want the missing-report finding", rep.Findings)
	}
}

func TestPytestBadCoverageReport(t *testing.T) {
	res := runner.StepResult{
		Stdout: "===== 2 passed =====\n",
		Report: []byte("not json"),
	}
	rep := parse(t, "Pytest", res)

	if rep.Coverage != nil {
		t.Errorf("Coverage = %v, want nil", rep.Coverage)
	}
	if rep.ParseWarning == "" {
		t.Error("ParseWarning empty, want the report failure flagged")
	}
	if len(rep.Findings) != 1 || rep.Findings[0].Message != "Failed to parse coverage report." {
		t.Errorf("findings = %+v", rep.Findings)
	}
}

func TestPipAuditVulnerabilities(t *testing.T) {
	out := `[
  {"dependency": {"name": "urllib3", "version": "1.26.4"},
   "id": "PYSEC-2021-108", "fix_versions": ["1.26.5"],
   "description": "Catastrophic backtracking in URL authority parser"}
]`
	rep := parse(t, "Pip-Audit", runner.StepResult{Stdout: out})

	if len(rep.Findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(rep.Findings))
	}
	got := rep.Findings[0].Message
	for _, part := range []string{"urllib3", "1.26.4", "PYSEC-2021-108", "Catastrophic"} {
		if !strings.Contains(got, part) {
			t.Errorf("finding %q missing %q", got, part)
		}
	}
	want := []string{"Pip-Audit: Update dependencies to address vulnerabilities."}
	if diff := cmp.Diff(want, rep.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestPipAuditClean(t *testing.T) {
	rep := parse(t, "Pip-Audit", runner.StepResult{Stdout: "[]\n"})
	want := []string{"Pip-Audit: No vulnerabilities found in dependencies."}
	if diff := cmp.Diff(want, rep.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestFlake8Duplication(t *testing.T) {
	out := "./app.py:3:1: DUO102 use of insecure random module\n./utils.py:9:5: DUO105 use of exec\n"
	rep := parse(t, "Flake8", runner.StepResult{Stdout: out})

	wantFindings := []Finding{
		{Tool: "Flake8", Category: CategoryDuplication, Message: "DUO102 use of insecure random module", File: "./app.py", Line: 3},
		{Tool: "Flake8", Category: CategoryDuplication, Message: "DUO105 use of exec", File: "./utils.py", Line: 9},
	}
	if diff := cmp.Diff(wantFindings, rep.Findings); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}
}

func TestFlake8Clean(t *testing.T) {
	rep := parse(t, "Flake8", runner.StepResult{Stdout: ""})
	want := []string{"Flake8: No code duplication issues found."}
	if diff := cmp.Diff(want, rep.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestDocgenOutcome(t *testing.T) {
	ok := parse(t, "Documentation Generation", runner.StepResult{Stdout: "html saved to /work/demo/docs\n"})
	want := []string{"Documentation: Project documentation generated using pdoc."}
	if diff := cmp.Diff(want, ok.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}

	failed := parse(t, "Documentation Generation", runner.StepResult{Stderr: "Error: module not found\n"})
	want = []string{"Documentation: Failed to generate documentation."}
	if diff := cmp.Diff(want, failed.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestParseIsDeterministic(t *testing.T) {
	res := runner.StepResult{Stdout: `[
  {"type": "error", "line": 2, "path": "b.py", "message": "bad"},
  {"type": "warning", "line": 9, "path": "a.py", "message": "meh"}
]`}
	first := parse(t, "Pylint", res)
	second := parse(t, "Pylint", res)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Parse not deterministic (-first +second):\n%s", diff)
	}
}
