package catalog

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/samuel-lab/pyqa/internal/config"
)

func TestDeclaredRunOrder(t *testing.T) {
	want := []string{
		"Pylint", "Mypy", "Radon", "Bandit", "Black", "Pydocstyle",
		"Pip-Licenses", "Pytest", "Pip-Audit", "Autopep8", "Isort",
		"Flake8", "Documentation Generation",
	}
	if diff := cmp.Diff(want, Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectPreservesRunOrder(t *testing.T) {
	got, err := Select([]string{"flake8", "Pylint", "BANDIT"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	var names []string
	for _, tool := range got {
		names = append(names, tool.Name)
	}
	want := []string{"Pylint", "Bandit", "Flake8"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("Select order mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectCollapsesDuplicates(t *testing.T) {
	got, err := Select([]string{"Mypy", "mypy", "Mypy"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Mypy" {
		t.Errorf("Select returned %v, want a single Mypy entry", got)
	}
}

func TestSelectUnknownTool(t *testing.T) {
	_, err := Select([]string{"Pylint", "eslint"})
	if err == nil {
		t.Fatal("Select accepted an unknown tool")
	}
	if !strings.Contains(err.Error(), "eslint") {
		t.Errorf("error %q does not name the unknown tool", err)
	}
}

func TestStepsAreDistinct(t *testing.T) {
	steps := Steps(Tools())
	want := []string{
		"linting", "type checking", "complexity", "security", "formatting",
		"documentation", "license", "testing", "dependency audit",
		"code duplication", "documentation generation",
	}
	if diff := cmp.Diff(want, steps); diff != "" {
		t.Errorf("Steps mismatch (-want +got):\n%s", diff)
	}

	// Black, Autopep8 and Isort share the formatting step.
	count := 0
	for _, s := range steps {
		if s == "formatting" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("formatting appears %d times, want 1", count)
	}
}

func TestArgumentsExpansion(t *testing.T) {
	set := config.DefaultSettings
	v := Vars{Project: "/work/demo", ReportPath: "/tmp/cov.json", Settings: set}

	tests := []struct {
		tool string
		want []string
	}{
		{"Pylint", []string{"/work/demo", "--output-format=json", "--fail-under=5"}},
		{"Mypy", []string{"/work/demo", "--pretty", "--ignore-missing-imports"}},
		{"Radon", []string{"cc", ".", "-s", "-j"}},
		{"Bandit", []string{"-r", ".", "-f", "json", "--confidence-level", "medium"}},
		{"Pytest", []string{"--cov=.", "--cov-report=term-missing", "--cov-report=json:/tmp/cov.json"}},
		{"Documentation Generation", []string{"--html", "/work/demo", "--output-dir", "/work/demo/docs", "--force"}},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			tool, ok := Lookup(tt.tool)
			if !ok {
				t.Fatalf("Lookup(%q): not found", tt.tool)
			}
			if diff := cmp.Diff(tt.want, tool.Arguments(v)); diff != "" {
				t.Errorf("Arguments mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMypyIgnoreFlagDropped(t *testing.T) {
	set := config.DefaultSettings
	set.MypyIgnoreMissingImports = false
	mypy, _ := Lookup("Mypy")
	got := mypy.Arguments(Vars{Project: "/work/demo", Settings: set})
	want := []string{"/work/demo", "--pretty"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Arguments mismatch (-want +got):\n%s", diff)
	}
}

func TestFlake8FormatStringSurvivesExpansion(t *testing.T) {
	flake8, _ := Lookup("Flake8")
	got := flake8.Arguments(Vars{Project: "/work/demo", Settings: config.DefaultSettings})
	found := false
	for _, a := range got {
		if strings.Contains(a, "%(path)s") {
			found = true
		}
	}
	if !found {
		t.Errorf("flake8 format argument lost in expansion: %v", got)
	}
}

func TestFixerShape(t *testing.T) {
	for _, name := range []string{"Autopep8", "Isort"} {
		tool, _ := Lookup(name)
		if !tool.Fixer {
			t.Errorf("%s: Fixer = false, want true", name)
		}
		if tool.Step != "formatting" {
			t.Errorf("%s: Step = %q, want formatting", name, tool.Step)
		}
		if tool.FixMessage == "" {
			t.Errorf("%s: missing fix message", name)
		}
	}

	black, _ := Lookup("Black")
	if black.Fixer {
		t.Error("Black: Fixer = true, want false (check pass plus optional fix pass)")
	}
	got := black.FixArguments(Vars{Project: "/work/demo", Settings: config.DefaultSettings})
	if diff := cmp.Diff([]string{"."}, got); diff != "" {
		t.Errorf("Black fix arguments mismatch (-want +got):\n%s", diff)
	}
}

func TestEveryToolIsComplete(t *testing.T) {
	for _, tool := range Tools() {
		if tool.Step == "" {
			t.Errorf("%s: empty step", tool.Name)
		}
		if tool.Executable == "" {
			t.Errorf("%s: empty executable", tool.Name)
		}
		if tool.StartMessage == "" {
			t.Errorf("%s: empty start message", tool.Name)
		}
		if len(tool.Args) == 0 {
			t.Errorf("%s: empty argument template", tool.Name)
		}
	}
}
