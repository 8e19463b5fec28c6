// Package catalog declares the closed set of analysis tools pyqa can run.
//
// The table lives in catalog.yaml, embedded at build time and decoded once
// during init. The declared order is the run order; nothing downstream may
// reorder it.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samuel-lab/pyqa/internal/config"
)

//go:embed catalog.yaml
var rawCatalog []byte

// Tool describes one entry of the analysis catalog.
type Tool struct {
	// Name is the display name and selection key (case-insensitive).
	Name string `yaml:"name"`
	// Step is the logical progress step this tool contributes to. Several
	// tools may share a step; the step completes once.
	Step string `yaml:"step"`
	// Executable is the binary looked up on PATH.
	Executable string `yaml:"executable"`
	// StartMessage is emitted before the tool is launched.
	StartMessage string `yaml:"start_message"`
	// Args is the argument template, without the executable itself.
	Args []string `yaml:"args"`
	// ToleratesNonzero marks tools whose non-zero exit still carries
	// parseable output (linters signalling issue counts via exit codes).
	ToleratesNonzero bool `yaml:"tolerates_nonzero"`
	// Fixer marks in-place fixers that only run when autofix is enabled
	// and report via FixMessage instead of an output adapter.
	Fixer bool `yaml:"fixer"`
	// FixArgs, when present on a non-fixer, is a second in-place pass run
	// after the check when autofix is enabled.
	FixArgs         []string `yaml:"fix_args"`
	FixStartMessage string   `yaml:"fix_start_message"`
	FixMessage      string   `yaml:"fix_message"`
	// Report marks tools that write a secondary JSON report file the
	// engine must collect after the run.
	Report bool `yaml:"report"`
}

var (
	tools  []Tool
	byName map[string]Tool
)

func init() {
	var doc struct {
		Tools []Tool `yaml:"tools"`
	}
	if err := yaml.Unmarshal(rawCatalog, &doc); err != nil {
		panic(fmt.Sprintf("catalog: invalid embedded catalog.yaml: %v", err))
	}
	tools = doc.Tools
	byName = make(map[string]Tool, len(tools))
	for _, t := range tools {
		byName[strings.ToLower(t.Name)] = t
	}
}

// Tools returns every catalog entry in declared run order.
func Tools() []Tool {
	out := make([]Tool, len(tools))
	copy(out, tools)
	return out
}

// Names returns the tool names in declared run order.
func Names() []string {
	out := make([]string, len(tools))
	for i, t := range tools {
		out[i] = t.Name
	}
	return out
}

// Lookup finds a tool by name, case-insensitively.
func Lookup(name string) (Tool, bool) {
	t, ok := byName[strings.ToLower(name)]
	return t, ok
}

// Select resolves names against the catalog and returns the matching tools
// in declared run order, regardless of input order. Duplicate names collapse;
// an unknown name is an error.
func Select(names []string) ([]Tool, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		t, ok := Lookup(n)
		if !ok {
			return nil, fmt.Errorf("unknown tool %q", n)
		}
		want[t.Name] = true
	}
	var out []Tool
	for _, t := range tools {
		if want[t.Name] {
			out = append(out, t)
		}
	}
	return out, nil
}

// Steps returns the distinct logical steps among the given tools, in
// first-appearance order.
func Steps(ts []Tool) []string {
	seen := make(map[string]bool, len(ts))
	var out []string
	for _, t := range ts {
		if t.Step == "" || seen[t.Step] {
			continue
		}
		seen[t.Step] = true
		out = append(out, t.Step)
	}
	return out
}

// Vars carries the per-run values substituted into argument templates.
type Vars struct {
	Project    string
	ReportPath string
	Settings   config.Settings
}

// Arguments renders the tool's argument template for one run.
func (t Tool) Arguments(v Vars) []string {
	return expandArgs(t.Args, v)
}

// FixArguments renders the in-place fix template for tools that carry one.
func (t Tool) FixArguments(v Vars) []string {
	return expandArgs(t.FixArgs, v)
}

// expandArgs substitutes ${VAR} placeholders. An argument that expands to
// the empty string is dropped, which is how optional flags are declared.
func expandArgs(args []string, v Vars) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		expanded := os.Expand(a, func(key string) string {
			switch key {
			case "PROJECT":
				return v.Project
			case "DOCS_DIR":
				return filepath.Join(v.Project, "docs")
			case "REPORT":
				return v.ReportPath
			case "FAIL_UNDER":
				return strconv.Itoa(v.Settings.PylintFailUnder)
			case "CONFIDENCE":
				return v.Settings.Confidence()
			case "MYPY_IGNORE":
				if v.Settings.MypyIgnoreMissingImports {
					return "--ignore-missing-imports"
				}
				return ""
			}
			return ""
		})
		if expanded == "" && a != "" {
			continue
		}
		out = append(out, expanded)
	}
	return out
}
