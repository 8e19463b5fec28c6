package app

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/samuel-lab/pyqa/internal/catalog"
	"github.com/samuel-lab/pyqa/internal/output"
	"github.com/samuel-lab/pyqa/internal/runner"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List analysis tools and check availability",
	Long: `Tools lists the analysis battery in execution order, the logical step
each tool contributes to, and whether its executable is on PATH.`,
	RunE: runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

// toolInfo is one row of the tools listing.
type toolInfo struct {
	Name       string `json:"name"`
	Step       string `json:"step"`
	Executable string `json:"executable"`
	Fixer      bool   `json:"fixer"`
	Available  bool   `json:"available"`
}

func runTools(cmd *cobra.Command, args []string) error {
	all := catalog.Tools()
	infos := make([]toolInfo, len(all))

	// PATH lookups are independent; probe them concurrently.
	var g errgroup.Group
	for i, tool := range all {
		i, tool := i, tool
		g.Go(func() error {
			infos[i] = toolInfo{
				Name:       tool.Name,
				Step:       tool.Step,
				Executable: tool.Executable,
				Fixer:      tool.Fixer,
				Available:  runner.IsAvailable(tool.Executable),
			}
			return nil
		})
	}
	_ = g.Wait()

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	fmt.Println(output.Section("Analysis Tools"))
	fmt.Println()

	tbl := output.NewTable("Tool", "Step", "Executable", "Status")
	available := 0
	for _, info := range infos {
		status := output.StyleError.Render("missing")
		if info.Available {
			status = output.StyleSuccess.Render("available")
			available++
		}
		name := info.Name
		if info.Fixer {
			name += output.StyleMuted.Render(" (fixer)")
		}
		tbl.AddRow(name, info.Step, info.Executable, status)
	}
	tbl.Print()

	fmt.Println()
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Available:"),
		output.StyleValue.Render(fmt.Sprintf("%d of %d", available, len(infos))))

	if available < len(infos) {
		var missing []string
		for _, info := range infos {
			if !info.Available {
				missing = append(missing, info.Executable)
			}
		}
		fmt.Printf(" %s\n", output.StyleMuted.Render(
			fmt.Sprintf("Install missing tools with: pip install %s", strings.Join(missing, " "))))
	}
	return nil
}
