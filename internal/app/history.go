package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/samuel-lab/pyqa/internal/config"
	"github.com/samuel-lab/pyqa/internal/history"
	"github.com/samuel-lab/pyqa/internal/output"
	"github.com/samuel-lab/pyqa/internal/store"
)

var (
	historyLimit int
	historyLast  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show metric history and trends",
	Long: `History reads the metrics snapshots appended after each completed run
and renders them as a trend table, one row per run, with arrows marking
movement against the previous run.

With --last, the most recent run is shown in detail, enriched with the
recommendations and findings kept in the run archive.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of runs to show")
	historyCmd.Flags().BoolVar(&historyLast, "last", false, "Show the most recent run in detail")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	snaps, err := history.NewStore(cfg.HistoryFile).Load()
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if len(snaps) == 0 {
		if flagJSON {
			fmt.Println("[]")
			return nil
		}
		fmt.Println(output.StyleMuted.Render("No history yet. Run 'pyqa run <path>' first."))
		return nil
	}

	if historyLast {
		return renderLastRun(snaps[len(snaps)-1])
	}

	if historyLimit > 0 && len(snaps) > historyLimit {
		snaps = snaps[len(snaps)-historyLimit:]
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snaps)
	}

	renderTrendTable(snaps)
	return nil
}

// renderTrendTable prints snapshots oldest to newest, each metric cell
// carrying a trend arrow when its value moved since the previous run.
func renderTrendTable(snaps []history.Snapshot) {
	fmt.Println(output.Section("Metric History"))
	fmt.Println()

	tbl := output.NewTable("Date", "Lint", "Security", "Format", "Docs", "Dup", "Coverage", "Vulns")
	for i, s := range snaps {
		cells := []string{s.Date.Format("2006-01-02 15:04")}

		var prev []history.MetricValue
		if i > 0 {
			prev = snaps[i-1].Metrics()
		}
		for j, m := range s.Metrics() {
			var cell string
			if m.Name == "code_coverage" {
				cell = fmt.Sprintf("%.1f%%", m.Value)
			} else {
				cell = fmt.Sprintf("%.0f", m.Value)
			}
			if prev != nil {
				if delta := m.Value - prev[j].Value; delta != 0 {
					if m.Name == "code_coverage" {
						cell += " " + output.TrendArrowPercent(delta, m.HigherIsBetter)
					} else {
						cell += " " + output.TrendArrow(delta, m.HigherIsBetter)
					}
				}
			}
			cells = append(cells, cell)
		}
		tbl.AddRow(cells...)
	}
	tbl.Print()
}

// lastRunDetail is the --last view: the newest metrics snapshot, enriched
// with whatever the run archive holds for the newest archived run.
type lastRunDetail struct {
	Snapshot        history.Snapshot `json:"snapshot"`
	Project         string           `json:"project,omitempty"`
	Version         string           `json:"version,omitempty"`
	Recommendations []string         `json:"recommendations,omitempty"`
	Findings        []store.Finding  `json:"findings,omitempty"`
}

func renderLastRun(last history.Snapshot) error {
	detail := lastRunDetail{Snapshot: last}
	loadArchiveDetail(&detail)

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(detail)
	}

	fmt.Println(output.Section("Last Run"))
	fmt.Println()
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Date:"),
		output.StyleValue.Render(last.Date.Format("2006-01-02 15:04:05")))
	if detail.Project != "" {
		fmt.Printf(" %s %s\n",
			output.StyleLabel.Render("Project:"),
			output.StyleBold.Render(detail.Project))
	}
	for _, m := range last.Metrics() {
		if m.Name == "code_coverage" {
			fmt.Printf(" %s %s\n",
				output.StyleLabel.Render(m.Label+":"),
				output.CoverageBar(m.Value, 20))
			continue
		}
		fmt.Printf(" %s %s\n",
			output.StyleLabel.Render(m.Label+":"),
			output.StyleValue.Render(fmt.Sprintf("%.0f", m.Value)))
	}

	if len(detail.Recommendations) > 0 {
		fmt.Println(output.Section("Recommendations"))
		fmt.Println()
		for i, rec := range detail.Recommendations {
			fmt.Printf(" %2d. %s\n", i+1, rec)
		}
	}

	if len(detail.Findings) > 0 {
		fmt.Println(output.Section("Findings"))
		fmt.Println()
		tbl := output.NewTable("Tool", "Severity", "Location", "Message")
		shown := detail.Findings
		const maxRows = 30
		if len(shown) > maxRows {
			shown = shown[:maxRows]
		}
		for _, f := range shown {
			loc := f.File
			if f.Line > 0 {
				loc = fmt.Sprintf("%s:%d", f.File, f.Line)
			}
			tbl.AddRow(f.Tool, output.Severity(f.Severity), loc, truncate(f.Message, 70))
		}
		tbl.Print()
		if hidden := len(detail.Findings) - len(shown); hidden > 0 {
			fmt.Println(output.StyleMuted.Render(fmt.Sprintf(" ...and %d more", hidden)))
		}
	}
	return nil
}

// loadArchiveDetail fills in archive columns for the newest archived run.
// The archive is optional; on any error the snapshot renders alone.
func loadArchiveDetail(d *lastRunDetail) {
	db, err := store.Open(config.DBPath())
	if err != nil {
		return
	}
	defer func() { _ = db.Close() }()

	run, err := db.GetLatestRun()
	if err != nil || run == nil {
		return
	}
	d.Project = run.Project
	d.Version = run.Version
	if recs, err := db.GetRecommendations(run.ID); err == nil {
		for _, r := range recs {
			d.Recommendations = append(d.Recommendations, r.Text)
		}
	}
	if findings, err := db.GetFindings(run.ID); err == nil {
		d.Findings = findings
	}
}
