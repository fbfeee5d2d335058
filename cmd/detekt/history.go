package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"detekt/internal/paths"
	"detekt/internal/slogutil"
	"detekt/internal/storage"
)

func newHistoryCmd(v *viper.Viper, stdout io.Writer) *cobra.Command {
	var (
		limit    int
		jsonFlag bool
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded runs",
		Long: `Show runs recorded with --history, newest first, or the details of one run.

Examples:
  detekt history
  detekt history --limit 5 --json
  detekt history 0b6f0d5e-7d0a-4c43-9a52-1f8a4c2f9e11`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := v.GetString(flagInput)
			dbPath := paths.HistoryDBPath(root)
			if _, err := os.Stat(dbPath); os.IsNotExist(err) {
				fmt.Fprintln(stdout, "No runs recorded.")
				fmt.Fprintln(stdout, "Record runs with: detekt --history")
				return nil
			}

			db, err := storage.Open(dbPath, slogutil.NewDiscardLogger())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if len(args) == 1 {
				run, err := db.GetRun(args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("no run with id %s", args[0])
				}
				return printRun(stdout, run, jsonFlag)
			}

			runs, err := db.ListRuns(limit)
			if err != nil {
				return err
			}
			return printRuns(stdout, runs, jsonFlag)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Output as JSON")
	return cmd
}

// RunCLI is the printed form of a recorded run.
type RunCLI struct {
	ID            string         `json:"id"`
	StartedAt     string         `json:"startedAt"`
	DurationMs    int64          `json:"durationMs"`
	ProjectRoot   string         `json:"projectRoot"`
	ConfigKind    string         `json:"configKind"`
	IssueCount    int            `json:"issueCount"`
	WeightedCount int            `json:"weightedCount"`
	Threshold     int            `json:"threshold"`
	Passed        bool           `json:"passed"`
	ToolVersion   string         `json:"toolVersion"`
	RuleSets      map[string]int `json:"ruleSets,omitempty"`
	Metrics       map[string]int `json:"metrics,omitempty"`
}

func convertRun(r *storage.Run) RunCLI {
	return RunCLI{
		ID:            r.ID,
		StartedAt:     r.StartedAt.Format(time.RFC3339),
		DurationMs:    r.Duration.Milliseconds(),
		ProjectRoot:   r.ProjectRoot,
		ConfigKind:    r.ConfigKind,
		IssueCount:    r.IssueCount,
		WeightedCount: r.WeightedCount,
		Threshold:     r.Threshold,
		Passed:        r.Passed,
		ToolVersion:   r.ToolVersion,
		RuleSets:      r.RuleSets,
		Metrics:       r.Metrics,
	}
}

func printRuns(w io.Writer, runs []*storage.Run, asJSON bool) error {
	if asJSON {
		out := make([]RunCLI, 0, len(runs))
		for _, r := range runs {
			out = append(out, convertRun(r))
		}
		return writeJSON(w, out)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tDURATION\tISSUES\tWEIGHTED\tTHRESHOLD\tRESULT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%dms\t%d\t%d\t%s\t%s\n",
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Duration.Milliseconds(),
			r.IssueCount,
			r.WeightedCount,
			thresholdString(r.Threshold),
			resultString(r.Passed),
		)
	}
	return tw.Flush()
}

func printRun(w io.Writer, r *storage.Run, asJSON bool) error {
	if asJSON {
		return writeJSON(w, convertRun(r))
	}

	fmt.Fprintf(w, "Run %s\n", r.ID)
	fmt.Fprintf(w, "  Started:   %s\n", r.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  Duration:  %dms\n", r.Duration.Milliseconds())
	fmt.Fprintf(w, "  Project:   %s\n", r.ProjectRoot)
	fmt.Fprintf(w, "  Config:    %s\n", r.ConfigKind)
	fmt.Fprintf(w, "  Version:   %s\n", r.ToolVersion)
	fmt.Fprintf(w, "  Issues:    %d (weighted %d, threshold %s)\n", r.IssueCount, r.WeightedCount, thresholdString(r.Threshold))
	fmt.Fprintf(w, "  Result:    %s\n", resultString(r.Passed))

	printCounts(w, "Rule sets", r.RuleSets)
	printCounts(w, "Metrics", r.Metrics)
	return nil
}

func printCounts(w io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %d\n", k, counts[k])
	}
}

func thresholdString(t int) string {
	if t < 0 {
		return "off"
	}
	return fmt.Sprint(t)
}

func resultString(passed bool) string {
	if passed {
		return "passed"
	}
	return "failed"
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
