package report

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"slices"

	"detekt/internal/engine"
)

// writeConsole prints findings grouped by rule set, notifications and the
// project metrics.
func writeConsole(w io.Writer, result *engine.Detektion) error {
	bw := bufio.NewWriter(w)
	findings := result.Findings()

	for _, id := range result.RuleSetIDs() {
		fs := openFindings(findings[id])
		if len(fs) == 0 {
			continue
		}
		fmt.Fprintf(bw, "%s - %d issues\n", id, len(fs))
		for _, f := range fs {
			fmt.Fprintf(bw, "\t%s - %s - %s\n", f.RuleID, location(f), f.Message)
		}
	}

	for _, n := range result.Notifications() {
		fmt.Fprintln(bw, n)
	}

	if metrics := result.Metrics(); len(metrics) > 0 {
		fmt.Fprintln(bw, "Project metrics:")
		for _, k := range slices.Sorted(maps.Keys(metrics)) {
			fmt.Fprintf(bw, "\t%s: %d\n", k, metrics[k])
		}
	}
	return bw.Flush()
}

// writeText writes one line per open finding.
func writeText(w io.Writer, result *engine.Detektion) error {
	bw := bufio.NewWriter(w)
	for _, f := range openFindings(result.AllFindings()) {
		fmt.Fprintf(bw, "%s - %s - Signature=%s\n", f.RuleID, location(f), f.Signature)
	}
	return bw.Flush()
}

func location(f engine.Finding) string {
	if f.Location.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", f.Location.Path, f.Location.Line, f.Location.Column)
	}
	return fmt.Sprintf("%s:%d", f.Location.Path, f.Location.Line)
}

func openFindings(fs []engine.Finding) []engine.Finding {
	out := make([]engine.Finding, 0, len(fs))
	for _, f := range fs {
		if !f.Corrected {
			out = append(out, f)
		}
	}
	return out
}
