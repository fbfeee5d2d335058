package report

import (
	"encoding/json"
	"io"

	"detekt/internal/engine"
	"detekt/internal/version"
)

type jsonReport struct {
	Tool          string           `json:"tool"`
	Version       string           `json:"version"`
	RunID         string           `json:"runId,omitempty"`
	IssueCount    int              `json:"issueCount"`
	Metrics       map[string]int   `json:"metrics"`
	Notifications []string         `json:"notifications,omitempty"`
	Findings      []engine.Finding `json:"findings"`
}

func writeJSON(w io.Writer, result *engine.Detektion, runID string) error {
	findings := result.AllFindings()
	if findings == nil {
		findings = []engine.Finding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		Tool:          version.Name,
		Version:       version.Version,
		RunID:         runID,
		IssueCount:    result.IssueCount(),
		Metrics:       result.Metrics(),
		Notifications: result.Notifications(),
		Findings:      findings,
	})
}
