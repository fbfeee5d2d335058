package engine

import (
	"maps"
	"slices"
	"sort"
	"sync"
)

// Severity of a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Location points at a position inside an analyzed file. Path is relative
// to the project root and slash-separated.
type Location struct {
	Path   string `json:"path"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

// Finding is one issue reported by a rule.
type Finding struct {
	RuleSet  string   `json:"ruleSet"`
	RuleID   string   `json:"ruleId"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Location Location `json:"location"`

	// Signature identifies the finding independently of its line number,
	// so baselines survive unrelated edits.
	Signature string `json:"signature"`

	// Corrected is set when the rule rewrote the file to fix the issue.
	Corrected bool `json:"corrected,omitempty"`
}

// BaselineID is the key a baseline stores for this finding.
func (f Finding) BaselineID() string {
	return f.RuleID + ":" + f.Signature
}

// Detektion is the result of an analysis pass. It is safe for concurrent use
// while the engine populates it.
type Detektion struct {
	mu            sync.Mutex
	findings      map[string][]Finding
	metrics       map[string]int
	notifications []string
}

// NewDetektion returns an empty result.
func NewDetektion() *Detektion {
	return &Detektion{
		findings: make(map[string][]Finding),
		metrics:  make(map[string]int),
	}
}

// AddFindings appends findings under a rule set id. A rule set with no
// findings is still recorded.
func (d *Detektion) AddFindings(ruleSet string, findings ...Finding) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.findings[ruleSet] = append(d.findings[ruleSet], findings...)
}

// Findings returns a copy of the findings grouped by rule set id.
func (d *Detektion) Findings() map[string][]Finding {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[string][]Finding, len(d.findings))
	for k, v := range d.findings {
		out[k] = slices.Clone(v)
	}
	return out
}

// RuleSetIDs returns the recorded rule set ids in sorted order.
func (d *Detektion) RuleSetIDs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Sorted(maps.Keys(d.findings))
}

// AllFindings returns every finding ordered by path, line, column and rule.
func (d *Detektion) AllFindings() []Finding {
	d.mu.Lock()
	var all []Finding
	for _, fs := range d.findings {
		all = append(all, fs...)
	}
	d.mu.Unlock()

	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Location.Path != b.Location.Path {
			return a.Location.Path < b.Location.Path
		}
		if a.Location.Line != b.Location.Line {
			return a.Location.Line < b.Location.Line
		}
		if a.Location.Column != b.Location.Column {
			return a.Location.Column < b.Location.Column
		}
		return a.RuleID < b.RuleID
	})
	return all
}

// IssueCount is the number of findings that still need attention.
// Auto-corrected findings are not counted.
func (d *Detektion) IssueCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, fs := range d.findings {
		for _, f := range fs {
			if !f.Corrected {
				n++
			}
		}
	}
	return n
}

// AddMetric adds delta to the named project metric.
func (d *Detektion) AddMetric(key string, delta int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics[key] += delta
}

// Metric returns a project metric.
func (d *Detektion) Metric(key string) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.metrics[key]
	return v, ok
}

// Metrics returns a copy of all project metrics.
func (d *Detektion) Metrics() map[string]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return maps.Clone(d.metrics)
}

// AddNotification records a message for the user that is not a finding.
func (d *Detektion) AddNotification(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifications = append(d.notifications, msg)
}

// Notifications returns the recorded notifications in order.
func (d *Detektion) Notifications() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.notifications)
}

// Filter returns a new result holding only the findings keep accepts.
// Metrics and notifications are carried over; rule set ids are kept even
// when all their findings are dropped.
func (d *Detektion) Filter(keep func(Finding) bool) *Detektion {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := NewDetektion()
	for id, fs := range d.findings {
		kept := make([]Finding, 0, len(fs))
		for _, f := range fs {
			if keep(f) {
				kept = append(kept, f)
			}
		}
		out.findings[id] = kept
	}
	maps.Copy(out.metrics, d.metrics)
	out.notifications = slices.Clone(d.notifications)
	return out
}
