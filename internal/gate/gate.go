// Package gate turns the issue count of a run into a pass/fail verdict.
package gate

import (
	"fmt"

	"detekt/internal/config"
	"detekt/internal/engine"
)

// DefaultMaxIssues applies when build.maxIssues is not configured: any
// issue fails the build.
const DefaultMaxIssues = 0

const (
	buildKey     = "build"
	maxIssuesKey = "maxIssues"
	weightsKey   = "weights"
)

// Verdict is the outcome of the gate. A failing verdict is not an error.
type Verdict struct {
	// Count is the weighted number of open issues.
	Count int
	// Threshold is the configured maximum; negative disables the gate.
	Threshold int
}

// Passed reports whether the run stays within the threshold.
func (v Verdict) Passed() bool {
	return v.Threshold < 0 || v.Count <= v.Threshold
}

// Failed is the negation of Passed.
func (v Verdict) Failed() bool { return !v.Passed() }

// Disabled reports whether a negative threshold switched the gate off.
func (v Verdict) Disabled() bool { return v.Threshold < 0 }

func (v Verdict) String() string {
	switch {
	case v.Disabled():
		return fmt.Sprintf("%d weighted issues, build failure threshold disabled", v.Count)
	case v.Passed():
		return fmt.Sprintf("%d weighted issues, within the threshold of %d", v.Count, v.Threshold)
	default:
		return fmt.Sprintf("Build failed with %d weighted issues (threshold: %d)", v.Count, v.Threshold)
	}
}

// Evaluate reads build.maxIssues and build.weights from cfg and counts the
// open issues of result. Each issue weighs 1 unless a weight is configured
// for its rule id or, failing that, its rule set id.
func Evaluate(cfg config.Config, result *engine.Detektion) Verdict {
	build := cfg.SubConfig(buildKey)
	threshold := config.Int(build, maxIssuesKey, DefaultMaxIssues)
	weights := config.IntMap(build, weightsKey)

	count := 0
	for _, f := range result.AllFindings() {
		if f.Corrected {
			continue
		}
		count += weightOf(weights, f)
	}
	return Verdict{Count: count, Threshold: threshold}
}

func weightOf(weights map[string]int, f engine.Finding) int {
	if w, ok := weights[f.RuleID]; ok {
		return w
	}
	if w, ok := weights[f.RuleSet]; ok {
		return w
	}
	return 1
}
