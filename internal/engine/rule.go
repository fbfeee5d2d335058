package engine

import (
	"detekt/internal/config"
	"detekt/internal/pathfilter"
)

// Rule inspects one file and reports findings.
type Rule interface {
	ID() string
	Description() string
	Visit(file *File) []Finding
}

// RuleSet is a named group of rules sharing one configuration subtree.
type RuleSet struct {
	ID    string
	Rules []Rule
	// Excludes skips the whole rule set for matching files.
	Excludes []pathfilter.PathFilter
}

// Provider instantiates a rule set from its configuration subtree. It
// returns nil when the rule set is switched off.
type Provider interface {
	ID() string
	Instance(cfg config.Config) *RuleSet
}

// FileProcessListener observes an analysis pass. Implementations must be
// safe for concurrent OnProcess calls when the run is parallel.
type FileProcessListener interface {
	OnStart(files []*File)
	OnProcess(file *File)
	OnFinish(files []*File, result *Detektion)
}
