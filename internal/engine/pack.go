package engine

import (
	"strings"

	"detekt/internal/config"
	"detekt/internal/pathfilter"
	"detekt/internal/rulepack"
)

// lineRule adapts a rule pack rule to Rule.
type lineRule struct {
	ruleSet string
	rule    *rulepack.Rule
}

func (r lineRule) ID() string          { return r.rule.ID }
func (r lineRule) Description() string { return r.rule.Description }

func (r lineRule) Visit(file *File) []Finding {
	var out []Finding
	for i, line := range file.Lines() {
		col := r.rule.Match(line)
		if col == 0 {
			continue
		}
		out = append(out, Finding{
			RuleSet:   r.ruleSet,
			RuleID:    r.rule.ID,
			Message:   r.rule.Text(),
			Severity:  Severity(r.rule.Severity),
			Location:  Location{Path: file.RelPath, Line: i + 1, Column: col},
			Signature: Signature(file.RelPath, strings.TrimSpace(line)),
		})
	}
	return out
}

// packRuleSet builds the rule set of a pack. The configuration subtree named
// after the pack id may switch the pack or single rules on and off.
func packRuleSet(p *rulepack.Pack, cfg config.Config) *RuleSet {
	setCfg := cfg.SubConfig(p.ID)
	if !config.IsActive(setCfg, true) {
		return nil
	}

	rs := &RuleSet{ID: p.ID, Excludes: ExcludesFrom(setCfg)}
	for i := range p.Rules {
		r := &p.Rules[i]
		if config.IsActive(setCfg.SubConfig(r.ID), r.IsActive()) {
			rs.Rules = append(rs.Rules, lineRule{ruleSet: p.ID, rule: r})
		}
	}
	return rs
}

// Signature builds a line-independent finding signature.
func Signature(relPath string, parts ...string) string {
	return strings.Join(append([]string{relPath}, parts...), "$")
}

// ExcludesFrom compiles the excludes list of a rule set configuration.
// Blank patterns are ignored.
func ExcludesFrom(cfg config.Config) []pathfilter.PathFilter {
	var out []pathfilter.PathFilter
	for _, pattern := range config.StringSlice(cfg, config.KeyExcludes, nil) {
		if f, err := pathfilter.Compile(pattern); err == nil {
			out = append(out, f)
		}
	}
	return out
}
