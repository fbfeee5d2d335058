// Package rules provides the default rule sets: complexity, driven by the
// tree-sitter metrics, and formatting, which can correct what it finds.
package rules

import (
	"strings"

	"detekt/internal/config"
	"detekt/internal/engine"
	"detekt/internal/pathfilter"
)

// Defaults returns the providers of the default rule sets.
func Defaults() []engine.Provider {
	return []engine.Provider{ComplexityProvider{}, FormattingProvider{}}
}

// base carries what every configured rule shares.
type base struct {
	ruleSet     string
	id          string
	description string
	excludes    []pathfilter.PathFilter
}

func newBase(ruleSet, id, description string, cfg config.Config) base {
	return base{
		ruleSet:     ruleSet,
		id:          id,
		description: description,
		excludes:    engine.ExcludesFrom(cfg),
	}
}

func (b base) ID() string          { return b.id }
func (b base) Description() string { return b.description }

func (b base) skips(file *engine.File) bool {
	return pathfilter.AnyMatches(b.excludes, file.RelPath)
}

func (b base) finding(file *engine.File, line, col int, msg string, sig ...string) engine.Finding {
	return engine.Finding{
		RuleSet:   b.ruleSet,
		RuleID:    b.id,
		Message:   msg,
		Severity:  engine.SeverityWarning,
		Location:  engine.Location{Path: file.RelPath, Line: line, Column: col},
		Signature: engine.Signature(file.RelPath, sig...),
	}
}

// rewriteLines replaces the file content with lines, keeping the file's
// line terminator and a final newline when the original had one.
func rewriteLines(file *engine.File, lines []string, finalNewline bool) {
	eol := file.LineEnding()
	content := strings.Join(lines, eol)
	if finalNewline {
		content += eol
	}
	file.Rewrite([]byte(content))
}

func endsWithNewline(file *engine.File) bool {
	c := file.Content()
	return len(c) > 0 && c[len(c)-1] == '\n'
}
