package rules

import (
	"strings"

	"detekt/internal/config"
	"detekt/internal/engine"
)

const formattingID = "formatting"

// FormattingProvider builds the formatting rule set. A rule corrects what
// it finds only when both the rule set and the rule enable autoCorrect.
type FormattingProvider struct{}

func (FormattingProvider) ID() string { return formattingID }

func (FormattingProvider) Instance(cfg config.Config) *engine.RuleSet {
	if !config.IsActive(cfg, true) {
		return nil
	}
	setCorrect := config.Bool(cfg, config.KeyAutoCorrect, false)
	correct := func(c config.Config) bool {
		return setCorrect && config.Bool(c, config.KeyAutoCorrect, true)
	}

	rs := &engine.RuleSet{ID: formattingID, Excludes: engine.ExcludesFrom(cfg)}
	if c := cfg.SubConfig("Indentation"); config.IsActive(c, true) {
		rs.Rules = append(rs.Rules, Indentation{
			base:        newBase(formattingID, "Indentation", "Reports indentation that mixes tabs and spaces", c),
			AutoCorrect: correct(c),
			UseTabs:     config.Bool(c, config.KeyUseTabs, false),
			IndentSize:  max(config.Int(c, "indentSize", 4), 1),
		})
	}
	if c := cfg.SubConfig("NoTrailingSpaces"); config.IsActive(c, true) {
		rs.Rules = append(rs.Rules, NoTrailingSpaces{
			base:        newBase(formattingID, "NoTrailingSpaces", "Reports trailing whitespace", c),
			AutoCorrect: correct(c),
		})
	}
	if c := cfg.SubConfig("FinalNewline"); config.IsActive(c, true) {
		rs.Rules = append(rs.Rules, FinalNewline{
			base:        newBase(formattingID, "FinalNewline", "Reports files that do not end with a newline", c),
			AutoCorrect: correct(c),
		})
	}
	return rs
}

// Indentation requires leading whitespace to be spaces only, or tabs
// followed by alignment spaces when UseTabs is set.
type Indentation struct {
	base
	AutoCorrect bool
	UseTabs     bool
	IndentSize  int
}

func (r Indentation) Visit(file *engine.File) []engine.Finding {
	if r.skips(file) {
		return nil
	}
	msg := "Unexpected tab character(s)"
	if r.UseTabs {
		msg = "Unexpected space character(s)"
	}

	lines := file.Lines()
	var out []engine.Finding
	changed := false

	for i, line := range lines {
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		col := r.misplaced(indent)
		if col < 0 {
			continue
		}

		f := r.finding(file, i+1, col+1, msg, strings.TrimSpace(line))
		if r.AutoCorrect {
			lines[i] = r.reindent(indent) + line[len(indent):]
			f.Corrected = true
			changed = true
		}
		out = append(out, f)
	}

	if changed {
		rewriteLines(file, lines, endsWithNewline(file))
	}
	return out
}

// misplaced returns the offset of the first wrong indent character, or -1.
// With tabs, fewer than IndentSize alignment spaces may follow the tabs.
func (r Indentation) misplaced(indent string) int {
	if !r.UseTabs {
		return strings.Index(indent, "\t")
	}
	spaces := strings.TrimLeft(indent, "\t")
	if strings.Contains(spaces, "\t") || len(spaces) >= r.IndentSize {
		return len(indent) - len(spaces)
	}
	return -1
}

func (r Indentation) reindent(indent string) string {
	width := 0
	for _, c := range indent {
		if c == '\t' {
			width += r.IndentSize
		} else {
			width++
		}
	}
	if !r.UseTabs {
		return strings.Repeat(" ", width)
	}
	return strings.Repeat("\t", width/r.IndentSize) + strings.Repeat(" ", width%r.IndentSize)
}

// NoTrailingSpaces reports lines ending in blanks.
type NoTrailingSpaces struct {
	base
	AutoCorrect bool
}

func (r NoTrailingSpaces) Visit(file *engine.File) []engine.Finding {
	if r.skips(file) {
		return nil
	}
	lines := file.Lines()
	var out []engine.Finding
	changed := false

	for i, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == line {
			continue
		}
		f := r.finding(file, i+1, len(trimmed)+1, "Trailing space(s)", strings.TrimSpace(line))
		if r.AutoCorrect {
			lines[i] = trimmed
			f.Corrected = true
			changed = true
		}
		out = append(out, f)
	}

	if changed {
		rewriteLines(file, lines, endsWithNewline(file))
	}
	return out
}

// FinalNewline reports a non-empty file without a trailing newline.
type FinalNewline struct {
	base
	AutoCorrect bool
}

func (r FinalNewline) Visit(file *engine.File) []engine.Finding {
	if r.skips(file) {
		return nil
	}
	content := file.Content()
	if len(content) == 0 || content[len(content)-1] == '\n' {
		return nil
	}

	f := r.finding(file, len(file.Lines()), 1, "File must end with a newline (\\n)")
	if r.AutoCorrect {
		file.Rewrite(append(append([]byte(nil), content...), file.LineEnding()...))
		f.Corrected = true
	}
	return []engine.Finding{f}
}
