package rules

import (
	"fmt"

	"detekt/internal/config"
	"detekt/internal/engine"
)

const complexityID = "complexity"

// ComplexityProvider builds the complexity rule set.
type ComplexityProvider struct{}

func (ComplexityProvider) ID() string { return complexityID }

func (ComplexityProvider) Instance(cfg config.Config) *engine.RuleSet {
	if !config.IsActive(cfg, true) {
		return nil
	}
	rs := &engine.RuleSet{ID: complexityID, Excludes: engine.ExcludesFrom(cfg)}

	if c := cfg.SubConfig("ComplexMethod"); config.IsActive(c, true) {
		rs.Rules = append(rs.Rules, ComplexMethod{
			base:      newBase(complexityID, "ComplexMethod", "Reports functions with a high cyclomatic complexity", c),
			Threshold: config.Int(c, config.KeyThreshold, 15),
		})
	}
	if c := cfg.SubConfig("LongMethod"); config.IsActive(c, true) {
		rs.Rules = append(rs.Rules, LongMethod{
			base:      newBase(complexityID, "LongMethod", "Reports functions that span too many lines", c),
			Threshold: config.Int(c, config.KeyThreshold, 60),
		})
	}
	if c := cfg.SubConfig("LargeFile"); config.IsActive(c, true) {
		rs.Rules = append(rs.Rules, LargeFile{
			base:      newBase(complexityID, "LargeFile", "Reports files with too many lines of code", c),
			Threshold: config.Int(c, config.KeyThreshold, 600),
		})
	}
	return rs
}

// ComplexMethod reports functions whose cyclomatic complexity reaches
// Threshold.
type ComplexMethod struct {
	base
	Threshold int
}

func (r ComplexMethod) Visit(file *engine.File) []engine.Finding {
	if r.skips(file) {
		return nil
	}
	funcs, err := file.Functions()
	if err != nil {
		return nil
	}
	var out []engine.Finding
	for _, fn := range funcs {
		if fn.Cyclomatic < r.Threshold {
			continue
		}
		msg := fmt.Sprintf("The function %s appears to be complex based on its cyclomatic complexity (%d). "+
			"Defined complexity threshold for methods is set to '%d'", fn.Name, fn.Cyclomatic, r.Threshold)
		out = append(out, r.finding(file, fn.StartLine, 1, msg, fn.Name))
	}
	return out
}

// LongMethod reports functions spanning Threshold lines or more.
type LongMethod struct {
	base
	Threshold int
}

func (r LongMethod) Visit(file *engine.File) []engine.Finding {
	if r.skips(file) {
		return nil
	}
	funcs, err := file.Functions()
	if err != nil {
		return nil
	}
	var out []engine.Finding
	for _, fn := range funcs {
		if fn.Lines < r.Threshold {
			continue
		}
		msg := fmt.Sprintf("The function %s is too long (%d). The maximum length is %d.", fn.Name, fn.Lines, r.Threshold)
		out = append(out, r.finding(file, fn.StartLine, 1, msg, fn.Name))
	}
	return out
}

// LargeFile reports files with Threshold lines or more.
type LargeFile struct {
	base
	Threshold int
}

func (r LargeFile) Visit(file *engine.File) []engine.Finding {
	if r.skips(file) {
		return nil
	}
	n := len(file.Lines())
	if n < r.Threshold {
		return nil
	}
	msg := fmt.Sprintf("The file has %d lines, the maximum is %d.", n, r.Threshold)
	return []engine.Finding{r.finding(file, 1, 1, msg)}
}
