// Package rulepack loads declarative rule packs: YAML files that define
// extra rule sets made of regular-expression line rules. They are the
// extension point behind --plugins.
package rulepack

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	derrors "detekt/internal/errors"
)

// Pack is one rule pack file.
type Pack struct {
	ID     string `yaml:"id"`
	Rules  []Rule `yaml:"rules"`
	Source string `yaml:"-"`
}

// Rule reports every line matching Pattern.
type Rule struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Pattern     string `yaml:"pattern"`
	Message     string `yaml:"message"`
	Severity    string `yaml:"severity"`
	Active      *bool  `yaml:"active"`

	re *regexp.Regexp
}

// Match returns the 1-based column of the first match in line, or 0.
func (r *Rule) Match(line string) int {
	if r.re == nil {
		return 0
	}
	loc := r.re.FindStringIndex(line)
	if loc == nil {
		return 0
	}
	return loc[0] + 1
}

// IsActive reports the pack's own default for the rule.
func (r *Rule) IsActive() bool {
	return r.Active == nil || *r.Active
}

// Text returns the finding message, falling back to the description.
func (r *Rule) Text() string {
	if r.Message != "" {
		return r.Message
	}
	if r.Description != "" {
		return r.Description
	}
	return r.ID
}

// Parse decodes and validates a pack. source names it in errors and
// provides the default id.
func Parse(data []byte, source string) (*Pack, error) {
	var p Pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, invalid(source, "malformed rule pack", err)
	}
	p.Source = source
	if p.ID == "" {
		p.ID = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	if len(p.Rules) == 0 {
		return nil, invalid(source, "rule pack defines no rules", nil)
	}

	seen := make(map[string]bool, len(p.Rules))
	for i := range p.Rules {
		r := &p.Rules[i]
		if r.ID == "" {
			return nil, invalid(source, fmt.Sprintf("rule #%d has no id", i+1), nil)
		}
		if seen[r.ID] {
			return nil, invalid(source, fmt.Sprintf("duplicate rule id %s", r.ID), nil)
		}
		seen[r.ID] = true

		if r.Pattern == "" {
			return nil, invalid(source, fmt.Sprintf("rule %s has no pattern", r.ID), nil)
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, invalid(source, fmt.Sprintf("rule %s has an invalid pattern", r.ID), err)
		}
		r.re = re

		switch r.Severity {
		case "":
			r.Severity = "warning"
		case "error", "warning", "info":
		default:
			return nil, invalid(source, fmt.Sprintf("rule %s has unknown severity %q", r.ID, r.Severity), nil)
		}
	}
	return &p, nil
}

// Load reads one pack file, or every *.yml/*.yaml file below a directory in
// lexical order.
func Load(path string) ([]*Pack, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, invalid(path, "cannot access rule path", err)
	}
	if !info.IsDir() {
		p, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		return []*Pack{p}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isPackFile(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, invalid(path, "cannot scan rule directory", err)
	}
	sort.Strings(files)

	packs := make([]*Pack, 0, len(files))
	for _, f := range files {
		p, err := loadFile(f)
		if err != nil {
			return nil, err
		}
		packs = append(packs, p)
	}
	return packs, nil
}

// LoadAll loads every path in order and rejects duplicate pack ids.
func LoadAll(paths []string) ([]*Pack, error) {
	var all []*Pack
	ids := make(map[string]string)
	for _, path := range paths {
		packs, err := Load(path)
		if err != nil {
			return nil, err
		}
		for _, p := range packs {
			if prev, ok := ids[p.ID]; ok {
				return nil, invalid(p.Source, fmt.Sprintf("rule pack id %s already defined by %s", p.ID, prev), nil)
			}
			ids[p.ID] = p.Source
			all = append(all, p)
		}
	}
	return all, nil
}

func loadFile(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, invalid(path, "cannot read rule pack", err)
	}
	return Parse(data, path)
}

func isPackFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return true
	}
	return false
}

func invalid(source, msg string, cause error) error {
	return derrors.New(derrors.RulePackInvalid, fmt.Sprintf("%s: %s", msg, source), cause).
		WithDetails(map[string]string{"source": source})
}
