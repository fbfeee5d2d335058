package engine

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"detekt/internal/ctxlog"
	derrors "detekt/internal/errors"
	"detekt/internal/pathfilter"
	"detekt/internal/paths"
	"detekt/internal/rulepack"
)

// Engine performs one analysis pass over a project.
type Engine interface {
	Run(ctx context.Context, settings *ProcessingSettings) (*Detektion, error)
}

// sourceExtensions are the file types the engine analyzes.
var sourceExtensions = map[string]bool{".kt": true, ".kts": true}

// skippedDirs are never descended into.
var skippedDirs = map[string]bool{".git": true, ".detekt": true, ".gradle": true, ".idea": true}

// Facade is the default Engine. It walks the project root, runs every
// active rule set on each source file and notifies the registered
// processors.
type Facade struct {
	providers []Provider
}

// NewFacade creates an engine with the given default rule set providers.
func NewFacade(providers ...Provider) *Facade {
	return &Facade{providers: providers}
}

// Run analyzes the project described by settings. It blocks until every
// file has been processed; with Parallel set, files are analyzed
// concurrently.
func (f *Facade) Run(ctx context.Context, settings *ProcessingSettings) (*Detektion, error) {
	logger := ctxlog.FromContext(ctx)

	ruleSets, err := f.ruleSets(settings)
	if err != nil {
		return nil, err
	}

	files, err := collectFiles(settings.ProjectRoot(), settings.PathFilters())
	if err != nil {
		return nil, derrors.New(derrors.AnalysisFailed, "cannot collect source files", err).
			WithDetails(map[string]string{"root": settings.ProjectRoot()})
	}
	logger.Debug("Analysis started",
		"files", len(files),
		"ruleSets", len(ruleSets),
		"parallel", settings.Parallel(),
	)

	listeners := settings.Processors()
	for _, l := range listeners {
		l.OnStart(files)
	}

	perFile := make([][]Finding, len(files))
	process := func(i int) error {
		findings, err := analyzeFile(files[i], ruleSets, listeners)
		if err != nil {
			return err
		}
		perFile[i] = findings
		return nil
	}

	if settings.Parallel() {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(runtime.NumCPU())
		for i := range files {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return process(i)
			})
		}
		err = g.Wait()
	} else {
		for i := range files {
			if err = ctx.Err(); err != nil {
				break
			}
			if err = process(i); err != nil {
				break
			}
		}
	}
	if err != nil {
		return nil, derrors.New(derrors.AnalysisFailed, "analysis aborted", err)
	}

	result := NewDetektion()
	for _, rs := range ruleSets {
		result.AddFindings(rs.ID)
	}
	for _, findings := range perFile {
		for _, finding := range findings {
			result.AddFindings(finding.RuleSet, finding)
		}
	}

	for _, l := range listeners {
		l.OnFinish(files, result)
	}

	logger.Debug("Analysis finished", "findings", result.IssueCount())
	return result, nil
}

func (f *Facade) ruleSets(settings *ProcessingSettings) ([]*RuleSet, error) {
	cfg := settings.Config()

	var sets []*RuleSet
	if !settings.DisableDefaultRuleSets() {
		for _, p := range f.providers {
			if rs := p.Instance(cfg.SubConfig(p.ID())); rs != nil && len(rs.Rules) > 0 {
				sets = append(sets, rs)
			}
		}
	}

	if rulePaths := settings.RulePaths(); len(rulePaths) > 0 {
		packs, err := rulepack.LoadAll(rulePaths)
		if err != nil {
			return nil, err
		}
		for _, p := range packs {
			if rs := packRuleSet(p, cfg); rs != nil && len(rs.Rules) > 0 {
				sets = append(sets, rs)
			}
		}
	}
	return sets, nil
}

func analyzeFile(file *File, ruleSets []*RuleSet, listeners []FileProcessListener) ([]Finding, error) {
	for _, l := range listeners {
		l.OnProcess(file)
	}

	var findings []Finding
	for _, rs := range ruleSets {
		if pathfilter.AnyMatches(rs.Excludes, file.RelPath) {
			continue
		}
		for _, rule := range rs.Rules {
			for _, finding := range rule.Visit(file) {
				if finding.RuleSet == "" {
					finding.RuleSet = rs.ID
				}
				findings = append(findings, finding)
			}
		}
	}

	if file.Modified() {
		info, err := os.Stat(file.Path)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(file.Path, file.Content(), info.Mode().Perm()); err != nil {
			return nil, fmt.Errorf("writing corrected %s: %w", file.RelPath, err)
		}
	}
	return findings, nil
}

// collectFiles returns the source files below root, in lexical order,
// skipping anything a path filter matches. A root that is a file is
// analyzed on its own.
func collectFiles(root string, filters []pathfilter.PathFilter) ([]*File, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !isSource(root) {
			return nil, nil
		}
		file, err := readFile(root, filepath.Base(root))
		if err != nil {
			return nil, err
		}
		return []*File{file}, nil
	}

	var files []*File
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !isSource(p) {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = paths.NormalizePath(rel)
		if pathfilter.AnyMatches(filters, rel) {
			return nil
		}

		file, err := readFile(p, rel)
		if err != nil {
			return err
		}
		files = append(files, file)
		return nil
	})
	return files, err
}

func readFile(path, rel string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewFile(path, rel, content), nil
}

func isSource(path string) bool {
	return sourceExtensions[strings.ToLower(filepath.Ext(path))]
}
