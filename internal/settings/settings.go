// Package settings turns the raw inputs of one invocation into the
// immutable ProcessingSettings handed to the analysis engine.
package settings

import (
	"fmt"
	"path/filepath"
	"strings"

	"detekt/internal/config"
	"detekt/internal/engine"
	derrors "detekt/internal/errors"
	"detekt/internal/pathfilter"
	"detekt/internal/processors"
)

// SpecSeparator delimits entries of the filter and rule path specs.
const SpecSeparator = ";"

// RunRequest holds the raw inputs of one run. It is built once from the
// command line and passed by value; Reports is treated as read-only.
type RunRequest struct {
	ProjectRoot    string
	ConfigPath     string
	ConfigResource string
	Formatting     bool
	UseTabs        bool

	// Filters and Rules are ';'-separated specs as typed by the user.
	Filters string
	Rules   string

	Parallel               bool
	DisableDefaultRuleSets bool
	BuildUponDefaultConfig bool

	Baseline       string
	CreateBaseline bool
	Reports        []string
	History        bool
}

// ConfigSelection extracts the inputs the configuration resolver looks at.
func (r RunRequest) ConfigSelection() config.Selection {
	return config.Selection{
		Path:       r.ConfigPath,
		Resource:   r.ConfigResource,
		Formatting: r.Formatting,
		UseTabs:    r.UseTabs,
	}
}

// SplitSpec splits a ';'-separated spec. Entries are kept verbatim and
// empty entries dropped, so an empty spec yields an empty slice. Order is
// kept.
func SplitSpec(spec string) []string {
	parts := strings.Split(spec, SpecSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Assemble builds the settings of a run. Without explicit processors the
// default set is registered with progress output discarded.
//
// Rule paths are not checked here; the engine reports missing ones.
func Assemble(req RunRequest, cfg config.Config, procs ...engine.FileProcessListener) (*engine.ProcessingSettings, error) {
	root := req.ProjectRoot
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root %s: %w", root, err)
	}

	specs := SplitSpec(req.Filters)
	filters := make([]pathfilter.PathFilter, 0, len(specs))
	for _, spec := range specs {
		f, err := pathfilter.Compile(spec)
		if err != nil {
			return nil, derrors.New(derrors.InvalidFilter, fmt.Sprintf("invalid filter %q", spec), err)
		}
		filters = append(filters, f)
	}

	if len(procs) == 0 {
		procs = processors.Defaults(nil)
	}

	return engine.NewProcessingSettings(engine.SettingsSpec{
		ProjectRoot:            absRoot,
		Config:                 cfg,
		PathFilters:            filters,
		RulePaths:              SplitSpec(req.Rules),
		Parallel:               req.Parallel,
		DisableDefaultRuleSets: req.DisableDefaultRuleSets,
		Processors:             procs,
	}), nil
}
