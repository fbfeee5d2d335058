package engine

import (
	"slices"

	"detekt/internal/config"
	"detekt/internal/pathfilter"
)

// SettingsSpec is the input to NewProcessingSettings.
type SettingsSpec struct {
	ProjectRoot            string
	Config                 config.Config
	PathFilters            []pathfilter.PathFilter
	RulePaths              []string
	Parallel               bool
	DisableDefaultRuleSets bool
	Processors             []FileProcessListener
}

// ProcessingSettings is the immutable bundle handed to the engine for a
// single run. Accessors return copies; nothing can change after
// construction.
type ProcessingSettings struct {
	projectRoot            string
	config                 config.Config
	pathFilters            []pathfilter.PathFilter
	rulePaths              []string
	parallel               bool
	disableDefaultRuleSets bool
	processors             []FileProcessListener
}

// NewProcessingSettings freezes spec. A nil Config becomes config.Empty.
func NewProcessingSettings(spec SettingsSpec) *ProcessingSettings {
	cfg := spec.Config
	if cfg == nil {
		cfg = config.Empty
	}
	return &ProcessingSettings{
		projectRoot:            spec.ProjectRoot,
		config:                 cfg,
		pathFilters:            slices.Clone(spec.PathFilters),
		rulePaths:              slices.Clone(spec.RulePaths),
		parallel:               spec.Parallel,
		disableDefaultRuleSets: spec.DisableDefaultRuleSets,
		processors:             slices.Clone(spec.Processors),
	}
}

// ProjectRoot returns the absolute path of the analyzed directory or file.
func (s *ProcessingSettings) ProjectRoot() string { return s.projectRoot }

// Config returns the resolved configuration.
func (s *ProcessingSettings) Config() config.Config { return s.config }

// PathFilters returns a copy of the exclusion filters.
func (s *ProcessingSettings) PathFilters() []pathfilter.PathFilter {
	return slices.Clone(s.pathFilters)
}

// RulePaths returns a copy of the extra rule pack paths.
func (s *ProcessingSettings) RulePaths() []string { return slices.Clone(s.rulePaths) }

// Parallel reports whether files are analyzed concurrently.
func (s *ProcessingSettings) Parallel() bool { return s.parallel }

// DisableDefaultRuleSets reports whether only rule packs are used.
func (s *ProcessingSettings) DisableDefaultRuleSets() bool { return s.disableDefaultRuleSets }

// Processors returns a copy of the listeners in registration order.
func (s *ProcessingSettings) Processors() []FileProcessListener { return slices.Clone(s.processors) }
