package settings

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"detekt/internal/config"
	"detekt/internal/processors"
)

func TestSplitSpec(t *testing.T) {
	tests := []struct {
		spec string
		want []string
	}{
		{"", []string{}},
		{";", []string{}},
		{";;;", []string{}},
		{"a;b;c", []string{"a", "b", "c"}},
		{"a;;b;", []string{"a", "b"}},
		{" src/test/** ;**/build/**", []string{" src/test/** ", "**/build/**"}},
		{"c;a;b", []string{"c", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, SplitSpec(tt.spec)); diff != "" {
				t.Errorf("SplitSpec(%q) (-want +got):\n%s", tt.spec, diff)
			}
		})
	}
}

func TestAssemble_Filters(t *testing.T) {
	req := RunRequest{ProjectRoot: t.TempDir(), Filters: "src/test/**;**/build/**"}

	s, err := Assemble(req, config.Empty)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	filters := s.PathFilters()
	var patterns []string
	for _, f := range filters {
		patterns = append(patterns, f.Pattern())
	}
	if diff := cmp.Diff([]string{"src/test/**", "**/build/**"}, patterns); diff != "" {
		t.Errorf("filters (-want +got):\n%s", diff)
	}
	if !filters[0].Matches("src/test/kotlin/AppTest.kt") || filters[0].Matches("src/main/App.kt") {
		t.Error("src/test/** matches the wrong paths")
	}
	if !filters[1].Matches("module/build/generated/X.kt") {
		t.Error("**/build/** should match nested build directories")
	}
}

func TestAssemble_FiltersKeptVerbatim(t *testing.T) {
	req := RunRequest{ProjectRoot: t.TempDir(), Filters: "src/** ;**/build/**"}

	s, err := Assemble(req, config.Empty)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	filters := s.PathFilters()
	if got := filters[0].Pattern(); got != "src/** " {
		t.Errorf("Pattern() = %q, want the entry as given", got)
	}
	if filters[0].Matches("src/A.kt") {
		t.Error("a filter with a trailing blank must not match paths without one")
	}
}

func TestAssemble_NoFiltersOrRules(t *testing.T) {
	s, err := Assemble(RunRequest{ProjectRoot: t.TempDir()}, config.Empty)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(s.PathFilters()); n != 0 {
		t.Errorf("PathFilters() has %d entries, want 0", n)
	}
	if n := len(s.RulePaths()); n != 0 {
		t.Errorf("RulePaths() has %d entries, want 0", n)
	}
}

func TestAssemble_CarriesInputs(t *testing.T) {
	cfg := config.NewFileConfig("detekt.yml", map[string]any{"build": map[string]any{"maxIssues": 3}})
	req := RunRequest{
		ProjectRoot:            "relative/project",
		Rules:                  "rules/a.yml;;/abs/b.yml",
		Parallel:               true,
		DisableDefaultRuleSets: true,
	}

	s, err := Assemble(req, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if !filepath.IsAbs(s.ProjectRoot()) {
		t.Errorf("ProjectRoot() = %q, want absolute", s.ProjectRoot())
	}
	if filepath.Base(s.ProjectRoot()) != "project" {
		t.Errorf("ProjectRoot() = %q", s.ProjectRoot())
	}
	if diff := cmp.Diff([]string{"rules/a.yml", "/abs/b.yml"}, s.RulePaths()); diff != "" {
		t.Errorf("RulePaths() (-want +got):\n%s", diff)
	}
	if !s.Parallel() || !s.DisableDefaultRuleSets() {
		t.Error("flags were not carried through")
	}
	if got := config.Int(s.Config().SubConfig("build"), "maxIssues", -1); got != 3 {
		t.Errorf("config not carried through, maxIssues = %d", got)
	}
}

func TestAssemble_Processors(t *testing.T) {
	s, err := Assemble(RunRequest{}, config.Empty)
	if err != nil {
		t.Fatal(err)
	}
	procs := s.Processors()
	if len(procs) != 3 {
		t.Fatalf("Processors() = %d, want 3", len(procs))
	}
	if _, ok := procs[0].(*processors.LLOC); !ok {
		t.Errorf("processors[0] = %T", procs[0])
	}
	if _, ok := procs[1].(*processors.Complexity); !ok {
		t.Errorf("processors[1] = %T", procs[1])
	}
	if _, ok := procs[2].(*processors.Progress); !ok {
		t.Errorf("processors[2] = %T", procs[2])
	}

	var out bytes.Buffer
	explicit := processors.Defaults(&out)
	s, err = Assemble(RunRequest{}, config.Empty, explicit...)
	if err != nil {
		t.Fatal(err)
	}
	if s.Processors()[2] != explicit[2] {
		t.Error("explicit processors should be used as given")
	}
}

// A formatting request needs no file on disk and turns auto-correction on
// for every rule the engine consults.
func TestAssemble_FormattingWithoutFile(t *testing.T) {
	req := RunRequest{ProjectRoot: t.TempDir(), Formatting: true, UseTabs: true}

	cfg, err := config.Resolve(req.ConfigSelection(), config.NewLoader())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	s, err := Assemble(req, cfg)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	rule := s.Config().SubConfig("formatting").SubConfig("Indentation")
	if !config.Bool(rule, config.KeyAutoCorrect, false) {
		t.Error("autoCorrect should be on")
	}
	if !config.Bool(rule, config.KeyUseTabs, false) {
		t.Error("useTabs should mirror the request")
	}
}

func TestRunRequest_ConfigSelection(t *testing.T) {
	req := RunRequest{ConfigPath: "a.yml", ConfigResource: "builtin:b.yml", Formatting: true, UseTabs: true}
	want := config.Selection{Path: "a.yml", Resource: "builtin:b.yml", Formatting: true, UseTabs: true}
	if diff := cmp.Diff(want, req.ConfigSelection()); diff != "" {
		t.Errorf("ConfigSelection() (-want +got):\n%s", diff)
	}
}
