package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"detekt/internal/config"
	derrors "detekt/internal/errors"
	"detekt/internal/pathfilter"
)

// containsRule reports every line containing needle.
type containsRule struct {
	id     string
	needle string
}

func (r containsRule) ID() string          { return r.id }
func (r containsRule) Description() string { return "flags " + r.needle }

func (r containsRule) Visit(file *File) []Finding {
	var out []Finding
	for i, line := range file.Lines() {
		if col := strings.Index(line, r.needle); col >= 0 {
			out = append(out, Finding{
				RuleID:    r.id,
				Message:   r.Description(),
				Severity:  SeverityWarning,
				Location:  Location{Path: file.RelPath, Line: i + 1, Column: col + 1},
				Signature: Signature(file.RelPath, strings.TrimSpace(line)),
			})
		}
	}
	return out
}

// trimRule strips trailing blanks and reports each fixed line as corrected.
type trimRule struct{}

func (trimRule) ID() string          { return "Trim" }
func (trimRule) Description() string { return "trailing blanks" }

func (trimRule) Visit(file *File) []Finding {
	lines := file.Lines()
	var out []Finding
	for i, l := range lines {
		if t := strings.TrimRight(l, " \t"); t != l {
			lines[i] = t
			out = append(out, Finding{RuleID: "Trim", Location: Location{Path: file.RelPath, Line: i + 1}, Corrected: true})
		}
	}
	if len(out) > 0 {
		file.Rewrite([]byte(strings.Join(lines, "\n") + "\n"))
	}
	return out
}

type fakeProvider struct {
	id    string
	rules []Rule
}

func (p fakeProvider) ID() string { return p.id }

func (p fakeProvider) Instance(cfg config.Config) *RuleSet {
	if !config.IsActive(cfg, true) {
		return nil
	}
	return &RuleSet{ID: p.id, Rules: p.rules, Excludes: ExcludesFrom(cfg)}
}

type recordingListener struct {
	mu        sync.Mutex
	started   []string
	processed []string
	finished  *Detektion
}

func (l *recordingListener) OnStart(files []*File) {
	for _, f := range files {
		l.started = append(l.started, f.RelPath)
	}
}

func (l *recordingListener) OnProcess(file *File) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.processed = append(l.processed, file.RelPath)
}

func (l *recordingListener) OnFinish(_ []*File, result *Detektion) {
	l.finished = result
	result.AddMetric("seen", len(l.processed))
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func sampleProject(t *testing.T) string {
	return writeTree(t, map[string]string{
		"src/main/App.kt":      "fun main() {\n    println(\"hi\")\n}\n",
		"src/main/Util.kt":     "fun util() = 1\n// println here too\n",
		"src/test/AppTest.kts": "println(\"test\")\n",
		"build/gen/Gen.kt":     "println(\"generated\")\n",
		".git/hooks/Hook.kt":   "println(\"hook\")\n",
		"README.md":            "println\n",
	})
}

var styleProvider = fakeProvider{id: "style", rules: []Rule{containsRule{id: "NoPrintln", needle: "println"}}}

func TestFacade_Run(t *testing.T) {
	root := sampleProject(t)
	listener := &recordingListener{}

	settings := NewProcessingSettings(SettingsSpec{
		ProjectRoot: root,
		PathFilters: []pathfilter.PathFilter{pathfilter.MustCompile("**/build/**")},
		Processors:  []FileProcessListener{listener},
	})

	result, err := NewFacade(styleProvider).Run(context.Background(), settings)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantFiles := []string{"src/main/App.kt", "src/main/Util.kt", "src/test/AppTest.kts"}
	if diff := cmp.Diff(wantFiles, listener.started); diff != "" {
		t.Errorf("analyzed files (-want +got):\n%s", diff)
	}
	if listener.finished != result {
		t.Error("OnFinish should receive the returned result")
	}
	if got, _ := result.Metric("seen"); got != 3 {
		t.Errorf("processed %d files, want 3", got)
	}

	var got []string
	for _, f := range result.AllFindings() {
		got = append(got, f.Location.Path+":"+f.RuleSet+"/"+f.RuleID)
	}
	want := []string{
		"src/main/App.kt:style/NoPrintln",
		"src/main/Util.kt:style/NoPrintln",
		"src/test/AppTest.kts:style/NoPrintln",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("findings (-want +got):\n%s", diff)
	}
	if result.IssueCount() != 3 {
		t.Errorf("IssueCount() = %d, want 3", result.IssueCount())
	}
}

func TestFacade_ParallelMatchesSequential(t *testing.T) {
	files := make(map[string]string)
	for i := 0; i < 40; i++ {
		files[filepath.ToSlash(filepath.Join("src", string(rune('a'+i%26)), "F"+strings.Repeat("x", i)+".kt"))] =
			strings.Repeat("println(1)\nval x = 1\n", i%5+1)
	}
	root := writeTree(t, files)

	run := func(parallel bool) []Finding {
		t.Helper()
		settings := NewProcessingSettings(SettingsSpec{ProjectRoot: root, Parallel: parallel})
		result, err := NewFacade(styleProvider).Run(context.Background(), settings)
		if err != nil {
			t.Fatalf("Run(parallel=%v) error = %v", parallel, err)
		}
		return result.AllFindings()
	}

	seq, par := run(false), run(true)
	if len(seq) == 0 {
		t.Fatal("expected findings")
	}
	if diff := cmp.Diff(seq, par); diff != "" {
		t.Errorf("parallel result differs (-seq +par):\n%s", diff)
	}
}

func TestFacade_RuleSetSelection(t *testing.T) {
	root := sampleProject(t)
	packPath := filepath.Join(t.TempDir(), "team.yml")
	if err := os.WriteFile(packPath, []byte("id: team\nrules:\n  - id: NoMain\n    pattern: 'fun main'\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		spec     SettingsSpec
		wantSets []string
		wantN    int
	}{
		{
			name:     "defaults only",
			spec:     SettingsSpec{},
			wantSets: []string{"style"},
			wantN:    3,
		},
		{
			name:     "defaults disabled",
			spec:     SettingsSpec{DisableDefaultRuleSets: true},
			wantSets: nil,
			wantN:    0,
		},
		{
			name:     "defaults disabled keep rule packs",
			spec:     SettingsSpec{DisableDefaultRuleSets: true, RulePaths: []string{packPath}},
			wantSets: []string{"team"},
			wantN:    1,
		},
		{
			name:     "defaults and rule packs",
			spec:     SettingsSpec{RulePaths: []string{packPath}},
			wantSets: []string{"style", "team"},
			wantN:    4,
		},
		{
			name: "rule set switched off by configuration",
			spec: SettingsSpec{
				RulePaths: []string{packPath},
				Config:    config.NewFileConfig("detekt.yml", map[string]any{"style": map[string]any{"active": false}}),
			},
			wantSets: []string{"team"},
			wantN:    1,
		},
		{
			name: "rule set excludes",
			spec: SettingsSpec{
				Config: config.NewFileConfig("detekt.yml", map[string]any{
					"style": map[string]any{"excludes": []any{"**/test/**"}},
				}),
			},
			wantSets: []string{"style"},
			wantN:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := tt.spec
			spec.ProjectRoot = root
			spec.PathFilters = []pathfilter.PathFilter{pathfilter.MustCompile("**/build/**")}

			result, err := NewFacade(styleProvider).Run(context.Background(), NewProcessingSettings(spec))
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if diff := cmp.Diff(tt.wantSets, result.RuleSetIDs()); diff != "" {
				t.Errorf("rule sets (-want +got):\n%s", diff)
			}
			if got := result.IssueCount(); got != tt.wantN {
				t.Errorf("IssueCount() = %d, want %d", got, tt.wantN)
			}
		})
	}
}

func TestFacade_MissingRulePath(t *testing.T) {
	root := sampleProject(t)
	settings := NewProcessingSettings(SettingsSpec{
		ProjectRoot: root,
		RulePaths:   []string{filepath.Join(root, "does-not-exist.yml")},
	})

	_, err := NewFacade(styleProvider).Run(context.Background(), settings)
	if !derrors.HasCode(err, derrors.RulePackInvalid) {
		t.Errorf("Run() error = %v, want %s", err, derrors.RulePackInvalid)
	}
}

func TestFacade_MissingRoot(t *testing.T) {
	settings := NewProcessingSettings(SettingsSpec{ProjectRoot: filepath.Join(t.TempDir(), "nope")})

	_, err := NewFacade().Run(context.Background(), settings)
	if !derrors.HasCode(err, derrors.AnalysisFailed) {
		t.Errorf("Run() error = %v, want %s", err, derrors.AnalysisFailed)
	}
}

func TestFacade_SingleFileRoot(t *testing.T) {
	root := sampleProject(t)
	settings := NewProcessingSettings(SettingsSpec{ProjectRoot: filepath.Join(root, "src", "main", "App.kt")})

	result, err := NewFacade(styleProvider).Run(context.Background(), settings)
	if err != nil {
		t.Fatal(err)
	}
	findings := result.AllFindings()
	if len(findings) != 1 || findings[0].Location.Path != "App.kt" {
		t.Errorf("findings = %+v, want one in App.kt", findings)
	}
}

func TestFacade_FiltersIgnoreAncestorsOfRoot(t *testing.T) {
	base := writeTree(t, map[string]string{
		"build/proj/src/A.kt":       "println(1)\n",
		"build/proj/build/out/B.kt": "println(2)\n",
	})
	root := filepath.Join(base, "build", "proj")

	files, err := collectFiles(root, []pathfilter.PathFilter{pathfilter.MustCompile("**/build/**")})
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, f := range files {
		got = append(got, f.RelPath)
	}
	if diff := cmp.Diff([]string{"src/A.kt"}, got); diff != "" {
		t.Errorf("collected files (-want +got):\n%s", diff)
	}
}

func TestFacade_AutoCorrectWritesBack(t *testing.T) {
	root := writeTree(t, map[string]string{"A.kt": "val a = 1   \nval b = 2\n"})
	provider := fakeProvider{id: "formatting", rules: []Rule{trimRule{}}}

	result, err := NewFacade(provider).Run(context.Background(), NewProcessingSettings(SettingsSpec{ProjectRoot: root}))
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(root, "A.kt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "val a = 1\nval b = 2\n" {
		t.Errorf("file content = %q", data)
	}
	if n := len(result.AllFindings()); n != 1 {
		t.Errorf("findings = %d, want 1", n)
	}
	if result.IssueCount() != 0 {
		t.Errorf("IssueCount() = %d, corrected findings must not count", result.IssueCount())
	}
}

func TestFacade_Canceled(t *testing.T) {
	root := sampleProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, parallel := range []bool{false, true} {
		_, err := NewFacade(styleProvider).Run(ctx, NewProcessingSettings(SettingsSpec{ProjectRoot: root, Parallel: parallel}))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("parallel=%v: error = %v, want context.Canceled", parallel, err)
		}
		if !derrors.HasCode(err, derrors.AnalysisFailed) {
			t.Errorf("parallel=%v: error = %v, want %s", parallel, err, derrors.AnalysisFailed)
		}
	}
}

func TestProcessingSettings_Copies(t *testing.T) {
	filters := []pathfilter.PathFilter{pathfilter.MustCompile("a/**")}
	rules := []string{"r1.yml"}
	listeners := []FileProcessListener{&recordingListener{}}

	s := NewProcessingSettings(SettingsSpec{
		ProjectRoot: "/p",
		PathFilters: filters,
		RulePaths:   rules,
		Processors:  listeners,
	})

	filters[0] = pathfilter.MustCompile("changed")
	rules[0] = "changed"
	listeners[0] = nil

	if s.PathFilters()[0].Pattern() != "a/**" {
		t.Error("settings must not alias the caller's filter slice")
	}
	if s.RulePaths()[0] != "r1.yml" {
		t.Error("settings must not alias the caller's rule slice")
	}
	if s.Processors()[0] == nil {
		t.Error("settings must not alias the caller's processor slice")
	}

	got := s.RulePaths()
	got[0] = "mutated"
	if s.RulePaths()[0] != "r1.yml" {
		t.Error("accessor must return a copy")
	}
	if s.Config() != config.Empty {
		t.Errorf("nil config should become Empty, got %v", s.Config())
	}
}

func TestDetektion(t *testing.T) {
	d := NewDetektion()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d.AddFindings("style", Finding{RuleID: "R", Location: Location{Path: "a.kt", Line: 50 - i}})
			d.AddMetric("lloc", 2)
		}(i)
	}
	wg.Wait()
	d.AddFindings("formatting", Finding{RuleID: "F", Location: Location{Path: "a.kt", Line: 1}, Corrected: true})
	d.AddFindings("empty")
	d.AddNotification("note")

	if got := d.IssueCount(); got != 50 {
		t.Errorf("IssueCount() = %d, want 50", got)
	}
	if got, _ := d.Metric("lloc"); got != 100 {
		t.Errorf("lloc = %d, want 100", got)
	}
	if diff := cmp.Diff([]string{"empty", "formatting", "style"}, d.RuleSetIDs()); diff != "" {
		t.Errorf("RuleSetIDs (-want +got):\n%s", diff)
	}

	all := d.AllFindings()
	if len(all) != 51 {
		t.Fatalf("AllFindings() = %d", len(all))
	}
	if !sort.SliceIsSorted(all, func(i, j int) bool { return all[i].Location.Line < all[j].Location.Line }) {
		t.Error("AllFindings() should be ordered by line")
	}
	if all[0].RuleID != "F" || all[1].RuleID != "R" {
		t.Errorf("same line should order by rule id: %s, %s", all[0].RuleID, all[1].RuleID)
	}

	filtered := d.Filter(func(f Finding) bool { return f.Location.Line > 40 })
	if got := filtered.IssueCount(); got != 10 {
		t.Errorf("filtered IssueCount() = %d, want 10", got)
	}
	if diff := cmp.Diff(d.RuleSetIDs(), filtered.RuleSetIDs()); diff != "" {
		t.Errorf("Filter should keep rule set ids:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"note"}, filtered.Notifications()); diff != "" {
		t.Errorf("Filter should keep notifications:\n%s", diff)
	}
	if got, _ := filtered.Metric("lloc"); got != 100 {
		t.Errorf("Filter should keep metrics, lloc = %d", got)
	}
}

func TestFile_LineEnding(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"a\r\nb\r\n", "\r\n"},
		{"a\nb\r\n", "\n"},
		{"a", "\n"},
		{"\r\n", "\r\n"},
		{"", "\n"},
	}
	for _, tt := range tests {
		if got := NewFile("/p/A.kt", "A.kt", []byte(tt.content)).LineEnding(); got != tt.want {
			t.Errorf("LineEnding(%q) = %q, want %q", tt.content, got, tt.want)
		}
	}
}

func TestFile(t *testing.T) {
	f := NewFile("/p/A.kt", "A.kt", []byte("a\r\nb\n\nc\n"))

	if diff := cmp.Diff([]string{"a", "b", "", "c"}, f.Lines()); diff != "" {
		t.Errorf("Lines() (-want +got):\n%s", diff)
	}
	if f.Modified() {
		t.Error("fresh file should not be modified")
	}
	f.Rewrite([]byte("a\r\nb\n\nc\n"))
	if f.Modified() {
		t.Error("identical rewrite should not mark the file modified")
	}
	f.Rewrite([]byte("x"))
	if !f.Modified() || string(f.Content()) != "x" {
		t.Errorf("Rewrite() did not apply: %q", f.Content())
	}
	if NewFile("e.kt", "e.kt", nil).Lines() != nil {
		t.Error("empty file should have no lines")
	}
}

func TestSignature(t *testing.T) {
	if got := Signature("a/B.kt", "fun x", "y"); got != "a/B.kt$fun x$y" {
		t.Errorf("Signature() = %q", got)
	}
}
