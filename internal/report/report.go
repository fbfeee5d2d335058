// Package report renders analysis results: a console summary plus any
// number of report files (txt, json, sarif, checkstyle xml).
package report

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"detekt/internal/config"
	"detekt/internal/engine"
	derrors "detekt/internal/errors"
	"detekt/internal/slogutil"
)

// Reporter renders the result of a run.
type Reporter interface {
	Report(result *engine.Detektion) error
}

// Kind names a report file format.
type Kind string

const (
	KindTxt   Kind = "txt"
	KindJSON  Kind = "json"
	KindSARIF Kind = "sarif"
	KindXML   Kind = "xml"
)

var kinds = map[Kind]bool{KindTxt: true, KindJSON: true, KindSARIF: true, KindXML: true}

// Spec requests one report file.
type Spec struct {
	Kind Kind
	Path string
}

func (s Spec) String() string { return string(s.Kind) + ":" + s.Path }

// ParseSpec parses a "kind:path" report argument.
func ParseSpec(s string) (Spec, error) {
	kind, path, ok := strings.Cut(s, ":")
	if !ok || path == "" {
		return Spec{}, fmt.Errorf("report %q must look like type:path", s)
	}
	k := Kind(strings.ToLower(strings.TrimSpace(kind)))
	if !kinds[k] {
		return Spec{}, fmt.Errorf("unknown report type %q (want txt, json, sarif or xml)", kind)
	}
	return Spec{Kind: k, Path: strings.TrimSpace(path)}, nil
}

// ParseSpecs parses every report argument, failing on the first bad one.
func ParseSpecs(args []string) ([]Spec, error) {
	specs := make([]Spec, 0, len(args))
	for _, a := range args {
		s, err := ParseSpec(a)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}

// Output is the default Reporter.
type Output struct {
	console     io.Writer
	showConsole bool
	specs       []Spec
	runID       string
	projectRoot string
	logger      *slog.Logger
}

// Option configures an Output.
type Option func(*Output)

// WithRunID tags machine-readable reports with the run id.
func WithRunID(id string) Option {
	return func(o *Output) { o.runID = id }
}

// WithProjectRoot sets the root that SARIF artifact URIs are relative to.
// Report file paths are resolved against the working directory.
func WithProjectRoot(root string) Option {
	return func(o *Output) { o.projectRoot = root }
}

// WithLogger sets the logger for written-report messages.
func WithLogger(l *slog.Logger) Option {
	return func(o *Output) { o.logger = l }
}

// WithSpecs adds report files.
func WithSpecs(specs ...Spec) Option {
	return func(o *Output) { o.specs = append(o.specs, specs...) }
}

// NewOutput creates a reporter writing the console summary to console
// unless console-reports.active is false in cfg.
func NewOutput(cfg config.Config, console io.Writer, opts ...Option) *Output {
	if console == nil {
		console = io.Discard
	}
	o := &Output{
		console:     console,
		showConsole: config.IsActive(cfg.SubConfig("console-reports"), true),
		logger:      slogutil.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Report writes the console summary and every requested file.
func (o *Output) Report(result *engine.Detektion) error {
	if o.showConsole {
		if err := writeConsole(o.console, result); err != nil {
			return derrors.New(derrors.ReportFailed, "cannot write console report", err)
		}
	}
	for _, spec := range o.specs {
		if err := o.writeFile(spec, result); err != nil {
			return derrors.New(derrors.ReportFailed, fmt.Sprintf("cannot write %s report to %s", spec.Kind, spec.Path), err).
				WithDetails(map[string]string{"path": spec.Path})
		}
		o.logger.Info("Report written", "type", string(spec.Kind), "path", spec.Path)
	}
	return nil
}

func (o *Output) writeFile(spec Spec, result *engine.Detektion) (err error) {
	if dir := filepath.Dir(spec.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(spec.Path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w, err := compressed(f, spec.Path)
	if err != nil {
		return err
	}
	if err := o.render(w, spec.Kind, result); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (o *Output) render(w io.Writer, kind Kind, result *engine.Detektion) error {
	switch kind {
	case KindTxt:
		return writeText(w, result)
	case KindJSON:
		return writeJSON(w, result, o.runID)
	case KindSARIF:
		return writeSARIF(w, result, o.runID, o.projectRoot)
	case KindXML:
		return writeCheckstyle(w, result)
	default:
		return fmt.Errorf("unknown report type %q", kind)
	}
}
