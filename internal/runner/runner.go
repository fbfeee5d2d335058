// Package runner coordinates one detekt run: resolve the configuration,
// assemble settings, drive the engine, report and apply the threshold gate.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"detekt/internal/baseline"
	"detekt/internal/config"
	"detekt/internal/ctxlog"
	"detekt/internal/engine"
	derrors "detekt/internal/errors"
	"detekt/internal/gate"
	"detekt/internal/paths"
	"detekt/internal/processors"
	"detekt/internal/report"
	"detekt/internal/rules"
	"detekt/internal/settings"
	"detekt/internal/slogutil"
	"detekt/internal/storage"
	"detekt/internal/version"
)

// HistoryStore records finished runs.
type HistoryStore interface {
	RecordRun(run *storage.Run) error
}

// Outcome is what a completed run hands back to the process boundary.
type Outcome struct {
	RunID    string
	Result   *engine.Detektion
	Verdict  gate.Verdict
	Duration time.Duration
}

// Runner executes runs. It holds no per-run state, so one Runner may
// execute any number of runs, concurrently or in sequence.
type Runner struct {
	engine   engine.Engine
	reporter report.Reporter
	loader   config.Loader
	logger   *slog.Logger
	out      io.Writer
	now      func() time.Time
	history  HistoryStore
}

// Option configures a Runner.
type Option func(*Runner)

// WithEngine replaces the default engine.
func WithEngine(e engine.Engine) Option {
	return func(r *Runner) { r.engine = e }
}

// WithReporter replaces the per-run report output.
func WithReporter(rep report.Reporter) Option {
	return func(r *Runner) { r.reporter = rep }
}

// WithLoader replaces the configuration loader.
func WithLoader(l config.Loader) Option {
	return func(r *Runner) { r.loader = l }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithOutput sets where progress, the console report and the timing line go.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithHistory records runs into store instead of the project database.
func WithHistory(store HistoryStore) Option {
	return func(r *Runner) { r.history = store }
}

// New creates a Runner with the default engine and rule sets.
func New(opts ...Option) *Runner {
	r := &Runner{
		engine: engine.NewFacade(rules.Defaults()...),
		loader: config.NewLoader(),
		logger: slogutil.NewDiscardLogger(),
		out:    os.Stdout,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute performs one run. Configuration, engine and report failures are
// returned as they are; a failing threshold is reported through the
// Outcome's Verdict, not as an error.
func (r *Runner) Execute(ctx context.Context, req settings.RunRequest) (*Outcome, error) {
	runID := uuid.NewString()
	logger := r.logger.With("run", runID)
	ctx = ctxlog.WithLogger(ctx, logger)

	cfg, err := config.Resolve(req.ConfigSelection(), r.loader)
	if err != nil {
		return nil, err
	}
	if req.BuildUponDefaultConfig {
		cfg = config.BuildUponDefault(cfg, config.LoadDefault())
	}
	if src, ok := cfg.(interface{ Source() string }); ok {
		logger.Debug("Configuration resolved", "kind", string(cfg.Kind()), "source", src.Source())
	} else {
		logger.Debug("Configuration resolved", "kind", string(cfg.Kind()))
	}

	specs, err := report.ParseSpecs(req.Reports)
	if err != nil {
		return nil, derrors.New(derrors.ReportFailed, "invalid report request", err)
	}

	start := r.now()

	procSettings, err := settings.Assemble(req, cfg, processors.Defaults(r.out)...)
	if err != nil {
		return nil, err
	}

	result, err := r.engine.Run(ctx, procSettings)
	if err != nil {
		return nil, err
	}

	result, err = r.applyBaseline(req, result, logger)
	if err != nil {
		return nil, err
	}

	reporter := r.reporter
	if reporter == nil {
		reporter = report.NewOutput(cfg, r.out,
			report.WithSpecs(specs...),
			report.WithRunID(runID),
			report.WithProjectRoot(procSettings.ProjectRoot()),
			report.WithLogger(logger),
		)
	}
	if err := reporter.Report(result); err != nil {
		return nil, err
	}

	duration := r.now().Sub(start)
	fmt.Fprintf(r.out, "\ndetekt run within %d ms\n", duration.Milliseconds())

	verdict := gate.Evaluate(cfg, result)
	logger.Info("Run finished",
		"issues", result.IssueCount(),
		"weighted", verdict.Count,
		"threshold", verdict.Threshold,
		"passed", verdict.Passed(),
		"duration_ms", duration.Milliseconds(),
	)

	outcome := &Outcome{RunID: runID, Result: result, Verdict: verdict, Duration: duration}
	if req.History {
		r.record(outcome, start, procSettings.ProjectRoot(), cfg, logger)
	}
	return outcome, nil
}

// applyBaseline writes a new baseline or filters result through an existing
// one. A configured but missing baseline is skipped with a warning.
func (r *Runner) applyBaseline(req settings.RunRequest, result *engine.Detektion, logger *slog.Logger) (*engine.Detektion, error) {
	if req.Baseline == "" {
		if req.CreateBaseline {
			return nil, derrors.Newf(derrors.BaselineInvalid, "creating a baseline needs a baseline path")
		}
		return result, nil
	}

	if req.CreateBaseline {
		b, err := baseline.Create(req.Baseline, result)
		if err != nil {
			return nil, err
		}
		logger.Info("Baseline written", "path", req.Baseline, "issues", len(b.Current))
		return result, nil
	}

	b, err := baseline.Load(req.Baseline)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Baseline file not found, analyzing without it", "path", req.Baseline)
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	filtered := b.Apply(result)
	logger.Debug("Baseline applied",
		"path", req.Baseline,
		"before", result.IssueCount(),
		"after", filtered.IssueCount(),
	)
	return filtered, nil
}

// record stores the run. History is best effort: failures are logged.
func (r *Runner) record(o *Outcome, start time.Time, root string, cfg config.Config, logger *slog.Logger) {
	store := r.history
	if store == nil {
		db, err := storage.Open(paths.HistoryDBPath(root), logger)
		if err != nil {
			logger.Warn("Run history unavailable", "error", err.Error())
			return
		}
		defer func() { _ = db.Close() }()
		store = db
	}

	counts := make(map[string]int)
	for id, findings := range o.Result.Findings() {
		n := 0
		for _, f := range findings {
			if !f.Corrected {
				n++
			}
		}
		counts[id] = n
	}

	run := &storage.Run{
		ID:            o.RunID,
		StartedAt:     start,
		Duration:      o.Duration,
		ProjectRoot:   root,
		ConfigKind:    string(cfg.Kind()),
		IssueCount:    o.Result.IssueCount(),
		WeightedCount: o.Verdict.Count,
		Threshold:     o.Verdict.Threshold,
		Passed:        o.Verdict.Passed(),
		ToolVersion:   version.Version,
		RuleSets:      counts,
		Metrics:       o.Result.Metrics(),
	}
	if err := store.RecordRun(run); err != nil {
		logger.Warn("Failed to record run", "error", err.Error())
	}
}
