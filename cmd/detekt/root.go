package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"detekt/internal/paths"
	"detekt/internal/runner"
	"detekt/internal/settings"
	"detekt/internal/slogutil"
	"detekt/internal/version"
)

const (
	flagInput                  = "input"
	flagConfig                 = "config"
	flagConfigResource         = "config-resource"
	flagFilters                = "filters"
	flagPlugins                = "plugins"
	flagParallel               = "parallel"
	flagDisableDefaultRuleSets = "disable-default-rulesets"
	flagFormatting             = "formatting"
	flagUseTabs                = "use-tabs"
	flagBaseline               = "baseline"
	flagCreateBaseline         = "create-baseline"
	flagReport                 = "report"
	flagBuildUponDefault       = "build-upon-default-config"
	flagHistory                = "history"
	flagLogLevel               = "log-level"
	flagLogFile                = "log-file"
	flagThresholdExitCode      = "threshold-exit-code"
	flagErrorExitCode          = "error-exit-code"
)

// newRootCmd builds the command tree. Every flag is bound into v, so it can
// also be set through a DETEKT_ environment variable, e.g. DETEKT_LOG_LEVEL.
func newRootCmd(v *viper.Viper, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detekt",
		Short: "detekt - static analysis for Kotlin",
		Long: `detekt analyzes Kotlin sources for code smells, complexity and formatting
problems, reports the findings and fails the build when the weighted issue
count exceeds build.maxIssues.

Examples:
  detekt --input src/main/kotlin
  detekt --config detekt.yml --build-upon-default-config --report sarif:build/detekt.sarif
  detekt --formatting --use-tabs
  detekt --baseline config/baseline.xml --create-baseline`,
		Version:       version.Info(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(cmd, v, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate(version.Full() + "\n")

	pf := cmd.PersistentFlags()
	pf.StringP(flagInput, "i", ".", "Project root or single source file to analyze")
	pf.String(flagLogLevel, "warn", "Log level: debug, info, warn, error or silent")
	pf.Bool(flagLogFile, false, "Also append debug logs to .detekt/logs/run.log")
	pf.Int(flagThresholdExitCode, 2, "Exit code when the issue threshold is exceeded")
	pf.Int(flagErrorExitCode, 1, "Exit code on configuration, analysis or report errors")

	f := cmd.Flags()
	f.StringP(flagConfig, "c", "", "Configuration file (yaml, toml or json)")
	f.String(flagConfigResource, "", "Configuration resource: builtin:<name>, file://, http:// or https:// URL")
	f.StringP(flagFilters, "f", "", "';'-separated globs of paths to exclude")
	f.StringP(flagPlugins, "p", "", "';'-separated rule pack files or directories")
	f.Bool(flagParallel, false, "Analyze files in parallel")
	f.Bool(flagDisableDefaultRuleSets, false, "Run only the rule packs given by --plugins")
	f.Bool(flagFormatting, false, "Run in formatting mode: auto-correct everything")
	f.Bool(flagUseTabs, false, "Indent with tabs in formatting mode")
	f.StringP(flagBaseline, "b", "", "Baseline file of findings to ignore")
	f.Bool(flagCreateBaseline, false, "Write the current findings to the --baseline file")
	f.StringArrayP(flagReport, "r", nil, "Report file as type:path, type is txt, json, sarif or xml (repeatable)")
	f.Bool(flagBuildUponDefault, false, "Layer the given configuration over the default one")
	f.Bool(flagHistory, false, "Record the run in .detekt/history.db")
	f.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "auto-correct" {
			name = flagFormatting
		}
		return pflag.NormalizedName(name)
	})

	cmd.AddCommand(newGenerateConfigCmd(stdout), newHistoryCmd(v, stdout))

	_ = v.BindPFlags(pf)
	_ = v.BindPFlags(f)
	v.SetEnvPrefix("DETEKT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return cmd
}

func runAnalysis(cmd *cobra.Command, v *viper.Viper, stdout, stderr io.Writer) error {
	req := requestFrom(v)

	logger, closeLog, err := newLogger(v, req.ProjectRoot, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	r := runner.New(runner.WithLogger(logger), runner.WithOutput(stdout))
	outcome, err := r.Execute(cmd.Context(), req)
	if err != nil {
		return err
	}
	if outcome.Verdict.Failed() {
		fmt.Fprintln(stderr, outcome.Verdict)
		return errThresholdExceeded
	}
	return nil
}

// requestFrom reads the run inputs after flags and environment are merged.
func requestFrom(v *viper.Viper) settings.RunRequest {
	return settings.RunRequest{
		ProjectRoot:            v.GetString(flagInput),
		ConfigPath:             v.GetString(flagConfig),
		ConfigResource:         v.GetString(flagConfigResource),
		Formatting:             v.GetBool(flagFormatting),
		UseTabs:                v.GetBool(flagUseTabs),
		Filters:                v.GetString(flagFilters),
		Rules:                  v.GetString(flagPlugins),
		Parallel:               v.GetBool(flagParallel),
		DisableDefaultRuleSets: v.GetBool(flagDisableDefaultRuleSets),
		BuildUponDefaultConfig: v.GetBool(flagBuildUponDefault),
		Baseline:               v.GetString(flagBaseline),
		CreateBaseline:         v.GetBool(flagCreateBaseline),
		Reports:                v.GetStringSlice(flagReport),
		History:                v.GetBool(flagHistory),
	}
}

// newLogger logs to stderr at the requested level and, with --log-file,
// additionally at debug level to the project's run log.
func newLogger(v *viper.Viper, root string, stderr io.Writer) (*slog.Logger, func(), error) {
	level := slogutil.LevelFromString(v.GetString(flagLogLevel))
	console := slogutil.NewConsoleLogger(stderr, level)
	if !v.GetBool(flagLogFile) {
		return console, func() {}, nil
	}

	fileLogger, f, err := slogutil.NewFileLogger(paths.RunLogPath(root), slog.LevelDebug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open run log: %w", err)
	}
	return slogutil.NewTeeLogger(console.Handler(), fileLogger.Handler()), func() { _ = f.Close() }, nil
}
