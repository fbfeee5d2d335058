package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/viper"

	derrors "detekt/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	v := viper.New()
	cmd := newRootCmd(v, stdout, stderr)
	cmd.SetArgs(args)
	return exitCode(cmd.ExecuteContext(ctx), v, stderr)
}

// errThresholdExceeded marks a completed run whose findings failed the gate.
var errThresholdExceeded = errors.New("build failed")

func exitCode(err error, v *viper.Viper, stderr io.Writer) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errThresholdExceeded):
		return v.GetInt(flagThresholdExitCode)
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		printFixes(stderr, err)
		return v.GetInt(flagErrorExitCode)
	}
}

// printFixes lists the suggested fixes attached to a coded error.
func printFixes(w io.Writer, err error) {
	var de *derrors.DetektError
	if !errors.As(err, &de) {
		return
	}
	for _, fix := range de.SuggestedFixes {
		if fix.Command != "" {
			fmt.Fprintf(w, "  Fix: %s\n    %s\n", fix.Description, fix.Command)
		} else {
			fmt.Fprintf(w, "  Fix: %s\n", fix.Description)
		}
	}
}
