// Package version holds the build identity of the detekt binary.
package version

import "runtime/debug"

// Overridden at build time:
// go build -ldflags "-X detekt/internal/version.Version=1.23.0 -X detekt/internal/version.Commit=abc123"
var (
	Version   = "1.23.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Name is the tool name used in reports and user agents.
const Name = "detekt"

// Info returns the version with a short commit suffix when known.
func Info() string {
	commit := Commit
	if commit == "unknown" {
		commit = vcsRevision()
	}
	if commit != "unknown" && len(commit) > 7 {
		return Version + " (" + commit[:7] + ")"
	}
	return Version
}

// Full returns the multi-line version banner.
func Full() string {
	return Name + " version " + Version + "\n" +
		"Commit: " + Commit + "\n" +
		"Built: " + BuildDate
}

// UserAgent identifies remote configuration downloads.
func UserAgent() string {
	return Name + "/" + Version
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value
		}
	}
	return "unknown"
}
