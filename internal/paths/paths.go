package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// DetektDirName is the per-project state directory.
const DetektDirName = ".detekt"

// NormalizePath converts backslashes to forward slashes
func NormalizePath(path string) string {
	return strings.ReplaceAll(filepath.ToSlash(path), "\\", "/")
}

// DetektDir returns <projectRoot>/.detekt. When projectRoot names a
// regular file the state directory lives next to it.
func DetektDir(projectRoot string) string {
	return filepath.Join(StateRoot(projectRoot), DetektDirName)
}

// StateRoot returns the directory that holds the state of projectRoot:
// projectRoot itself, or its parent when it is a file.
func StateRoot(projectRoot string) string {
	if info, err := os.Stat(projectRoot); err == nil && !info.IsDir() {
		return filepath.Dir(projectRoot)
	}
	return projectRoot
}

// HistoryDBPath returns the run history database location.
func HistoryDBPath(projectRoot string) string {
	return filepath.Join(DetektDir(projectRoot), "history.db")
}

// RunLogPath returns the file the CLI appends run logs to.
func RunLogPath(projectRoot string) string {
	return filepath.Join(DetektDir(projectRoot), "logs", "run.log")
}
