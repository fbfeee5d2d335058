//go:build !cgo

package complexity

import (
	"context"
	"errors"
)

// ErrNoCGO is returned when complexity analysis is unavailable due to missing CGO.
var ErrNoCGO = errors.New("complexity analysis requires CGO (tree-sitter)")

// Analyzer is the non-CGO stand-in; every call returns ErrNoCGO.
type Analyzer struct{}

// NewAnalyzer returns an analyzer that always fails with ErrNoCGO.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// AnalyzeFile returns ErrNoCGO.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*FileMetrics, error) {
	return nil, ErrNoCGO
}

// AnalyzeSource returns ErrNoCGO.
func (a *Analyzer) AnalyzeSource(ctx context.Context, path string, source []byte, lang Language) (*FileMetrics, error) {
	return nil, ErrNoCGO
}

// IsAvailable returns false when CGO is disabled.
func IsAvailable() bool {
	return false
}
