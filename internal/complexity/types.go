// Package complexity computes per-function complexity metrics for Kotlin and
// Java sources via tree-sitter.
package complexity

import (
	"path/filepath"
	"strings"
)

// Language is a language the analyzer can parse.
type Language string

const (
	LangKotlin Language = "kotlin"
	LangJava   Language = "java"
)

// FunctionMetrics holds the metrics of one function, constructor or lambda.
type FunctionMetrics struct {
	// Name is the declared name, or <anonymous> for lambdas
	Name string `json:"name"`

	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`

	// Lines spans StartLine..EndLine inclusive
	Lines int `json:"lines"`

	// Cyclomatic is McCabe complexity: decision points + 1
	Cyclomatic int `json:"cyclomatic"`

	// Cognitive weights each decision point by its nesting depth
	Cognitive int `json:"cognitive"`
}

// FileMetrics aggregates the function metrics of one source file.
type FileMetrics struct {
	Path      string            `json:"path"`
	Language  Language          `json:"language"`
	Functions []FunctionMetrics `json:"functions"`

	TotalCyclomatic int `json:"totalCyclomatic"`
	TotalCognitive  int `json:"totalCognitive"`
	MaxCyclomatic   int `json:"maxCyclomatic"`
	MaxCognitive    int `json:"maxCognitive"`
	FunctionCount   int `json:"functionCount"`
}

// Aggregate recomputes the file totals from Functions.
func (fm *FileMetrics) Aggregate() {
	fm.FunctionCount = len(fm.Functions)
	fm.TotalCyclomatic, fm.TotalCognitive = 0, 0
	fm.MaxCyclomatic, fm.MaxCognitive = 0, 0

	for _, f := range fm.Functions {
		fm.TotalCyclomatic += f.Cyclomatic
		fm.TotalCognitive += f.Cognitive
		fm.MaxCyclomatic = max(fm.MaxCyclomatic, f.Cyclomatic)
		fm.MaxCognitive = max(fm.MaxCognitive, f.Cognitive)
	}
}

// AverageCyclomatic returns the mean cyclomatic complexity, 0 without functions.
func (fm *FileMetrics) AverageCyclomatic() float64 {
	if fm.FunctionCount == 0 {
		return 0
	}
	return float64(fm.TotalCyclomatic) / float64(fm.FunctionCount)
}

// LanguageFromPath returns the Language for a file name.
func LanguageFromPath(path string) (Language, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".kt", ".kts":
		return LangKotlin, true
	case ".java":
		return LangJava, true
	default:
		return "", false
	}
}
