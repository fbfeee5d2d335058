// Package processors holds the file-process listeners that every run
// registers: line metrics, complexity metrics and console progress.
package processors

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"detekt/internal/engine"
)

// Project metric keys.
const (
	MetricLOC   = "loc"
	MetricLLOC  = "lloc"
	MetricMCC   = "mcc"
	MetricFiles = "files"
)

// Defaults returns the processors of a run in registration order:
// LLOC, Complexity, Progress.
func Defaults(progress io.Writer) []engine.FileProcessListener {
	return []engine.FileProcessListener{
		NewLLOC(),
		NewComplexity(),
		NewProgress(progress),
	}
}

// LLOC counts physical and logical lines. A logical line is neither blank
// nor part of a comment.
type LLOC struct {
	loc  atomic.Int64
	lloc atomic.Int64
}

// NewLLOC returns a line counter with zeroed totals.
func NewLLOC() *LLOC { return &LLOC{} }

// OnStart resets the totals.
func (p *LLOC) OnStart(files []*engine.File) {
	p.loc.Store(0)
	p.lloc.Store(0)
}

// OnProcess adds the physical and logical lines of file.
func (p *LLOC) OnProcess(file *engine.File) {
	lines := file.Lines()
	p.loc.Add(int64(len(lines)))
	p.lloc.Add(int64(logicalLines(lines)))
}

// OnFinish records the file, loc and lloc metrics.
func (p *LLOC) OnFinish(files []*engine.File, result *engine.Detektion) {
	result.AddMetric(MetricFiles, len(files))
	result.AddMetric(MetricLOC, int(p.loc.Load()))
	result.AddMetric(MetricLLOC, int(p.lloc.Load()))
}

func logicalLines(lines []string) int {
	n := 0
	inBlock := false
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if inBlock {
			if i := strings.Index(line, "*/"); i >= 0 {
				inBlock = false
				line = strings.TrimSpace(line[i+2:])
			} else {
				continue
			}
		}
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "/*") {
			if i := strings.Index(line[2:], "*/"); i >= 0 {
				if strings.TrimSpace(line[i+4:]) != "" {
					n++
				}
				continue
			}
			inBlock = true
			continue
		}
		n++
	}
	return n
}

// Complexity sums the cyclomatic complexity of every function.
type Complexity struct {
	mcc atomic.Int64

	mu  sync.Mutex
	err error
}

// NewComplexity returns a complexity summer with a zero total.
func NewComplexity() *Complexity { return &Complexity{} }

// OnStart resets the total and the first analysis error.
func (p *Complexity) OnStart(files []*engine.File) {
	p.mcc.Store(0)
	p.mu.Lock()
	p.err = nil
	p.mu.Unlock()
}

// OnProcess adds the cyclomatic complexity of every function in file.
// Only the first analysis error is kept.
func (p *Complexity) OnProcess(file *engine.File) {
	funcs, err := file.Functions()
	if err != nil {
		p.mu.Lock()
		if p.err == nil {
			p.err = err
		}
		p.mu.Unlock()
		return
	}
	total := 0
	for _, f := range funcs {
		total += f.Cyclomatic
	}
	p.mcc.Add(int64(total))
}

// OnFinish records the mcc metric and notes incomplete analysis.
func (p *Complexity) OnFinish(files []*engine.File, result *engine.Detektion) {
	p.mu.Lock()
	if p.err != nil {
		result.AddNotification(fmt.Sprintf("complexity metrics incomplete: %v", p.err))
	}
	p.mu.Unlock()
	result.AddMetric(MetricMCC, int(p.mcc.Load()))
}

// Progress prints one dot per processed file and a newline at the end.
type Progress struct {
	mu  sync.Mutex
	out io.Writer
}

// NewProgress writes to out; a nil writer disables output.
func NewProgress(out io.Writer) *Progress {
	if out == nil {
		out = io.Discard
	}
	return &Progress{out: out}
}

// OnStart does nothing.
func (p *Progress) OnStart(files []*engine.File) {}

// OnProcess prints a dot.
func (p *Progress) OnProcess(file *engine.File) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = io.WriteString(p.out, ".")
}

// OnFinish ends the dot line when any file was processed.
func (p *Progress) OnFinish(files []*engine.File, result *engine.Detektion) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(files) > 0 {
		_, _ = io.WriteString(p.out, "\n")
	}
}
