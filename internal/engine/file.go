package engine

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"detekt/internal/complexity"
)

// File is one source file handed to rules and processors. Content may be
// replaced by auto-correcting rules; the engine writes modified files back
// after all rules have run.
type File struct {
	// Path is the absolute filesystem path.
	Path string
	// RelPath is relative to the project root, slash-separated.
	RelPath string

	mu       sync.Mutex
	content  []byte
	modified bool

	once     sync.Once
	funcs    []complexity.FunctionMetrics
	funcsErr error
}

// NewFile wraps the content read from path.
func NewFile(path, relPath string, content []byte) *File {
	return &File{Path: path, RelPath: relPath, content: content}
}

// Content returns the current content.
func (f *File) Content() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.content
}

// Lines splits the current content into lines without terminators. A final
// newline does not produce a trailing empty line.
func (f *File) Lines() []string {
	content := f.Content()
	if len(content) == 0 {
		return nil
	}
	text := strings.TrimSuffix(string(content), "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// LineEnding returns the terminator of the first line, "\r\n" or "\n".
// Files without any newline use "\n".
func (f *File) LineEnding() string {
	content := f.Content()
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// Rewrite replaces the content. It is a no-op when nothing changed.
func (f *File) Rewrite(content []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if bytes.Equal(f.content, content) {
		return
	}
	f.content = content
	f.modified = true
}

// Modified reports whether Rewrite changed the content.
func (f *File) Modified() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.modified
}

// Functions returns the complexity metrics of the functions declared in the
// file. The analysis runs once, on the content at the time of the first
// call, and is shared by every rule and processor.
func (f *File) Functions() ([]complexity.FunctionMetrics, error) {
	f.once.Do(func() {
		lang, ok := complexity.LanguageFromPath(f.Path)
		if !ok {
			return
		}
		fm, err := complexity.NewAnalyzer().AnalyzeSource(context.Background(), f.Path, f.Content(), lang)
		if err != nil {
			f.funcsErr = err
			return
		}
		f.funcs = fm.Functions
	})
	return f.funcs, f.funcsErr
}
