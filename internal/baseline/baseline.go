// Package baseline reads and writes detekt baseline files: XML lists of
// finding ids that are known and should not fail the build.
package baseline

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"detekt/internal/engine"
	derrors "detekt/internal/errors"
)

// Baseline is the content of a baseline file.
type Baseline struct {
	XMLName            xml.Name `xml:"SmellBaseline"`
	ManuallySuppressed []string `xml:"ManuallySuppressedIssues>ID"`
	Current            []string `xml:"CurrentIssues>ID"`
}

// Load reads a baseline file.
func Load(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, invalid(path, "cannot read baseline", err)
	}
	var b Baseline
	if err := xml.Unmarshal(data, &b); err != nil {
		return nil, invalid(path, "malformed baseline", err)
	}
	return &b, nil
}

// FromResult lists the ids of every open finding in result.
func FromResult(result *engine.Detektion) *Baseline {
	var ids []string
	for _, f := range result.AllFindings() {
		if !f.Corrected {
			ids = append(ids, f.BaselineID())
		}
	}
	slices.Sort(ids)
	return &Baseline{Current: slices.Compact(ids)}
}

// Contains reports whether id is listed in either section.
func (b *Baseline) Contains(id string) bool {
	return slices.Contains(b.Current, id) || slices.Contains(b.ManuallySuppressed, id)
}

// Apply returns result without the findings the baseline lists.
func (b *Baseline) Apply(result *engine.Detektion) *engine.Detektion {
	known := make(map[string]bool, len(b.Current)+len(b.ManuallySuppressed))
	for _, id := range b.Current {
		known[id] = true
	}
	for _, id := range b.ManuallySuppressed {
		known[id] = true
	}
	return result.Filter(func(f engine.Finding) bool {
		return !known[f.BaselineID()]
	})
}

// Save writes the baseline, creating parent directories.
func (b *Baseline) Save(path string) error {
	data, err := xml.MarshalIndent(b, "", "  ")
	if err != nil {
		return invalid(path, "cannot encode baseline", err)
	}
	data = append([]byte(xml.Header), append(data, '\n')...)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return invalid(path, "cannot create baseline directory", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return invalid(path, "cannot write baseline", err)
	}
	return nil
}

// Create writes a baseline for result to path. Manual suppressions of an
// existing baseline at path are kept.
func Create(path string, result *engine.Detektion) (*Baseline, error) {
	b := FromResult(result)

	existing, err := Load(path)
	switch {
	case err == nil:
		b.ManuallySuppressed = existing.ManuallySuppressed
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	if err := b.Save(path); err != nil {
		return nil, err
	}
	return b, nil
}

func invalid(path, msg string, cause error) error {
	return derrors.New(derrors.BaselineInvalid, fmt.Sprintf("%s: %s", msg, path), cause).
		WithDetails(map[string]string{"path": path})
}
