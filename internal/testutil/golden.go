// Package testutil provides golden file helpers for tests.
package testutil

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// updateGolden rewrites golden files instead of comparing against them.
// Use: go test ./... -run TestReportFiles -update
var updateGolden = flag.Bool("update", false, "update golden files")

// GoldenPath returns testdata/<name>.golden relative to the test's package.
func GoldenPath(name string) string {
	return filepath.Join("testdata", name+".golden")
}

// CompareGolden compares got against testdata/<name>.golden, failing with a
// diff on mismatch. With -update the golden file is written instead.
func CompareGolden(t *testing.T, name string, got []byte) {
	t.Helper()

	goldenPath := GoldenPath(name)

	if *updateGolden {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
			t.Fatalf("Failed to create testdata directory: %v", err)
		}
		if err := os.WriteFile(goldenPath, got, 0o644); err != nil {
			t.Fatalf("Failed to write golden file: %v", err)
		}
		t.Logf("Updated golden: %s", goldenPath)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("Golden file missing: %s\n\nGot:\n%s\n\nRun with -update to create:\n  go test ./... -run %s -update",
				goldenPath, string(got), t.Name())
		}
		t.Fatalf("Failed to read golden file: %v", err)
	}

	if !bytes.Equal(got, expected) {
		diff := unifiedDiff(string(expected), string(got), goldenPath)
		t.Fatalf("Golden mismatch for %s:\n%s\n\nRun with -update to refresh:\n  go test ./... -run %s -update",
			name, diff, t.Name())
	}
}

// unifiedDiff produces a line-by-line diff with a little leading context.
func unifiedDiff(expected, got, path string) string {
	var buf bytes.Buffer

	expectedLines := strings.Split(expected, "\n")
	gotLines := strings.Split(got, "\n")

	fmt.Fprintf(&buf, "--- %s (expected)\n", path)
	fmt.Fprintf(&buf, "+++ %s (got)\n", path)

	var hunk []string
	hunkStart := -1
	flush := func() {
		if len(hunk) > 0 {
			fmt.Fprintf(&buf, "@@ -%d +%d @@\n", hunkStart+1, hunkStart+1)
			for _, line := range hunk {
				buf.WriteString(line)
				buf.WriteByte('\n')
			}
		}
		hunk = nil
		hunkStart = -1
	}

	for i := 0; i < max(len(expectedLines), len(gotLines)); i++ {
		var exp, cur string
		expOK, curOK := i < len(expectedLines), i < len(gotLines)
		if expOK {
			exp = expectedLines[i]
		}
		if curOK {
			cur = gotLines[i]
		}

		if expOK && curOK && exp == cur {
			if hunkStart >= 0 {
				hunk = append(hunk, " "+exp)
				if len(hunk) > 6 {
					flush()
				}
			}
			continue
		}

		if hunkStart < 0 {
			hunkStart = i
			for j := max(0, i-3); j < min(i, len(expectedLines)); j++ {
				hunk = append(hunk, " "+expectedLines[j])
			}
		}
		if expOK {
			hunk = append(hunk, "-"+exp)
		}
		if curOK {
			hunk = append(hunk, "+"+cur)
		}
	}
	flush()

	return buf.String()
}
