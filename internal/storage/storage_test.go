package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	derrors "detekt/internal/errors"
	"detekt/internal/slogutil"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), ".detekt", "history.db"), slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRecordAndGetRun(t *testing.T) {
	db := openTestDB(t)
	started := time.Date(2024, 3, 1, 12, 0, 0, 500, time.UTC)

	run := &Run{
		ID:            "11111111-2222-3333-4444-555555555555",
		StartedAt:     started,
		Duration:      1500 * time.Millisecond,
		ProjectRoot:   "/work/app",
		ConfigKind:    "file",
		IssueCount:    4,
		WeightedCount: 6,
		Threshold:     5,
		Passed:        false,
		ToolVersion:   "1.23.0",
		RuleSets:      map[string]int{"complexity": 3, "formatting": 1},
		Metrics:       map[string]int{"lloc": 120, "mcc": 17},
	}
	if err := db.RecordRun(run); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	got, err := db.GetRun(run.ID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if diff := cmp.Diff(run, got); diff != "" {
		t.Errorf("GetRun() mismatch (-want +got):\n%s", diff)
	}

	missing, err := db.GetRun("nope")
	if err != nil || missing != nil {
		t.Errorf("GetRun(unknown) = %v, %v; want nil, nil", missing, err)
	}
}

func TestRecordRun_DuplicateID(t *testing.T) {
	db := openTestDB(t)
	run := &Run{ID: "dup", StartedAt: time.Now(), RuleSets: map[string]int{"a": 1}}

	if err := db.RecordRun(run); err != nil {
		t.Fatal(err)
	}
	err := db.RecordRun(run)
	if !derrors.HasCode(err, derrors.HistoryUnavailable) {
		t.Errorf("duplicate RecordRun() error = %v, want %s", err, derrors.HistoryUnavailable)
	}
}

func TestListRuns(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		run := &Run{ID: id, StartedAt: base.Add(time.Duration(i) * time.Hour), Passed: i%2 == 0}
		if err := db.RecordRun(run); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := db.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	var ids []string
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]string{"c", "b", "a"}, ids); diff != "" {
		t.Errorf("ListRuns() order (-want +got):\n%s", diff)
	}
	if !runs[0].Passed || runs[1].Passed {
		t.Error("passed flag not round-tripped")
	}

	limited, err := db.ListRuns(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 || limited[0].ID != "c" {
		t.Errorf("ListRuns(2) = %d runs", len(limited))
	}
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	logger := slogutil.NewDiscardLogger()

	db, err := Open(path, logger)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.RecordRun(&Run{ID: "x", StartedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	db, err = Open(path, logger)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	runs, err := db.ListRuns(0)
	if err != nil || len(runs) != 1 {
		t.Errorf("after reopen: %d runs, err %v", len(runs), err)
	}
	if db.Path() != path {
		t.Errorf("Path() = %q", db.Path())
	}
}
