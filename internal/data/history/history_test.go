package history

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestStore_SaveAndLoadRuns(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	base := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)
	first, err := store.SaveRun("shop", Run{Timestamp: base, FileCount: 10, TagCount: 40, CheckedCount: 12, DiagnosticCount: 3})
	if err != nil {
		t.Fatalf("save first run: %v", err)
	}
	if _, err := uuid.Parse(first.ID); err != nil {
		t.Fatalf("expected uuid run id, got %q", first.ID)
	}
	if first.ProjectKey != "shop" {
		t.Fatalf("expected project key shop, got %q", first.ProjectKey)
	}

	if _, err := store.SaveRun("shop", Run{Timestamp: base.Add(time.Hour), FileCount: 11, DiagnosticCount: 1, DurationMillis: 42}); err != nil {
		t.Fatalf("save second run: %v", err)
	}
	if _, err := store.SaveRun("other", Run{Timestamp: base.Add(time.Hour), DiagnosticCount: 9}); err != nil {
		t.Fatalf("save other project: %v", err)
	}

	all, err := store.LoadRuns("shop", time.Time{})
	if err != nil {
		t.Fatalf("load runs: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 runs for shop, got %d", len(all))
	}
	if all[0].ID != first.ID || all[0].TagCount != 40 || all[0].CheckedCount != 12 {
		t.Fatalf("first run did not roundtrip: %+v", all[0])
	}
	if all[1].DurationMillis != 42 {
		t.Fatalf("expected duration to roundtrip, got %+v", all[1])
	}

	recent, err := store.LoadRuns("shop", base.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("load recent runs: %v", err)
	}
	if len(recent) != 1 || recent[0].DiagnosticCount != 1 {
		t.Fatalf("expected only the second run after since filter, got %+v", recent)
	}
}

func TestStore_SaveRunUpsertsByID(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	run, err := store.SaveRun("", Run{DiagnosticCount: 5})
	if err != nil {
		t.Fatal(err)
	}
	if run.ProjectKey != "default" {
		t.Fatalf("expected default project key, got %q", run.ProjectKey)
	}
	run.DiagnosticCount = 2
	if _, err := store.SaveRun("", run); err != nil {
		t.Fatal(err)
	}

	runs, err := store.LoadRuns("default", time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].DiagnosticCount != 2 {
		t.Fatalf("expected single upserted run, got %+v", runs)
	}
}

func TestStore_OpenRejectsDirectoryPath(t *testing.T) {
	_, err := Open(t.TempDir())
	if err == nil {
		t.Fatal("expected open error for directory path")
	}
	if !strings.Contains(err.Error(), "is a directory") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStore_OpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestStore_OpenCorruptDBPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	if err := os.WriteFile(path, []byte("this is not sqlite"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path)
	if err == nil {
		t.Fatal("expected sqlite open error")
	}
	lower := strings.ToLower(err.Error())
	if !strings.Contains(lower, "not a database") && !strings.Contains(lower, "schema") {
		t.Fatalf("expected schema/open error, got: %v", err)
	}
}

func TestEnsureSchema_DetectsNewerVersionDrift(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := store.db.Exec(`INSERT OR REPLACE INTO schema_migrations(version) VALUES (?)`, SchemaVersion+1); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open(driverName, "file:"+path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	err = EnsureSchema(db)
	if err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Fatalf("expected drift error, got %v", err)
	}
}

func TestBuildTrend(t *testing.T) {
	if got := BuildTrend(nil); got != (Trend{}) {
		t.Fatalf("expected zero trend, got %+v", got)
	}

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	trend := BuildTrend([]Run{
		{Timestamp: base, FileCount: 100, DiagnosticCount: 8},
		{Timestamp: base.Add(24 * time.Hour), FileCount: 104, DiagnosticCount: 12},
		{Timestamp: base.Add(48 * time.Hour), FileCount: 103, DiagnosticCount: 4},
	})
	if trend.Runs != 3 || trend.DiagnosticDelta != -4 || trend.FileDelta != 3 {
		t.Fatalf("unexpected trend: %+v", trend)
	}
	if trend.PeakDiagnostics != 12 || trend.AvgDiagnostics != 8 {
		t.Fatalf("unexpected aggregates: %+v", trend)
	}
	if !trend.Since.Equal(base) || !trend.Until.Equal(base.Add(48*time.Hour)) {
		t.Fatalf("unexpected window: %v..%v", trend.Since, trend.Until)
	}
}
