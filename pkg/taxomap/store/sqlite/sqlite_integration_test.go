package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognicore/taxomap/pkg/taxomap/store"
)

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSchemaCreationIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open database: %v", err)
	}
	defer db.Close()

	for i := 0; i < 3; i++ {
		if err := initSchema(ctx, db); err != nil {
			t.Fatalf("initSchema iteration %d: %v", i, err)
		}
	}

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&count)
	if err != nil {
		t.Fatalf("Count tables: %v", err)
	}
	if count != 2 { // runs, run_rows
		t.Errorf("Expected 2 tables, got %d", count)
	}
}

func TestSaveRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	started := time.Date(2024, 3, 1, 10, 0, 0, 123, time.UTC)
	run := store.Run{
		ID:              "01HQRUN",
		Country:         "NL",
		Threshold:       80,
		Consolidated:    true,
		StartedAt:       started,
		FinishedAt:      started.Add(2 * time.Second),
		TotalRecords:    4,
		MatchedRecords:  3,
		UnmappedRecords: 1,
		OutputRows:      7,
	}
	rows := []store.Row{
		{URL: "a", Product: "Boekhouden", Domain: "Facturatie", Segment: "Facturatie", Topic: "Facturatie", Promoted: true},
		{URL: "a", Product: "Boekhouden", Domain: "Facturatie", Segment: "Facturatie", Topic: "Verkoopfacturen", Score: 100, Keyword: "factuur"},
		{URL: "b", Product: "Boekhouden", Domain: "UNMAPPED"},
	}
	if err := st.SaveRun(ctx, run, rows); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, found, err := st.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if !found {
		t.Fatal("run not found")
	}
	if !got.StartedAt.Equal(run.StartedAt) || !got.FinishedAt.Equal(run.FinishedAt) {
		t.Errorf("times not preserved: %+v", got)
	}
	got.StartedAt, got.FinishedAt = run.StartedAt, run.FinishedAt
	if got != run {
		t.Errorf("run mismatch:\n got %+v\nwant %+v", got, run)
	}

	stored, err := st.RunRows(ctx, run.ID)
	if err != nil {
		t.Fatalf("RunRows: %v", err)
	}
	if len(stored) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(stored))
	}
	for i := range rows {
		if stored[i] != rows[i] {
			t.Errorf("row %d: got %+v want %+v", i, stored[i], rows[i])
		}
	}
}

func TestSaveRunReplaces(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	run := store.Run{ID: "r1", StartedAt: time.Now(), FinishedAt: time.Now()}
	if err := st.SaveRun(ctx, run, []store.Row{{URL: "a"}, {URL: "b"}}); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := st.SaveRun(ctx, run, []store.Row{{URL: "c"}}); err != nil {
		t.Fatalf("SaveRun again: %v", err)
	}

	rows, err := st.RunRows(ctx, "r1")
	if err != nil {
		t.Fatalf("RunRows: %v", err)
	}
	if len(rows) != 1 || rows[0].URL != "c" {
		t.Errorf("expected replaced rows, got %+v", rows)
	}
}

func TestGetRunMissing(t *testing.T) {
	st := openTestStore(t)
	_, found, err := st.GetRun(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if found {
		t.Error("expected missing run")
	}
}

func TestListRunsOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"r1", "r2", "r3"} {
		at := base.Add(time.Duration(i) * time.Minute)
		if err := st.SaveRun(ctx, store.Run{ID: id, StartedAt: at, FinishedAt: at}, nil); err != nil {
			t.Fatalf("SaveRun %s: %v", id, err)
		}
	}

	runs, err := st.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "r3" || runs[1].ID != "r2" {
		t.Errorf("unexpected order: %s, %s", runs[0].ID, runs[1].ID)
	}

	all, err := st.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns default: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 runs with default limit, got %d", len(all))
	}
}
