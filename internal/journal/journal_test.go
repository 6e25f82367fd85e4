package journal_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"sysctlr/internal/journal"
	"sysctlr/internal/testsupport"
)

func openStore(t *testing.T) *journal.Store {
	t.Helper()
	store, err := journal.Open(filepath.Join(t.TempDir(), "state", "journal.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	exit := 0
	first, err := store.Record(ctx, journal.Record{
		RunID:          "run-1",
		Key:            "vm.swappiness",
		State:          "present",
		Value:          "10",
		File:           "/etc/sysctl.conf",
		Changed:        true,
		ReloadExitCode: &exit,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if first.ID == 0 || first.Outcome != journal.OutcomeOK || first.CreatedAt.IsZero() {
		t.Fatalf("unexpected stored record %#v", first)
	}

	if _, err := store.Record(ctx, journal.Record{
		RunID:   "run-2",
		Key:     "kernel.panic",
		State:   "absent",
		File:    "/etc/sysctl.conf",
		Outcome: "precondition",
		Detail:  "key path invalid",
	}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	records, err := store.Recent(ctx, "", 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Key != "kernel.panic" || records[0].ReloadExitCode != nil {
		t.Fatalf("expected newest record first, got %#v", records[0])
	}
	if records[1].ReloadExitCode == nil || *records[1].ReloadExitCode != 0 || !records[1].Changed {
		t.Fatalf("unexpected first record %#v", records[1])
	}

	filtered, err := store.Recent(ctx, "vm.swappiness", 0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].RunID != "run-1" {
		t.Fatalf("unexpected filtered records %#v", filtered)
	}
}

func TestRecordRequiresRunIDAndKey(t *testing.T) {
	store := openStore(t)
	if _, err := store.Record(context.Background(), journal.Record{Key: "vm.swappiness"}); err == nil {
		t.Fatal("expected error without run id")
	}
}

func TestPrune(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	if _, err := store.Record(ctx, journal.Record{RunID: "old", Key: "a.b", State: "present", Value: "1", File: "f", CreatedAt: old}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Record(ctx, journal.Record{RunID: "new", Key: "a.b", State: "present", Value: "2", File: "f"}); err != nil {
		t.Fatal(err)
	}

	removed, err := store.Prune(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	records, err := store.Recent(ctx, "a.b", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].RunID != "new" {
		t.Fatalf("unexpected remaining records %#v", records)
	}
}

func TestReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := journal.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Record(context.Background(), journal.Record{RunID: "r", Key: "k.v", State: "present", Value: "1", File: "f"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := journal.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	records, err := reopened.Recent(context.Background(), "", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected record to survive reopen, got %d", len(records))
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := journal.Open(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := journal.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := journal.Open(path); !errors.Is(err, journal.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestRecentFiltersByKey(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithJournal())
	store := testsupport.MustOpenJournal(t, cfg)

	testsupport.SeedRecord(t, store, "run-1", "vm.swappiness", "10", true)
	testsupport.SeedRecord(t, store, "run-2", "kernel.panic", "5", true)
	testsupport.SeedRecord(t, store, "run-3", "vm.swappiness", "10", false)

	records, err := store.Recent(context.Background(), "vm.swappiness", journal.DefaultLimit)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records for vm.swappiness, got %d", len(records))
	}
	if records[0].RunID != "run-3" || records[0].Changed {
		t.Fatalf("expected newest unchanged run first, got %#v", records[0])
	}
	if store.Path() != cfg.Paths.JournalPath {
		t.Fatalf("store path = %q, want %q", store.Path(), cfg.Paths.JournalPath)
	}
}
