package testsupport

import (
	"context"
	"testing"

	"sysctlr/internal/config"
	"sysctlr/internal/journal"
)

// MustOpenJournal opens the journal at cfg.Paths.JournalPath and registers
// cleanup.
func MustOpenJournal(t testing.TB, cfg *config.Config) *journal.Store {
	t.Helper()

	store, err := journal.Open(cfg.Paths.JournalPath)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedRecord writes a successful run for key into store.
func SeedRecord(t testing.TB, store *journal.Store, runID, key, value string, changed bool) journal.Record {
	t.Helper()

	rec, err := store.Record(context.Background(), journal.Record{
		RunID:   runID,
		Key:     key,
		State:   "present",
		Value:   value,
		Changed: changed,
		Outcome: journal.OutcomeOK,
	})
	if err != nil {
		t.Fatalf("record %s: %v", key, err)
	}
	return rec
}
