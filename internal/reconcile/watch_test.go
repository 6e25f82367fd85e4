package reconcile

import (
	"context"
	"os"
	"testing"
	"time"

	"sysctlr/internal/sysctl"
)

func TestWatcherRestoresEditedFile(t *testing.T) {
	f := newFixture(t, "", map[string]string{"vm.swappiness": "60"})
	rec := f.reconciler(nil)
	req := f.request(sysctl.NewEntry("vm.swappiness", "5", sysctl.StatePresent), sysctl.ChecksNone, false)

	w := NewWatcher(rec, []Request{req}, 20*time.Millisecond, nil)
	w.applied = make(chan []Result, 8)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	waitPass(t, w.applied)
	if got := f.content(t); got != "vm.swappiness = 5\n" {
		t.Fatalf("initial pass did not apply: %q", got)
	}

	if err := os.WriteFile(f.file, []byte("vm.swappiness = 99\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-w.applied:
			if f.content(t) == "vm.swappiness = 5\n" {
				return
			}
		case <-deadline:
			t.Fatalf("drift was not corrected, content %q", f.content(t))
		}
	}
}

func TestWatcherRequiresRequests(t *testing.T) {
	w := NewWatcher(New(Options{}), nil, 0, nil)
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected error without requests")
	}
	if w.debounce != defaultDebounce {
		t.Fatalf("debounce = %v, want %v", w.debounce, defaultDebounce)
	}
}

func waitPass(t *testing.T, ch <-chan []Result) []Result {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a reconciliation pass")
		return nil
	}
}
