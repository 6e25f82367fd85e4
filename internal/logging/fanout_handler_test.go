package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestNewFanoutHandlerCollapses(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}

	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newFanoutHandler(nil, inner); h != inner {
		t.Fatal("expected single handler to be returned unwrapped")
	}
}

func TestFanoutHandlerRespectsLevel(t *testing.T) {
	var console, file bytes.Buffer
	h := newFanoutHandler(
		slog.NewJSONHandler(&console, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewJSONHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug to be enabled through the file handler")
	}

	slog.New(h).Debug("probe")
	if console.Len() != 0 {
		t.Fatalf("warn-level handler received debug record: %q", console.String())
	}
	if file.Len() == 0 {
		t.Fatal("debug-level handler received nothing")
	}
}

func TestFanoutHandlerPropagatesAttrsAndGroups(t *testing.T) {
	var a, b bytes.Buffer
	h := newFanoutHandler(slog.NewJSONHandler(&a, nil), slog.NewJSONHandler(&b, nil))

	slog.New(h.WithAttrs([]slog.Attr{slog.String("key", "vm.swappiness")}).WithGroup("check")).
		Info("verified", slog.String("phase", "after"))

	for name, buf := range map[string]*bytes.Buffer{"a": &a, "b": &b} {
		out := buf.Bytes()
		if !bytes.Contains(out, []byte(`"key":"vm.swappiness"`)) || !bytes.Contains(out, []byte(`"check":{"phase":"after"}`)) {
			t.Fatalf("handler %s missing attrs or group: %s", name, out)
		}
	}
}
