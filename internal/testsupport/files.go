package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sysctlr/internal/sysctl"
)

// WriteParams lays out parameter files under root, one per key. Values get a
// trailing newline like the kernel prints them.
func WriteParams(t testing.TB, root string, params map[string]string) {
	t.Helper()

	resolver := sysctl.Resolver{Root: root}
	for name, value := range params {
		path := resolver.Resolve(name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", name, err)
		}
		if !strings.HasSuffix(value, "\n") {
			value += "\n"
		}
		if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

// ProcRoot creates a fresh parameter tree holding params and returns its root.
func ProcRoot(t testing.TB, params map[string]string) string {
	t.Helper()

	root := t.TempDir()
	WriteParams(t, root, params)
	return root
}

// StubBinaries writes "exit 0" scripts for names into binDir (a fresh temp
// dir when empty), prepends it to PATH for the rest of the test and returns
// it.
func StubBinaries(t testing.TB, binDir string, names ...string) string {
	t.Helper()

	if len(names) == 0 {
		names = []string{"sysctl"}
	}
	if binDir == "" {
		binDir = t.TempDir()
	}
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	script := []byte("#!/bin/sh\nexit 0\n")
	for _, name := range names {
		target := filepath.Join(binDir, name)
		if err := os.WriteFile(target, script, 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return binDir
}
