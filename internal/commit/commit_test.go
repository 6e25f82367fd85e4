package commit

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sysctlr/internal/sysctl"
)

func TestCommitPreservesMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sysctl.conf")
	if err := os.WriteFile(path, []byte("vm.swappiness = 60\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, 0o640); err != nil {
		t.Fatal(err)
	}

	c := New(nil)
	if err := c.Commit([]string{"# tuned\n", "vm.swappiness = 10\n"}, path); err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "# tuned\nvm.swappiness = 10\n" {
		t.Fatalf("unexpected content %q", got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Fatalf("mode = %o, want 640", info.Mode().Perm())
	}
}

func TestCommitMissingDirectoryIsIOError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "sysctl.conf")
	err := New(nil).Commit([]string{"a = 1\n"}, path)
	if sysctl.KindOf(err) != sysctl.KindIO {
		t.Fatalf("expected io error, got %v", err)
	}
}

func TestPrepareAndReadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "99-local.conf")
	c := New(nil)

	if err := c.Prepare(path); err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	lines, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines returned error: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no lines, got %q", lines)
	}

	if err := os.WriteFile(path, []byte("a = 1\n\n# c\nb = 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	lines, err = ReadLines(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a = 1\n", "\n", "# c\n", "b = 2"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("lines = %q, want %q", lines, want)
	}
}

func TestReadLinesMissingFile(t *testing.T) {
	_, err := ReadLines(filepath.Join(t.TempDir(), "absent.conf"))
	if sysctl.KindOf(err) != sysctl.KindIO || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped not-exist io error, got %v", err)
	}
}

func TestBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sysctl.conf")
	if err := os.WriteFile(path, []byte("kernel.panic = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	backup, err := New(nil).Backup(path)
	if err != nil {
		t.Fatalf("Backup returned error: %v", err)
	}
	got, err := os.ReadFile(backup)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "kernel.panic = 3\n" {
		t.Fatalf("unexpected backup content %q", got)
	}
}
