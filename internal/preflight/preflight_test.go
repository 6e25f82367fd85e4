package preflight

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/sys/unix"

	"sysctlr/internal/config"
	"sysctlr/internal/sysctl"
	"sysctlr/internal/testsupport"
)

// denyWrites behaves like unix.Access but reports every W_OK probe as denied.
func denyWrites(path string, mode uint32) error {
	if mode&unix.W_OK != 0 {
		return unix.EACCES
	}
	return unix.Access(path, mode)
}

func present(name, value string) sysctl.Entry {
	return sysctl.NewEntry(name, value, sysctl.StatePresent)
}

func TestCheckBeforePasses(t *testing.T) {
	root := testsupport.ProcRoot(t, map[string]string{"vm.swappiness": "60\n"})
	checker := Checker{Resolver: sysctl.Resolver{Root: root}}

	if err := checker.CheckBefore(present("vm.swappiness", "10"), sysctl.ChecksBoth, true); err != nil {
		t.Fatalf("CheckBefore returned error: %v", err)
	}
}

func TestCheckBeforeOrdering(t *testing.T) {
	root := testsupport.ProcRoot(t, map[string]string{"kernel.ro": "1\n"})
	checker := Checker{Resolver: sysctl.Resolver{Root: root}, Access: denyWrites}

	tests := []struct {
		name   string
		entry  sysctl.Entry
		checks sysctl.CheckMode
		reload bool
		kind   sysctl.Kind
		want   error
	}{
		{"missing name", present("", "1"), sysctl.ChecksBoth, true, sysctl.KindCoherence, sysctl.ErrNameRequired},
		{"absent with value", sysctl.NewEntry("kernel.ro", "1", sysctl.StateAbsent), sysctl.ChecksBoth, true, sysctl.KindCoherence, sysctl.ErrValueWithAbsent},
		{"present without value", present("kernel.ro", ""), sysctl.ChecksBoth, true, sysctl.KindCoherence, sysctl.ErrValueRequired},
		{"after without reload", present("kernel.ro", "1"), sysctl.ChecksAfter, false, sysctl.KindConfiguration, sysctl.ErrAfterNeedsLoad},
		{"both without reload", present("no.such.key", "1"), sysctl.ChecksBoth, false, sysctl.KindConfiguration, sysctl.ErrAfterNeedsLoad},
		{"missing key", present("no.such.key", "1"), sysctl.ChecksBefore, true, sysctl.KindPrecondition, sysctl.ErrKeyPathInvalid},
		{"directory key", present("kernel", "1"), sysctl.ChecksBefore, true, sysctl.KindPrecondition, sysctl.ErrKeyPathInvalid},
		{"read only", present("kernel.ro", "1"), sysctl.ChecksBefore, true, sysctl.KindPrecondition, sysctl.ErrKeyReadOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checker.CheckBefore(tt.entry, tt.checks, tt.reload)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if kind := sysctl.KindOf(err); kind != tt.kind {
				t.Fatalf("expected kind %s, got %s", tt.kind, kind)
			}
		})
	}
}

func TestCheckBeforeSkipsWriteProbeWithoutBeforeChecks(t *testing.T) {
	root := testsupport.ProcRoot(t, map[string]string{"kernel.ro": "1\n"})
	checker := Checker{Resolver: sysctl.Resolver{Root: root}, Access: denyWrites}

	for _, mode := range []sysctl.CheckMode{sysctl.ChecksNone, sysctl.ChecksAfter} {
		if err := checker.CheckBefore(present("kernel.ro", "1"), mode, true); err != nil {
			t.Fatalf("checks=%s: unexpected error %v", mode, err)
		}
	}
}

func TestCheckBeforeReadOnlyFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses permission bits")
	}
	root := testsupport.ProcRoot(t, map[string]string{"kernel.ro": "1\n"})
	if err := os.Chmod(filepath.Join(root, "kernel", "ro"), 0o444); err != nil {
		t.Fatal(err)
	}
	checker := Checker{Resolver: sysctl.Resolver{Root: root}}

	err := checker.CheckBefore(present("kernel.ro", "1"), sysctl.ChecksBefore, false)
	if !errors.Is(err, sysctl.ErrKeyReadOnly) {
		t.Fatalf("expected read-only error, got %v", err)
	}
}

func TestCheckAfter(t *testing.T) {
	root := testsupport.ProcRoot(t, map[string]string{
		"vm.swappiness":                "10\n",
		"net.ipv4.ip_local_port_range": "32768\t60999\n",
	})
	checker := Checker{Resolver: sysctl.Resolver{Root: root}}

	tests := []struct {
		name   string
		entry  sysctl.Entry
		checks sysctl.CheckMode
		want   error
	}{
		{"match", present("vm.swappiness", "10"), sysctl.ChecksAfter, nil},
		{"whitespace list", present("net.ipv4.ip_local_port_range", "32768   60999"), sysctl.ChecksBoth, nil},
		{"mismatch", present("vm.swappiness", "60"), sysctl.ChecksAfter, sysctl.ErrValueNotApplied},
		{"disabled", present("vm.swappiness", "60"), sysctl.ChecksBefore, nil},
		{"absent readable", sysctl.NewEntry("vm.swappiness", "", sysctl.StateAbsent), sysctl.ChecksAfter, nil},
		{"missing key", present("vm.missing", "1"), sysctl.ChecksAfter, sysctl.ErrKeyPathInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checker.CheckAfter(tt.entry, tt.checks)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCheckAfterMismatchIsPostcondition(t *testing.T) {
	root := testsupport.ProcRoot(t, map[string]string{"vm.swappiness": "60\n"})
	checker := Checker{Resolver: sysctl.Resolver{Root: root}}

	err := checker.CheckAfter(present("vm.swappiness", "10"), sysctl.ChecksBoth)
	if sysctl.KindOf(err) != sysctl.KindPostcondition {
		t.Fatalf("expected postcondition error, got %v", err)
	}
	if !strings.Contains(err.Error(), `"60"`) {
		t.Fatalf("expected live value in message, got %q", err.Error())
	}
}

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir, unix.R_OK|unix.W_OK|unix.X_OK)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"), unix.R_OK)
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f, unix.R_OK)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithParams(map[string]string{"vm.swappiness": "60"}),
		testsupport.WithStubbedBinaries("sysctl"),
	)
	cfg.Entries = []config.Entry{
		{Name: "vm.swappiness", Value: "10", File: cfg.Paths.SysctlFile},
		{Name: "kernel.panic", Value: "5", File: filepath.Join(testsupport.BaseDir(cfg), "missing", "99-panic.conf")},
	}

	results := RunAll(cfg)
	byName := map[string][]Result{}
	for _, r := range results {
		byName[r.Name] = append(byName[r.Name], r)
	}

	if r := byName["Parameter root"]; len(r) != 1 || !r[0].Passed {
		t.Fatalf("parameter root: %#v", r)
	}
	if r := byName["Sysctl file directory"]; len(r) != 1 || !r[0].Passed {
		t.Fatalf("sysctl file directory: %#v", r)
	}
	if r := byName["Manifest file directory"]; len(r) != 1 || r[0].Passed {
		t.Fatalf("expected one failing manifest directory, got %#v", r)
	}
	if r := byName["Reload command"]; len(r) != 1 || !r[0].Passed {
		t.Fatalf("reload command: %#v", r)
	}
	if _, ok := byName["Journal directory"]; ok {
		t.Fatal("journal check should be skipped when the journal is disabled")
	}
	if !Failed(results) {
		t.Fatal("expected Failed to report the missing manifest directory")
	}
}

func TestRunAllJournalDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithJournal(), testsupport.WithStubbedBinaries("sysctl"))

	journalCheck := func() Result {
		for _, r := range RunAll(cfg) {
			if r.Name == "Journal directory" {
				return r
			}
		}
		t.Fatal("journal directory check missing")
		return Result{}
	}

	if journalCheck().Passed {
		t.Fatal("expected failure before the state directory exists")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Paths.JournalPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if r := journalCheck(); !r.Passed {
		t.Fatalf("expected journal directory to pass, got %#v", r)
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := RunAll(nil); results != nil {
		t.Fatalf("expected nil results, got %#v", results)
	}
}

func TestRequireReloadCommand(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithReloadCommand("sysctlr-test-reload", "-p", "{file}"))

	err := RequireReloadCommand(cfg)
	if sysctl.KindOf(err) != sysctl.KindConfiguration || !strings.Contains(err.Error(), "sysctlr-test-reload") {
		t.Fatalf("expected configuration error naming the binary, got %v", err)
	}

	testsupport.StubBinaries(t, "", "sysctlr-test-reload")
	if err := RequireReloadCommand(cfg); err != nil {
		t.Fatalf("expected stubbed binary to satisfy the check, got %v", err)
	}
}

func TestRequireReloadCommandSkippedWithoutReload(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Reload.Command = []string{"sysctlr-test-missing"}
	if err := RequireReloadCommand(cfg); err != nil {
		t.Fatalf("reload disabled everywhere, got %v", err)
	}

	yes := true
	cfg.Entries = []config.Entry{{Name: "vm.swappiness", Value: "10", Reload: &yes}}
	if err := RequireReloadCommand(cfg); err == nil {
		t.Fatal("expected an entry-level reload to require the binary")
	}
}
