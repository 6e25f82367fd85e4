package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sysctlr/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	procRoot   string
	sysctlFile string
	configPath string
}

// setupCLITestEnv writes a config that points every path into a temp dir:
// a fake parameter tree, a sysctl file, the lock and the journal. Reload is
// disabled unless reloadCommand is given.
func setupCLITestEnv(t *testing.T, params map[string]string, reloadCommand ...string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("SYSCTLR_FILE", "")
	t.Setenv("SYSCTLR_PROC_ROOT", "")

	env := &cliTestEnv{
		baseDir:    base,
		procRoot:   filepath.Join(base, "proc", "sys"),
		sysctlFile: filepath.Join(base, "etc", "sysctl.conf"),
		configPath: filepath.Join(base, "config.toml"),
	}
	if err := os.MkdirAll(env.procRoot, 0o755); err != nil {
		t.Fatalf("mkdir proc root: %v", err)
	}
	testsupport.WriteParams(t, env.procRoot, params)
	if err := os.MkdirAll(filepath.Dir(env.sysctlFile), 0o755); err != nil {
		t.Fatalf("mkdir etc: %v", err)
	}

	reloadEnabled := len(reloadCommand) > 0
	checks := "before"
	if reloadEnabled {
		checks = "both"
	}
	quoted := make([]string, 0, len(reloadCommand))
	for _, arg := range reloadCommand {
		quoted = append(quoted, fmt.Sprintf("%q", arg))
	}

	content := fmt.Sprintf(`[paths]
sysctl_file = %q
proc_root = %q
lock_file = %q
journal_path = %q

[defaults]
checks = %q
reload = %t

[reload]
command = [%s]

[journal]
enabled = true
`,
		env.sysctlFile,
		env.procRoot,
		filepath.Join(base, "state", "sysctlr.lock"),
		filepath.Join(base, "state", "journal.db"),
		checks,
		reloadEnabled,
		strings.Join(quoted, ", "),
	)
	env.writeConfig(t, content)
	return env
}

func (e *cliTestEnv) writeConfig(t *testing.T, content string) {
	t.Helper()
	if err := os.WriteFile(e.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *cliTestEnv) appendConfig(t *testing.T, content string) {
	t.Helper()
	f, err := os.OpenFile(e.configPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open config: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("append config: %v", err)
	}
}

func (e *cliTestEnv) readSysctlFile(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(e.sysctlFile)
	if err != nil {
		t.Fatalf("read sysctl file: %v", err)
	}
	return string(data)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
