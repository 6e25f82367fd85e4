package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"sysctlr/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose paths all live under a per-test temp
// directory: an empty parameter tree, a sysctl file directory, logs, lock and
// journal. Reload is disabled and checks default to "before" so tests do not
// depend on a real sysctl binary.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ProcRoot = filepath.Join(base, "proc", "sys")
	cfgVal.Paths.SysctlFile = filepath.Join(base, "etc", "sysctl.conf")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.LockFile = filepath.Join(base, "state", "sysctlr.lock")
	cfgVal.Paths.JournalPath = filepath.Join(base, "state", "journal.db")
	cfgVal.Defaults.Checks = "before"
	cfgVal.Defaults.Reload = false

	for _, dir := range []string{cfgVal.Paths.ProcRoot, filepath.Dir(cfgVal.Paths.SysctlFile)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithParams writes the given keys into the config's parameter tree.
func WithParams(params map[string]string) ConfigOption {
	return func(b *configBuilder) {
		WriteParams(b.t, b.cfg.Paths.ProcRoot, params)
	}
}

// WithJournal enables the SQLite journal.
func WithJournal() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Journal.Enabled = true
	}
}

// WithReloadCommand enables reload with the given argv and switches checks
// to "both".
func WithReloadCommand(argv ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Reload.Command = append([]string(nil), argv...)
		b.cfg.Defaults.Reload = true
		b.cfg.Defaults.Checks = "both"
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, "sysctl" is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		StubBinaries(b.t, filepath.Join(b.baseDir, "bin"), names...)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.Paths.SysctlFile))
}
