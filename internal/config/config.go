package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	SysctlFile  string `toml:"sysctl_file"`
	ProcRoot    string `toml:"proc_root"`
	LogDir      string `toml:"log_dir"`
	LockFile    string `toml:"lock_file"`
	JournalPath string `toml:"journal_path"`
}

// Defaults holds request fields applied when a command or manifest entry
// leaves them unset.
type Defaults struct {
	State  string `toml:"state"`
	Checks string `toml:"checks"`
	Reload bool   `toml:"reload"`
	Backup bool   `toml:"backup"`
}

// Reload configures the command that makes the kernel re-read the file.
type Reload struct {
	// Command is the argv to run. "{file}" in any argument is replaced with
	// the target configuration file.
	Command     []string `toml:"command"`
	FailOnError bool     `toml:"fail_on_error"`
}

// Journal controls the SQLite audit trail of reconciliations.
type Journal struct {
	Enabled bool `toml:"enabled"`
}

// Watch configures drift correction.
type Watch struct {
	DebounceMillis int `toml:"debounce_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Entry is one desired key in the manifest. Pointer fields fall back to
// [defaults] when omitted.
type Entry struct {
	Name   string `toml:"name"`
	Value  string `toml:"value"`
	State  string `toml:"state"`
	Checks string `toml:"checks"`
	Reload *bool  `toml:"reload"`
	Backup *bool  `toml:"backup"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for sysctlr.
//
// Sections:
//   - Paths: target file, parameter root, log/lock/journal locations
//   - Defaults: request defaults for state, checks, reload and backup
//   - Reload: reload command and whether its failure is fatal
//   - Journal: audit trail toggle
//   - Watch: debounce for drift correction
//   - Logging: log format and level
//   - Entries: manifest applied by "apply --all" and "watch"
type Config struct {
	Paths    Paths    `toml:"paths"`
	Defaults Defaults `toml:"defaults"`
	Reload   Reload   `toml:"reload"`
	Journal  Journal  `toml:"journal"`
	Watch    Watch    `toml:"watch"`
	Logging  Logging  `toml:"logging"`
	Entries  []Entry  `toml:"entries"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/sysctlr/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sysctlr.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates directories sysctlr writes to on its own behalf.
// The sysctl file's directory is left alone; creating /etc/sysctl.d is the
// operator's call.
func (c *Config) EnsureDirectories() error {
	dirs := []string{}
	if c.Paths.LogDir != "" {
		dirs = append(dirs, c.Paths.LogDir)
	}
	if c.Paths.LockFile != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.LockFile))
	}
	if c.Journal.Enabled {
		dirs = append(dirs, filepath.Dir(c.Paths.JournalPath))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ReloadBinary returns the executable of the reload command, or "" when
// none is configured.
func (c *Config) ReloadBinary() string {
	if len(c.Reload.Command) == 0 {
		return ""
	}
	return c.Reload.Command[0]
}

// ReloadArgv returns the reload command with "{file}" replaced by file.
func (c *Config) ReloadArgv(file string) []string {
	argv := make([]string, 0, len(c.Reload.Command))
	for _, arg := range c.Reload.Command {
		argv = append(argv, strings.ReplaceAll(arg, "{file}", file))
	}
	return argv
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
