package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDefaults()
	c.normalizeReload()
	if err := c.normalizeEntries(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("SYSCTLR_FILE"); ok && strings.TrimSpace(value) != "" {
		c.Paths.SysctlFile = value
	}
	if value, ok := os.LookupEnv("SYSCTLR_PROC_ROOT"); ok && strings.TrimSpace(value) != "" {
		c.Paths.ProcRoot = value
	}
	if strings.TrimSpace(c.Paths.SysctlFile) == "" {
		c.Paths.SysctlFile = defaultSysctlFile
	}
	if strings.TrimSpace(c.Paths.ProcRoot) == "" {
		c.Paths.ProcRoot = defaultProcRoot
	}
	if strings.TrimSpace(c.Paths.JournalPath) == "" {
		c.Paths.JournalPath = defaultJournalPath
	}

	var err error
	if c.Paths.SysctlFile, err = expandPath(strings.TrimSpace(c.Paths.SysctlFile)); err != nil {
		return fmt.Errorf("paths.sysctl_file: %w", err)
	}
	if c.Paths.ProcRoot, err = expandPath(strings.TrimSpace(c.Paths.ProcRoot)); err != nil {
		return fmt.Errorf("paths.proc_root: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.LockFile, err = expandPath(strings.TrimSpace(c.Paths.LockFile)); err != nil {
		return fmt.Errorf("paths.lock_file: %w", err)
	}
	if c.Paths.JournalPath, err = expandPath(strings.TrimSpace(c.Paths.JournalPath)); err != nil {
		return fmt.Errorf("paths.journal_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeDefaults() {
	c.Defaults.State = strings.ToLower(strings.TrimSpace(c.Defaults.State))
	if c.Defaults.State == "" {
		c.Defaults.State = defaultState
	}
	c.Defaults.Checks = strings.ToLower(strings.TrimSpace(c.Defaults.Checks))
	if c.Defaults.Checks == "" {
		c.Defaults.Checks = defaultChecks
	}
}

func (c *Config) normalizeReload() {
	cmd := make([]string, 0, len(c.Reload.Command))
	for _, arg := range c.Reload.Command {
		if trimmed := strings.TrimSpace(arg); trimmed != "" {
			cmd = append(cmd, trimmed)
		}
	}
	c.Reload.Command = cmd
	if c.Watch.DebounceMillis <= 0 {
		c.Watch.DebounceMillis = defaultDebounceMillis
	}
}

func (c *Config) normalizeEntries() error {
	for i := range c.Entries {
		entry := &c.Entries[i]
		entry.Name = strings.TrimSpace(entry.Name)
		entry.Value = strings.TrimSpace(entry.Value)
		entry.State = strings.ToLower(strings.TrimSpace(entry.State))
		entry.Checks = strings.ToLower(strings.TrimSpace(entry.Checks))
		if strings.TrimSpace(entry.File) == "" {
			entry.File = c.Paths.SysctlFile
			continue
		}
		file, err := expandPath(strings.TrimSpace(entry.File))
		if err != nil {
			return fmt.Errorf("entries[%d].file: %w", i, err)
		}
		entry.File = file
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
