package config

import (
	"errors"
	"fmt"
	"strings"

	"sysctlr/internal/sysctl"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDefaults(); err != nil {
		return err
	}
	if err := c.validateReload(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateEntries(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.SysctlFile == "" {
		return errors.New("paths.sysctl_file must be set")
	}
	if c.Paths.ProcRoot == "" {
		return errors.New("paths.proc_root must be set")
	}
	if c.Journal.Enabled && c.Paths.JournalPath == "" {
		return errors.New("paths.journal_path must be set when journal.enabled is true")
	}
	return nil
}

func (c *Config) validateDefaults() error {
	if _, err := sysctl.ParseState(c.Defaults.State); err != nil {
		return fmt.Errorf("defaults.%w", err)
	}
	checks, err := sysctl.ParseCheckMode(c.Defaults.Checks)
	if err != nil {
		return fmt.Errorf("defaults.%w", err)
	}
	if !c.Defaults.Reload && checks.Includes(sysctl.PhaseAfter) {
		return errors.New("defaults.checks must be none or before when defaults.reload is false")
	}
	return nil
}

func (c *Config) validateReload() error {
	if c.Defaults.Reload && len(c.Reload.Command) == 0 {
		return errors.New("reload.command must be set when defaults.reload is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateEntries() error {
	seen := make(map[string]int, len(c.Entries))
	for i, entry := range c.Entries {
		if entry.Name == "" {
			return fmt.Errorf("entries[%d].name must be set", i)
		}
		if entry.State != "" {
			if _, err := sysctl.ParseState(entry.State); err != nil {
				return fmt.Errorf("entries[%d].%w", i, err)
			}
		}
		if entry.Checks != "" {
			if _, err := sysctl.ParseCheckMode(entry.Checks); err != nil {
				return fmt.Errorf("entries[%d].%w", i, err)
			}
		}
		id := entry.File + "\x00" + entry.Name
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("entries[%d] duplicates entries[%d] (%s in %s)", i, prev, entry.Name, entry.File)
		}
		seen[id] = i
		if strings.ContainsAny(entry.Name, "= \t/") {
			return fmt.Errorf("entries[%d].name %q must be a dotted key", i, entry.Name)
		}
	}
	return nil
}
