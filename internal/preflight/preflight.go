package preflight

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sys/unix"

	"sysctlr/internal/config"
	"sysctlr/internal/deps"
	"sysctlr/internal/sysctl"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes the environment checks behind "sysctlr doctor".
// Checks are only run when the corresponding feature is enabled.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// The parameter tree only needs to be traversable.
	results = append(results, CheckDirectoryAccess("Parameter root", cfg.Paths.ProcRoot, unix.R_OK|unix.X_OK))

	// The sysctl file is replaced by rename, so its directory must be writable.
	results = append(results, CheckDirectoryAccess("Sysctl file directory", filepath.Dir(cfg.Paths.SysctlFile), unix.R_OK|unix.W_OK|unix.X_OK))

	for _, dir := range manifestDirs(cfg) {
		results = append(results, CheckDirectoryAccess("Manifest file directory", dir, unix.R_OK|unix.W_OK|unix.X_OK))
	}

	if cfg.Journal.Enabled {
		results = append(results, CheckDirectoryAccess("Journal directory", filepath.Dir(cfg.Paths.JournalPath), unix.R_OK|unix.W_OK|unix.X_OK))
	}

	if cfg.ReloadBinary() != "" {
		for _, status := range deps.CheckBinaries([]deps.Requirement{deps.ReloadRequirement(cfg.Reload.Command, reloadEnabled(cfg))}) {
			results = append(results, Result{
				Name:     status.Name,
				Passed:   status.Available,
				Optional: status.Optional,
				Detail:   status.Detail,
			})
		}
	}

	return results
}

// RequireReloadCommand fails when reload is enabled for any request and the
// reload binary cannot be found on PATH.
func RequireReloadCommand(cfg *config.Config) error {
	if cfg == nil || !reloadEnabled(cfg) {
		return nil
	}
	statuses := deps.CheckBinaries([]deps.Requirement{deps.ReloadRequirement(cfg.Reload.Command, true)})
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		return sysctl.NewError(sysctl.KindConfiguration, "", fmt.Errorf("reload command: %s", missing[0].Detail))
	}
	return nil
}

// reloadEnabled reports whether the defaults or any manifest entry reload.
func reloadEnabled(cfg *config.Config) bool {
	if cfg.Defaults.Reload {
		return true
	}
	for _, entry := range cfg.Entries {
		if entry.Reload != nil && *entry.Reload {
			return true
		}
	}
	return false
}

// Failed reports whether any required check did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return true
		}
	}
	return false
}

// manifestDirs lists directories of manifest entry files other than the
// default sysctl file's directory, without duplicates.
func manifestDirs(cfg *config.Config) []string {
	seen := map[string]struct{}{filepath.Dir(cfg.Paths.SysctlFile): {}}
	var dirs []string
	for _, entry := range cfg.Entries {
		dir := filepath.Dir(entry.File)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	return dirs
}
