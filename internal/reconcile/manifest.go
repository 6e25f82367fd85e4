package reconcile

import (
	"fmt"
	"log/slog"
	"time"

	"sysctlr/internal/config"
	"sysctlr/internal/reload"
	"sysctlr/internal/sysctl"
)

// NewFromConfig builds a Reconciler wired to the configured parameter root,
// reload command and run lock. rec may be nil to disable journaling.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, rec Recorder) *Reconciler {
	return New(Options{
		ProcRoot: cfg.Paths.ProcRoot,
		NewReloader: func(file string) Reloader {
			return reload.New(cfg.ReloadArgv(file), reload.WithLogger(logger))
		},
		Journal:  rec,
		LockPath: cfg.Paths.LockFile,
		Logger:   logger,
	})
}

// RequestFromEntry resolves a manifest entry against [defaults].
func RequestFromEntry(cfg *config.Config, entry config.Entry) (Request, error) {
	stateValue := entry.State
	if stateValue == "" {
		stateValue = cfg.Defaults.State
	}
	state, err := sysctl.ParseState(stateValue)
	if err != nil {
		return Request{}, sysctl.NewError(sysctl.KindConfiguration, entry.Name, err)
	}

	checksValue := entry.Checks
	if checksValue == "" {
		checksValue = cfg.Defaults.Checks
	}
	checks, err := sysctl.ParseCheckMode(checksValue)
	if err != nil {
		return Request{}, sysctl.NewError(sysctl.KindConfiguration, entry.Name, err)
	}

	reloadEnabled := cfg.Defaults.Reload
	if entry.Reload != nil {
		reloadEnabled = *entry.Reload
	}
	backup := cfg.Defaults.Backup
	if entry.Backup != nil {
		backup = *entry.Backup
	}
	file := entry.File
	if file == "" {
		file = cfg.Paths.SysctlFile
	}

	return Request{
		Entry:        sysctl.NewEntry(entry.Name, entry.Value, state),
		File:         file,
		Checks:       checks,
		Reload:       reloadEnabled,
		Backup:       backup,
		StrictReload: cfg.Reload.FailOnError,
	}, nil
}

// RequestsFromConfig converts every [[entries]] item into a Request.
func RequestsFromConfig(cfg *config.Config) ([]Request, error) {
	reqs := make([]Request, 0, len(cfg.Entries))
	for i, entry := range cfg.Entries {
		req, err := RequestFromEntry(cfg, entry)
		if err != nil {
			return nil, fmt.Errorf("entries[%d]: %w", i, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// DebounceInterval returns the configured watch debounce.
func DebounceInterval(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Watch.DebounceMillis) * time.Millisecond
}
