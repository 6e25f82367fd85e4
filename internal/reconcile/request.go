package reconcile

import (
	"errors"
	"strings"

	"sysctlr/internal/preflight"
	"sysctlr/internal/reload"
	"sysctlr/internal/sysctl"
)

var errFileRequired = errors.New("target file is required")

// Request describes one desired entry and how to apply it. It is passed by
// value and never modified by the reconciler.
type Request struct {
	Entry  sysctl.Entry
	File   string
	Checks sysctl.CheckMode
	Reload bool
	Backup bool
	// StrictReload turns a failed reload into an Apply error.
	StrictReload bool
}

// Validate runs every check that needs no I/O.
func (r Request) Validate() error {
	if err := preflight.ValidateRequest(r.Entry, r.Checks, r.Reload); err != nil {
		return err
	}
	if strings.TrimSpace(r.File) == "" {
		return sysctl.NewError(sysctl.KindConfiguration, r.Entry.Name, errFileRequired)
	}
	return nil
}

// Result reports what a reconciliation did.
type Result struct {
	RunID   string
	Key     string
	State   sysctl.State
	Value   string
	File    string
	KeyPath string
	// Changed is true when the merge altered the file content.
	Changed bool
	// Committed is true once the new content replaced the file.
	Committed bool
	Backup    string
	Reload    *reload.Outcome
	// Verified is true when the after-check ran and passed.
	Verified bool
}

// ReloadFailed reports whether a reload ran and failed.
func (r Result) ReloadFailed() bool {
	return r.Reload != nil && r.Reload.Failed()
}

// ReloadError returns the reload failure, if any.
func (r Result) ReloadError() error {
	if r.Reload == nil {
		return nil
	}
	return r.Reload.Err
}
