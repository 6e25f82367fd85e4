package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"

	"sysctlr/internal/sysctl"
)

// AccessFunc probes path for the unix access mode bits (R_OK, W_OK, X_OK).
type AccessFunc func(path string, mode uint32) error

// Checker runs the key-path validations around a reconciliation.
type Checker struct {
	Resolver sysctl.Resolver
	// Access defaults to unix.Access.
	Access AccessFunc
}

func (c Checker) access(path string, mode uint32) error {
	if c.Access != nil {
		return c.Access(path, mode)
	}
	return unix.Access(path, mode)
}

// CheckBefore validates a request before anything is written. It checks
// coherence, the reload/after-check combination, and that the key path
// exists and is readable. The write probe only runs when checks include
// the before phase.
func (c Checker) CheckBefore(entry sysctl.Entry, checks sysctl.CheckMode, reload bool) error {
	if err := ValidateRequest(entry, checks, reload); err != nil {
		return err
	}

	path := c.Resolver.Resolve(entry.Name)
	if err := c.probeReadable(entry.Name, path); err != nil {
		return err
	}
	if !checks.Includes(sysctl.PhaseBefore) {
		return nil
	}
	if err := c.access(path, unix.W_OK); err != nil {
		return sysctl.NewError(sysctl.KindPrecondition, entry.Name, fmt.Errorf("%w: %s", sysctl.ErrKeyReadOnly, path))
	}
	return nil
}

// ValidateRequest runs the checks that need no I/O: state/value coherence
// and the rule that after-checks require a reload.
func ValidateRequest(entry sysctl.Entry, checks sysctl.CheckMode, reload bool) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if !reload && checks.Includes(sysctl.PhaseAfter) {
		return sysctl.NewError(sysctl.KindConfiguration, entry.Name, sysctl.ErrAfterNeedsLoad)
	}
	return nil
}

// CheckAfter reads the live value back and compares it with the desired
// one. It is a no-op unless checks include the after phase. Absent entries
// have no desired value, so only readability is confirmed.
func (c Checker) CheckAfter(entry sysctl.Entry, checks sysctl.CheckMode) error {
	if !checks.Includes(sysctl.PhaseAfter) {
		return nil
	}
	path := c.Resolver.Resolve(entry.Name)
	if err := c.probeReadable(entry.Name, path); err != nil {
		return err
	}
	if entry.State == sysctl.StateAbsent {
		return nil
	}
	live, err := ReadLive(path)
	if err != nil {
		return sysctl.NewError(sysctl.KindPostcondition, entry.Name, err)
	}
	if !sysctl.ValuesMatch(live, entry.Value) {
		return sysctl.NewError(sysctl.KindPostcondition, entry.Name,
			fmt.Errorf("%w: want %q, kernel reports %q", sysctl.ErrValueNotApplied, entry.Value, sysctl.CollapseWhitespace(live)))
	}
	return nil
}

func (c Checker) probeReadable(name, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return sysctl.NewError(sysctl.KindPrecondition, name, fmt.Errorf("%w: %s does not exist", sysctl.ErrKeyPathInvalid, path))
		}
		return sysctl.NewError(sysctl.KindPrecondition, name, fmt.Errorf("%w: stat %s: %v", sysctl.ErrKeyUnreadable, path, err))
	}
	if info.IsDir() {
		return sysctl.NewError(sysctl.KindPrecondition, name, fmt.Errorf("%w: %s is a directory", sysctl.ErrKeyPathInvalid, path))
	}
	if err := c.access(path, unix.R_OK); err != nil {
		return sysctl.NewError(sysctl.KindPrecondition, name, fmt.Errorf("%w: %s", sysctl.ErrKeyUnreadable, path))
	}
	return nil
}

// ReadLive returns the raw content of a parameter file.
func ReadLive(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// CheckDirectoryAccess verifies that the directory exists and grants the
// requested access mode.
func CheckDirectoryAccess(name, path string, mode uint32) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s ok)", path, describeMode(mode))}
}

func describeMode(mode uint32) string {
	switch {
	case mode&unix.W_OK != 0:
		return "read/write"
	default:
		return "read"
	}
}
