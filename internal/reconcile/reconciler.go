package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"sysctlr/internal/commit"
	"sysctlr/internal/journal"
	"sysctlr/internal/logging"
	"sysctlr/internal/preflight"
	"sysctlr/internal/reload"
	"sysctlr/internal/sysctl"
)

const (
	lockRetryInterval  = 100 * time.Millisecond
	defaultLockTimeout = 30 * time.Second
)

// Reloader runs the reload command for one target file.
type Reloader interface {
	Reload(ctx context.Context) reload.Outcome
}

// ReloaderFactory builds the Reloader for a target file.
type ReloaderFactory func(file string) Reloader

// Recorder persists one row per reconciliation.
type Recorder interface {
	Record(ctx context.Context, rec journal.Record) (journal.Record, error)
}

// Options configures a Reconciler.
type Options struct {
	// ProcRoot overrides /proc/sys.
	ProcRoot string
	// Access overrides the access probe used by the key checks.
	Access      preflight.AccessFunc
	NewReloader ReloaderFactory
	Journal     Recorder
	// LockPath enables the advisory run lock when set.
	LockPath    string
	LockTimeout time.Duration
	Logger      *slog.Logger
}

// RunError ties an ApplyAll failure to the run that produced it.
type RunError struct {
	RunID string
	Key   string
	Err   error
}

func (e *RunError) Error() string { return e.Err.Error() }

func (e *RunError) Unwrap() error { return e.Err }

// Reconciler applies Requests to sysctl files.
type Reconciler struct {
	checker     preflight.Checker
	committer   *commit.Committer
	newReloader ReloaderFactory
	journal     Recorder
	lockPath    string
	lockTimeout time.Duration
	logger      *slog.Logger
}

// New constructs a Reconciler.
func New(opts Options) *Reconciler {
	logger := logging.NewComponentLogger(opts.Logger, "reconcile")
	newReloader := opts.NewReloader
	if newReloader == nil {
		newReloader = func(file string) Reloader {
			return reload.New([]string{"sysctl", "-p", file}, reload.WithLogger(opts.Logger))
		}
	}
	timeout := opts.LockTimeout
	if timeout <= 0 {
		timeout = defaultLockTimeout
	}
	return &Reconciler{
		checker: preflight.Checker{
			Resolver: sysctl.Resolver{Root: opts.ProcRoot},
			Access:   opts.Access,
		},
		committer:   commit.New(opts.Logger),
		newReloader: newReloader,
		journal:     opts.Journal,
		lockPath:    opts.LockPath,
		lockTimeout: timeout,
		logger:      logger,
	}
}

// Apply reconciles a single request. The returned Result is populated as
// far as the run got, including on error.
func (r *Reconciler) Apply(ctx context.Context, req Request) (Result, error) {
	// Invalid requests fail without touching the filesystem, lock included.
	if req.Validate() != nil {
		return r.apply(ctx, req)
	}
	unlock, err := r.acquireLock(ctx)
	if err != nil {
		return Result{Key: req.Entry.Name, File: req.File}, err
	}
	defer unlock()
	return r.apply(ctx, req)
}

// ApplyAll reconciles requests in order under a single run lock, taken when
// the first valid request is reached. A failing request does not stop later
// ones; errors are joined.
func (r *Reconciler) ApplyAll(ctx context.Context, reqs []Request) ([]Result, error) {
	var unlock func()
	defer func() {
		if unlock != nil {
			unlock()
		}
	}()

	results := make([]Result, 0, len(reqs))
	var errs []error
	for _, req := range reqs {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if unlock == nil && req.Validate() == nil {
			release, err := r.acquireLock(ctx)
			if err != nil {
				errs = append(errs, err)
				break
			}
			unlock = release
		}
		res, err := r.apply(ctx, req)
		results = append(results, res)
		if err != nil {
			errs = append(errs, &RunError{RunID: res.RunID, Key: req.Entry.Name, Err: err})
		}
	}
	return results, errors.Join(errs...)
}

func (r *Reconciler) apply(ctx context.Context, req Request) (Result, error) {
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger).With(
		logging.String(logging.FieldKey, req.Entry.Name),
		logging.String(logging.FieldConfigFile, req.File),
	)

	res := Result{
		RunID:   runID,
		Key:     req.Entry.Name,
		State:   req.Entry.State,
		Value:   req.Entry.Value,
		File:    req.File,
		KeyPath: r.checker.Resolver.Resolve(req.Entry.Name),
	}

	err := r.run(ctx, req, &res, logger)
	if err != nil {
		err = sysctl.WithKey(err, req.Entry.Name)
		logging.WarnWithContext(logger, "reconciliation failed", "reconcile_failed", hintFor(err),
			logging.String(logging.FieldPhase, phaseOf(err)),
			logging.Bool("committed", res.Committed),
			logging.Error(err),
		)
	}
	r.record(ctx, req, res, err, logger)
	return res, err
}

func (r *Reconciler) run(ctx context.Context, req Request, res *Result, logger *slog.Logger) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := r.checker.CheckBefore(req.Entry, req.Checks, req.Reload); err != nil {
		return err
	}

	if err := r.committer.Prepare(req.File); err != nil {
		return err
	}
	lines, err := commit.ReadLines(req.File)
	if err != nil {
		return err
	}

	merged := sysctl.Merge(lines, req.Entry)
	res.Changed = merged.Changed
	if !merged.Changed {
		logger.Info("entry already converged", logging.String("state", req.Entry.State.String()))
		return nil
	}

	if req.Backup {
		backup, err := r.committer.Backup(req.File)
		if err != nil {
			return err
		}
		res.Backup = backup
	}

	if err := r.committer.Commit(merged.Lines, req.File); err != nil {
		return err
	}
	res.Committed = true
	logger.Info("sysctl file updated",
		logging.String("state", req.Entry.State.String()),
		logging.String("value", req.Entry.Value),
	)

	if req.Reload {
		outcome := r.newReloader(req.File).Reload(ctx)
		res.Reload = &outcome
		if outcome.Failed() && req.StrictReload {
			return outcome.Err
		}
	}

	if err := r.checker.CheckAfter(req.Entry, req.Checks); err != nil {
		return err
	}
	res.Verified = req.Checks.Includes(sysctl.PhaseAfter)
	return nil
}

func (r *Reconciler) record(ctx context.Context, req Request, res Result, runErr error, logger *slog.Logger) {
	if r.journal == nil {
		return
	}
	rec := journal.Record{
		RunID:   res.RunID,
		Key:     req.Entry.Name,
		State:   req.Entry.State.String(),
		Value:   req.Entry.Value,
		File:    req.File,
		Changed: res.Committed,
		Outcome: journal.OutcomeOK,
		Backup:  res.Backup,
	}
	if res.Reload != nil {
		code := res.Reload.ExitCode
		rec.ReloadExitCode = &code
	}
	switch {
	case runErr != nil:
		rec.Outcome = outcomeOf(runErr)
		rec.Detail = runErr.Error()
	case res.ReloadFailed():
		rec.Outcome = string(sysctl.KindReload)
		rec.Detail = res.ReloadError().Error()
	}
	if _, err := r.journal.Record(ctx, rec); err != nil {
		logging.WarnWithContext(logger, "journal write failed", "journal_failed",
			"Check journal_path permissions or disable the journal",
			logging.Error(err),
		)
	}
}

func (r *Reconciler) acquireLock(ctx context.Context) (func(), error) {
	if r.lockPath == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(r.lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure lock directory: %w", err)
	}
	lock := flock.New(r.lockPath)
	lockCtx, cancel := context.WithTimeout(ctx, r.lockTimeout)
	defer cancel()
	ok, err := lock.TryLockContext(lockCtx, lockRetryInterval)
	if err != nil {
		return nil, fmt.Errorf("acquire run lock %s: %w", r.lockPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("acquire run lock %s: another sysctlr run holds it", r.lockPath)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release run lock", logging.String("lock", r.lockPath), logging.Error(err))
		}
	}, nil
}

func outcomeOf(err error) string {
	if kind := sysctl.KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}

func phaseOf(err error) string {
	if sysctl.KindOf(err).Mutates() {
		return sysctl.PhaseAfter.String()
	}
	return sysctl.PhaseBefore.String()
}

func hintFor(err error) string {
	switch sysctl.KindOf(err) {
	case sysctl.KindCoherence:
		return "Present entries need a value; absent entries must not have one"
	case sysctl.KindConfiguration:
		return "Enable reload or restrict checks to none/before"
	case sysctl.KindPrecondition:
		return "Verify the key exists under the parameter root and is writable"
	case sysctl.KindIO:
		return "Check permissions on the sysctl file and its directory"
	case sysctl.KindPostcondition:
		return "The file was updated but the kernel reports a different value"
	case sysctl.KindReload:
		return "The file was updated but the reload command failed"
	default:
		return "See error detail"
	}
}
