package reload

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sysctlr/internal/logging"
	"sysctlr/internal/sysctl"
)

// Outcome captures a single reload attempt.
type Outcome struct {
	Command  string
	ExitCode int
	Output   string
	Duration time.Duration
	Err      error
}

// Failed reports whether the reload did not complete cleanly.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Reloader makes the kernel re-read a sysctl file by running a fixed argv.
type Reloader struct {
	argv   []string
	runner Runner
	logger *slog.Logger
}

// Option configures a Reloader.
type Option func(*Reloader)

// WithRunner replaces the command runner.
func WithRunner(runner Runner) Option {
	return func(r *Reloader) {
		if runner != nil {
			r.runner = runner
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reloader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New constructs a Reloader for argv. The argv is copied.
func New(argv []string, opts ...Option) *Reloader {
	r := &Reloader{
		argv:   append([]string(nil), argv...),
		runner: ExecRunner{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "reload")
	return r
}

// Command returns the argv joined for display.
func (r *Reloader) Command() string {
	return strings.Join(r.argv, " ")
}

// Reload runs the configured command. A non-zero exit or a start failure
// is reported through Outcome.Err as a reload error.
func (r *Reloader) Reload(ctx context.Context) Outcome {
	outcome := Outcome{Command: r.Command()}
	if len(r.argv) == 0 {
		outcome.ExitCode = exitNotFound
		outcome.Err = sysctl.NewError(sysctl.KindReload, "", fmt.Errorf("%w: no reload command configured", sysctl.ErrReloadFailed))
		return outcome
	}

	logger := logging.WithContext(ctx, r.logger)
	logger.Debug("running reload command", logging.String("command", outcome.Command))

	start := time.Now()
	stdout, stderr, exitCode, err := r.runner.Run(ctx, r.argv[0], r.argv[1:]...)
	outcome.Duration = time.Since(start)
	outcome.ExitCode = exitCode
	outcome.Output = combineOutput(stdout, stderr)

	if err != nil || exitCode != 0 {
		detail := fmt.Sprintf("%s exited with code %d", outcome.Command, exitCode)
		if msg := firstLine(stderr); msg != "" {
			detail += ": " + msg
		} else if err != nil {
			detail += ": " + err.Error()
		}
		outcome.Err = sysctl.NewError(sysctl.KindReload, "", fmt.Errorf("%w: %s", sysctl.ErrReloadFailed, detail))
		logging.WarnWithContext(logger, "reload command failed", "reload_failed",
			"Check the sysctl file for entries the kernel rejects",
			logging.Int("exit_code", exitCode),
			logging.String("command", outcome.Command),
		)
		return outcome
	}

	logger.Info("reload completed",
		logging.String("command", outcome.Command),
		logging.Duration("duration", outcome.Duration),
	)
	return outcome
}

func combineOutput(stdout, stderr []byte) string {
	out := strings.TrimSpace(string(stdout))
	errOut := strings.TrimSpace(string(stderr))
	switch {
	case out == "":
		return errOut
	case errOut == "":
		return out
	default:
		return out + "\n" + errOut
	}
}

func firstLine(data []byte) string {
	line, _, _ := strings.Cut(strings.TrimSpace(string(data)), "\n")
	return strings.TrimSpace(line)
}
