package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sysctlr/internal/sysctl"
)

// exitUnverified signals that the file was changed but the change was not
// confirmed: the reload or the after-check failed.
const exitUnverified = 2

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if sysctl.KindOf(err).Mutates() {
		return exitUnverified
	}
	return 1
}
