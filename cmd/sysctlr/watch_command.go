package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"sysctlr/internal/config"
	"sysctlr/internal/preflight"
	"sysctlr/internal/reconcile"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Apply the configured entries and re-apply them when their files change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withReconciler(cmd, func(cfg *config.Config, rec *reconcile.Reconciler, logger *slog.Logger) error {
				reqs, err := reconcile.RequestsFromConfig(cfg)
				if err != nil {
					return err
				}
				if len(reqs) == 0 {
					return errors.New("no [[entries]] configured")
				}
				if err := preflight.RequireReloadCommand(cfg); err != nil {
					return err
				}
				watcher := reconcile.NewWatcher(rec, reqs, reconcile.DebounceInterval(cfg), logger)
				return watcher.Run(cmd.Context())
			})
		},
	}
}
