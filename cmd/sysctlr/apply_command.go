package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"sysctlr/internal/config"
	"sysctlr/internal/reconcile"
)

type applyOptions struct {
	all          bool
	state        string
	checks       string
	reload       bool
	noReload     bool
	file         string
	backup       bool
	strictReload bool
	output       string
}

func newApplyCommand(ctx *commandContext) *cobra.Command {
	var opts applyOptions

	cmd := &cobra.Command{
		Use:   "apply NAME [VALUE]",
		Short: "Reconcile one entry, or every configured entry with --all",
		Long: `Reconcile a sysctl entry with its desired state.

With NAME and VALUE the entry is made present with that value. With
--state absent every line for NAME is removed. With --all the [[entries]]
manifest from the configuration file is applied in order.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.all {
				if len(args) > 0 {
					return errors.New("--all does not take NAME or VALUE")
				}
				return nil
			}
			return cobra.RangeArgs(1, 2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(opts.output)
			if err != nil {
				return err
			}
			if opts.reload && opts.noReload {
				return errors.New("--reload and --no-reload are mutually exclusive")
			}
			return ctx.withReconciler(cmd, func(cfg *config.Config, rec *reconcile.Reconciler, _ *slog.Logger) error {
				if opts.all {
					return runApplyAll(cmd, cfg, rec, format)
				}
				req, err := opts.request(cmd, cfg, args)
				if err != nil {
					return err
				}
				res, applyErr := rec.Apply(cmd.Context(), req)
				if err := renderApplyResult(cmd, format, res, applyErr); err != nil {
					return err
				}
				return applyErr
			})
		},
	}

	cmd.Flags().BoolVar(&opts.all, "all", false, "Apply every [[entries]] item from the configuration")
	cmd.Flags().StringVar(&opts.state, "state", "", "Desired state: present or absent (default from config)")
	cmd.Flags().StringVar(&opts.checks, "checks", "", "Checks to run: none, before, after or both (default from config)")
	cmd.Flags().BoolVar(&opts.reload, "reload", false, "Run the reload command after a change")
	cmd.Flags().BoolVar(&opts.noReload, "no-reload", false, "Do not run the reload command")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Target sysctl file (default paths.sysctl_file)")
	cmd.Flags().BoolVar(&opts.backup, "backup", false, "Copy the file to <file>.<nanos>.bak before replacing it")
	cmd.Flags().BoolVar(&opts.strictReload, "strict-reload", false, "Treat a failed reload as an error")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputText, "Output format: text, json or yaml")
	return cmd
}

// request merges flags over the configured defaults.
func (o applyOptions) request(cmd *cobra.Command, cfg *config.Config, args []string) (reconcile.Request, error) {
	entry := config.Entry{
		Name:   strings.TrimSpace(args[0]),
		State:  strings.ToLower(strings.TrimSpace(o.state)),
		Checks: strings.ToLower(strings.TrimSpace(o.checks)),
	}
	if len(args) > 1 {
		entry.Value = args[1]
	}
	if o.file != "" {
		file, err := config.ExpandPath(o.file)
		if err != nil {
			return reconcile.Request{}, fmt.Errorf("resolve --file: %w", err)
		}
		entry.File = file
	}
	switch {
	case o.reload:
		enabled := true
		entry.Reload = &enabled
	case o.noReload:
		disabled := false
		entry.Reload = &disabled
	}
	if cmd.Flags().Changed("backup") {
		backup := o.backup
		entry.Backup = &backup
	}

	req, err := reconcile.RequestFromEntry(cfg, entry)
	if err != nil {
		return reconcile.Request{}, err
	}
	if o.strictReload {
		req.StrictReload = true
	}
	return req, nil
}

func runApplyAll(cmd *cobra.Command, cfg *config.Config, rec *reconcile.Reconciler, format string) error {
	reqs, err := reconcile.RequestsFromConfig(cfg)
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		return errors.New("no [[entries]] configured")
	}

	results, applyErr := rec.ApplyAll(cmd.Context(), reqs)
	errByKey := splitErrors(applyErr)

	views := make([]resultView, 0, len(results))
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		resErr := errByKey[res.RunID]
		views = append(views, newResultView(res, resErr))
		_, status := resultStatus(res, resErr)
		rows = append(rows, []string{res.Key, res.State.String(), res.Value, res.File, yesNo(res.Committed), status})
	}

	handled, err := writeStructured(cmd, format, views)
	if err != nil {
		return err
	}
	if !handled {
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"Key", "State", "Value", "File", "Changed", "Status"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignCenter, alignLeft},
		))
	}
	return applyErr
}

// splitErrors indexes the errors joined by ApplyAll by the run id of the
// result they belong to.
func splitErrors(err error) map[string]error {
	byRun := make(map[string]error)
	if err == nil {
		return byRun
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		return byRun
	}
	for _, e := range joined.Unwrap() {
		var runErr *reconcile.RunError
		if errors.As(e, &runErr) {
			byRun[runErr.RunID] = runErr
		}
	}
	return byRun
}

func renderApplyResult(cmd *cobra.Command, format string, res reconcile.Result, applyErr error) error {
	handled, err := writeStructured(cmd, format, newResultView(res, applyErr))
	if err != nil || handled {
		return err
	}

	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	kind, status := resultStatus(res, applyErr)
	fmt.Fprintln(out, renderStatusLine(res.Key, kind, status, colorize))
	fmt.Fprintln(out, renderStatusLine("File", statusInfo, res.File, colorize))
	if res.Backup != "" {
		fmt.Fprintln(out, renderStatusLine("Backup", statusInfo, res.Backup, colorize))
	}
	if res.Reload != nil {
		reloadKind, reloadMsg := statusOK, fmt.Sprintf("%s (exit %d)", res.Reload.Command, res.Reload.ExitCode)
		if res.Reload.Failed() {
			reloadKind = statusWarn
		}
		fmt.Fprintln(out, renderStatusLine("Reload", reloadKind, reloadMsg, colorize))
	}
	return nil
}
