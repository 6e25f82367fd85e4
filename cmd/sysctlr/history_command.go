package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"sysctlr/internal/journal"
)

type historyView struct {
	RunID          string    `json:"run_id" yaml:"run_id"`
	Key            string    `json:"key" yaml:"key"`
	State          string    `json:"state" yaml:"state"`
	Value          string    `json:"value,omitempty" yaml:"value,omitempty"`
	File           string    `json:"file" yaml:"file"`
	Changed        bool      `json:"changed" yaml:"changed"`
	Outcome        string    `json:"outcome" yaml:"outcome"`
	Detail         string    `json:"detail,omitempty" yaml:"detail,omitempty"`
	ReloadExitCode *int      `json:"reload_exit_code,omitempty" yaml:"reload_exit_code,omitempty"`
	Backup         string    `json:"backup,omitempty" yaml:"backup,omitempty"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var output string

	cmd := &cobra.Command{
		Use:   "history [NAME]",
		Short: "List recent reconciliations from the journal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			if store == nil {
				return errJournalDisabled
			}
			defer store.Close()

			key := ""
			if len(args) == 1 {
				key = args[0]
			}
			records, err := store.Recent(cmd.Context(), key, limit)
			if err != nil {
				return err
			}

			views := make([]historyView, 0, len(records))
			for _, rec := range records {
				views = append(views, newHistoryView(rec))
			}
			handled, err := writeStructured(cmd, format, views)
			if err != nil || handled {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No reconciliations recorded")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderHistoryTable(records))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", journal.DefaultLimit, "Maximum number of records to show")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text, json or yaml")
	cmd.AddCommand(newHistoryPruneCommand(ctx))
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete journal records older than a duration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			if store == nil {
				return errJournalDisabled
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d journal records from %s\n", removed, store.Path())
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age beyond which records are deleted")
	return cmd
}

func newHistoryView(rec journal.Record) historyView {
	return historyView{
		RunID:          rec.RunID,
		Key:            rec.Key,
		State:          rec.State,
		Value:          rec.Value,
		File:           rec.File,
		Changed:        rec.Changed,
		Outcome:        rec.Outcome,
		Detail:         rec.Detail,
		ReloadExitCode: rec.ReloadExitCode,
		Backup:         rec.Backup,
		CreatedAt:      rec.CreatedAt,
	}
}

func renderHistoryTable(records []journal.Record) string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		reload := "-"
		if rec.ReloadExitCode != nil {
			reload = strconv.Itoa(*rec.ReloadExitCode)
		}
		rows = append(rows, []string{
			rec.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			shortRunID(rec.RunID),
			rec.Key,
			rec.State,
			rec.Value,
			yesNo(rec.Changed),
			rec.Outcome,
			reload,
		})
	}
	return renderTable(
		[]string{"Time", "Run", "Key", "State", "Value", "Changed", "Outcome", "Reload"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignCenter, alignLeft, alignRight},
	)
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
