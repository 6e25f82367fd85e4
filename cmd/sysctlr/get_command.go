package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"sysctlr/internal/commit"
	"sysctlr/internal/config"
	"sysctlr/internal/preflight"
	"sysctlr/internal/sysctl"
)

type getView struct {
	Key       string   `json:"key" yaml:"key"`
	KeyPath   string   `json:"key_path" yaml:"key_path"`
	Live      string   `json:"live,omitempty" yaml:"live,omitempty"`
	LiveError string   `json:"live_error,omitempty" yaml:"live_error,omitempty"`
	File      string   `json:"file" yaml:"file"`
	Entries   []string `json:"entries" yaml:"entries"`
	InSync    bool     `json:"in_sync" yaml:"in_sync"`
}

func newGetCommand(ctx *commandContext) *cobra.Command {
	var file string
	var output string

	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Show the file entries and live kernel value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			target := cfg.Paths.SysctlFile
			if file != "" {
				if target, err = config.ExpandPath(file); err != nil {
					return fmt.Errorf("resolve --file: %w", err)
				}
			}

			view, err := inspectKey(cfg, strings.TrimSpace(args[0]), target)
			if err != nil {
				return err
			}
			handled, err := writeStructured(cmd, format, view)
			if err != nil || handled {
				return err
			}
			renderGetView(cmd, view)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Sysctl file to inspect (default paths.sysctl_file)")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text, json or yaml")
	return cmd
}

func inspectKey(cfg *config.Config, name, file string) (getView, error) {
	resolver := sysctl.Resolver{Root: cfg.Paths.ProcRoot}
	view := getView{Key: name, KeyPath: resolver.Resolve(name), File: file, Entries: []string{}}

	lines, err := commit.ReadLines(file)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return view, err
	}
	matches := sysctl.Lookup(lines, name)
	for _, line := range matches {
		view.Entries = append(view.Entries, line.Value())
	}

	live, err := preflight.ReadLive(view.KeyPath)
	if err != nil {
		view.LiveError = err.Error()
		return view, nil
	}
	view.Live = sysctl.CollapseWhitespace(live)
	view.InSync = len(matches) == 1 && sysctl.ValuesMatch(live, matches[0].Value())
	return view, nil
}

func renderGetView(cmd *cobra.Command, view getView) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	fmt.Fprintln(out, renderStatusLine("Key", statusInfo, view.Key, colorize))
	fmt.Fprintln(out, renderStatusLine("Key path", statusInfo, view.KeyPath, colorize))
	if view.LiveError != "" {
		fmt.Fprintln(out, renderStatusLine("Live value", statusError, view.LiveError, colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("Live value", statusInfo, view.Live, colorize))
	}
	fmt.Fprintln(out, renderStatusLine("File", statusInfo, view.File, colorize))

	switch len(view.Entries) {
	case 0:
		fmt.Fprintln(out, renderStatusLine("File value", statusWarn, "not set", colorize))
	case 1:
		fmt.Fprintln(out, renderStatusLine("File value", driftStatus(1, view.InSync), view.Entries[0], colorize))
	default:
		fmt.Fprintln(out, renderStatusLine("File value", driftStatus(len(view.Entries), view.InSync),
			fmt.Sprintf("%d duplicate lines: %s", len(view.Entries), strings.Join(view.Entries, ", ")), colorize))
	}
}
