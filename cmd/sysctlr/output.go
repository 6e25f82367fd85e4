package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"sysctlr/internal/reconcile"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func parseOutputFormat(value string) (string, error) {
	switch format := strings.ToLower(strings.TrimSpace(value)); format {
	case "", outputText:
		return outputText, nil
	case outputJSON, outputYAML:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want text, json or yaml)", value)
	}
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeYAML encodes v as YAML to the command's stdout.
func writeYAML(cmd *cobra.Command, v any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// writeStructured writes v in a machine-readable format. It reports false
// for text output so the caller renders its own view.
func writeStructured(cmd *cobra.Command, format string, v any) (bool, error) {
	switch format {
	case outputJSON:
		return true, writeJSON(cmd, v)
	case outputYAML:
		return true, writeYAML(cmd, v)
	default:
		return false, nil
	}
}

type reloadView struct {
	Command  string `json:"command" yaml:"command"`
	ExitCode int    `json:"exit_code" yaml:"exit_code"`
	Output   string `json:"output,omitempty" yaml:"output,omitempty"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

type resultView struct {
	RunID     string      `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Key       string      `json:"key" yaml:"key"`
	State     string      `json:"state" yaml:"state"`
	Value     string      `json:"value,omitempty" yaml:"value,omitempty"`
	File      string      `json:"file" yaml:"file"`
	KeyPath   string      `json:"key_path,omitempty" yaml:"key_path,omitempty"`
	Changed   bool        `json:"changed" yaml:"changed"`
	Committed bool        `json:"committed" yaml:"committed"`
	Verified  bool        `json:"verified" yaml:"verified"`
	Backup    string      `json:"backup,omitempty" yaml:"backup,omitempty"`
	Reload    *reloadView `json:"reload,omitempty" yaml:"reload,omitempty"`
	Error     string      `json:"error,omitempty" yaml:"error,omitempty"`
}

func newResultView(res reconcile.Result, err error) resultView {
	view := resultView{
		RunID:     res.RunID,
		Key:       res.Key,
		State:     res.State.String(),
		Value:     res.Value,
		File:      res.File,
		KeyPath:   res.KeyPath,
		Changed:   res.Changed,
		Committed: res.Committed,
		Verified:  res.Verified,
		Backup:    res.Backup,
	}
	if res.Reload != nil {
		view.Reload = &reloadView{
			Command:  res.Reload.Command,
			ExitCode: res.Reload.ExitCode,
			Output:   res.Reload.Output,
		}
		if reloadErr := res.ReloadError(); reloadErr != nil {
			view.Reload.Error = reloadErr.Error()
		}
	}
	if err != nil {
		view.Error = err.Error()
	}
	return view
}
