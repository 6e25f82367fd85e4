// Package main hosts the sysctlr CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into reconciliations:
// "apply" reconciles a single key or the configured manifest, "watch" keeps
// the manifest applied as files change, "get" and "history" inspect state,
// and "doctor" and "config" cover setup. Configuration loading, logger
// construction and journal wiring live in commandContext so subcommands only
// build requests and render results.
//
// Exit status is 1 for errors that left the sysctl file untouched and 2 when
// the file was replaced but the reload or the after-check failed.
package main
