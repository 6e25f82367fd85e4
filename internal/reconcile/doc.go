// Package reconcile orchestrates a single sysctl reconciliation and the
// manifest-driven variants built on it.
//
// Apply runs the fixed sequence: validate the request, run the before
// checks, make sure the target file exists, merge the desired entry into
// its lines, back up and commit when the content changed, reload, and run
// the after checks. The first error stops the sequence. Failures of kind
// postcondition or reload happen after the file was replaced and are never
// rolled back.
//
// ApplyAll applies manifest entries in order under one run lock, and
// Watcher repeats that whenever a target file changes on disk. Every run
// gets a uuid that tags its log lines and its journal row.
package reconcile
