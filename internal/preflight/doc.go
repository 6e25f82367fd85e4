// Package preflight validates kernel parameter paths and the host
// environment around a reconciliation.
//
// These checks run in two contexts:
//   - The reconciler calls Checker.CheckBefore before touching the sysctl
//     file and Checker.CheckAfter once the file was committed and reloaded.
//     A before-check failure guarantees the file is untouched; an
//     after-check failure means the change is applied but unverified.
//   - The CLI "sysctlr doctor" command uses RunAll to report whether the
//     parameter root, target directories and reload binary are usable.
//
// Existence, readability and writability are probed with access checks,
// never by writing to the parameter.
package preflight
