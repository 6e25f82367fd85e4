// Package sysctl holds the pure reconciliation model for sysctl-style
// configuration files.
//
// It defines the desired Entry, the CheckMode that gates validation phases,
// the ConfigLine classification of file content and the single-pass Merge
// that rewrites a file so it holds exactly one canonical line for a key (or
// none, for absent entries). Nothing in this package performs I/O except the
// small Resolver helper, which only builds paths.
//
// Callers outside the reconcile package should treat Merge as the only way
// to change file content so the idempotence and ordering guarantees hold.
package sysctl
