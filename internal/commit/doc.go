// Package commit persists merged sysctl content.
//
// The target file is never rewritten in place: Commit stages the content in
// a temp file beside it and renames it over the original, keeping the
// original permission bits. Every failure is reported as an io-kind
// sysctl.Error.
package commit
