package sysctl

import "strings"

// ReconciliationResult is the outcome of Merge.
type ReconciliationResult struct {
	Changed bool
	Lines   []string
}

// Content returns the merged lines as file content.
func (r ReconciliationResult) Content() string {
	return JoinLines(r.Lines)
}

// Merge rewrites lines so they satisfy entry in a single pass.
//
// Lines that are not key/value pairs for entry.Name are copied through in
// place. For an absent entry every matching line is dropped. For a present
// entry the first match is kept when its trimmed value already equals the
// desired value and replaced by the canonical line otherwise; later matches
// are dropped. When no line matched, the canonical line is appended.
//
// Running Merge on its own output with the same entry reports no change.
func Merge(lines []string, entry Entry) ReconciliationResult {
	out := make([]string, 0, len(lines)+1)
	changed := false
	satisfied := false

	for _, text := range lines {
		line := Classify(text)
		if line.Kind != LineKeyValue || line.Name != entry.Name {
			out = append(out, text)
			continue
		}

		if entry.State == StateAbsent {
			changed = true
			continue
		}
		if satisfied {
			// Duplicate of a line already emitted.
			changed = true
			continue
		}
		satisfied = true
		if line.Value() == entry.Value {
			out = append(out, text)
			continue
		}
		out = append(out, entry.FormatLine())
		changed = true
	}

	if entry.State == StatePresent && !satisfied {
		if n := len(out); n > 0 && !strings.HasSuffix(out[n-1], "\n") {
			out[n-1] += "\n"
		}
		out = append(out, entry.FormatLine())
		changed = true
	}

	return ReconciliationResult{Changed: changed, Lines: out}
}
