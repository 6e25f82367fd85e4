package sysctl

import (
	"fmt"
	"strings"
)

// State is the desired presence of an entry in the configuration file.
type State int

const (
	// StatePresent requires exactly one line carrying the desired value.
	StatePresent State = iota
	// StateAbsent requires that no line for the key remains.
	StateAbsent
)

// String returns the lowercase name used in flags and config files.
func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	default:
		return "present"
	}
}

// ParseState converts a flag or config value into a State.
func ParseState(value string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "present":
		return StatePresent, nil
	case "absent":
		return StateAbsent, nil
	default:
		return StatePresent, fmt.Errorf("state: unsupported value %q (want present or absent)", value)
	}
}

// Phase identifies when a validation runs relative to the commit.
type Phase int

const (
	PhaseBefore Phase = iota
	PhaseAfter
)

func (p Phase) String() string {
	if p == PhaseAfter {
		return "after"
	}
	return "before"
}

// CheckMode selects which validation phases run.
type CheckMode int

const (
	ChecksNone CheckMode = iota
	ChecksBefore
	ChecksAfter
	ChecksBoth
)

// String returns the lowercase name used in flags and config files.
func (m CheckMode) String() string {
	switch m {
	case ChecksNone:
		return "none"
	case ChecksBefore:
		return "before"
	case ChecksAfter:
		return "after"
	default:
		return "both"
	}
}

// Includes reports whether the mode requests the given phase.
func (m CheckMode) Includes(phase Phase) bool {
	switch m {
	case ChecksBoth:
		return true
	case ChecksBefore:
		return phase == PhaseBefore
	case ChecksAfter:
		return phase == PhaseAfter
	default:
		return false
	}
}

// ParseCheckMode converts a flag or config value into a CheckMode.
func ParseCheckMode(value string) (CheckMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "both":
		return ChecksBoth, nil
	case "none":
		return ChecksNone, nil
	case "before":
		return ChecksBefore, nil
	case "after":
		return ChecksAfter, nil
	default:
		return ChecksBoth, fmt.Errorf("checks: unsupported value %q (want none, before, after or both)", value)
	}
}

// Entry is the desired target state for one dotted key.
type Entry struct {
	Name  string
	Value string
	State State
}

// NewEntry builds an entry with the name and value trimmed. It does not
// validate coherence; see Entry.Validate.
func NewEntry(name, value string, state State) Entry {
	return Entry{
		Name:  strings.TrimSpace(name),
		Value: strings.TrimSpace(value),
		State: state,
	}
}

// Validate enforces the state/value invariant.
func (e Entry) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return newError(KindCoherence, e.Name, ErrNameRequired)
	}
	switch e.State {
	case StateAbsent:
		if e.Value != "" {
			return newError(KindCoherence, e.Name, ErrValueWithAbsent)
		}
	default:
		if e.Value == "" {
			return newError(KindCoherence, e.Name, ErrValueRequired)
		}
	}
	return nil
}

// FormatLine renders the canonical configuration line for the entry.
func (e Entry) FormatLine() string {
	return e.Name + " = " + e.Value + "\n"
}
