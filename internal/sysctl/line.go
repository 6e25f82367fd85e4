package sysctl

import (
	"strings"
)

// LineKind tags the classification of a configuration line.
type LineKind int

const (
	LineBlank LineKind = iota
	LineComment
	LineMalformed
	LineKeyValue
)

func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineComment:
		return "comment"
	case LineMalformed:
		return "malformed"
	default:
		return "key_value"
	}
}

// ConfigLine is one classified line of a configuration file. Text holds the
// original line including its terminator and is never rewritten. Name and
// RawValue are only set for LineKeyValue.
type ConfigLine struct {
	Kind     LineKind
	Text     string
	Name     string
	RawValue string
}

// Value returns the trimmed value of a key/value line.
func (l ConfigLine) Value() string {
	return strings.TrimSpace(l.RawValue)
}

// Classify tags a single line. A line is a comment when its trimmed form
// starts with "#", and a key/value pair only when it holds exactly one "=".
func Classify(text string) ConfigLine {
	trimmed := strings.TrimSpace(text)
	switch {
	case trimmed == "":
		return ConfigLine{Kind: LineBlank, Text: text}
	case strings.HasPrefix(trimmed, "#"):
		return ConfigLine{Kind: LineComment, Text: text}
	case strings.Count(trimmed, "=") != 1:
		return ConfigLine{Kind: LineMalformed, Text: text}
	}
	name, value, _ := strings.Cut(trimmed, "=")
	return ConfigLine{
		Kind:     LineKeyValue,
		Text:     text,
		Name:     strings.TrimSpace(name),
		RawValue: value,
	}
}

// SplitLines splits content into lines that keep their "\n" terminator. The
// last line has no terminator when content does not end with one.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []string) string {
	return strings.Join(lines, "")
}

// Lookup returns every key/value line for name in file order.
func Lookup(lines []string, name string) []ConfigLine {
	var matches []ConfigLine
	for _, text := range lines {
		line := Classify(text)
		if line.Kind == LineKeyValue && line.Name == name {
			matches = append(matches, line)
		}
	}
	return matches
}
