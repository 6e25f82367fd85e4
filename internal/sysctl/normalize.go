package sysctl

import (
	"regexp"
	"strings"
)

var integerListPattern = regexp.MustCompile(`^[\d\s]+$`)

// IsIntegerList reports whether value holds only digits and whitespace, the
// shape the kernel uses for multi-value parameters such as
// net.ipv4.ip_local_port_range.
func IsIntegerList(value string) bool {
	return integerListPattern.MatchString(value)
}

// CollapseWhitespace trims value and folds every whitespace run into a
// single space.
func CollapseWhitespace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// ValuesMatch compares a live kernel value with the desired one. The live
// value is always trimmed and collapsed; the desired value is collapsed too
// when it is an integer list, otherwise only trimmed.
func ValuesMatch(live, desired string) bool {
	want := strings.TrimSpace(desired)
	if IsIntegerList(want) {
		want = CollapseWhitespace(want)
	}
	return CollapseWhitespace(live) == want
}
