package sos

import (
	"regexp"
	"strings"
)

// Name:        System.Text.StringBuilder
var mtNamePattern = regexp.MustCompile(`^Name:\s+(.+)$`)

// ScanTypeName scans cleaned dumpmt output for the first "Name:" line and
// returns the trimmed type name. It reports false when no such line exists,
// which callers treat the same as a failed resolution.
func ScanTypeName(lines []string) (string, bool) {
	for _, line := range lines {
		m := mtNamePattern.FindStringSubmatch(strings.TrimSpace(line))
		if m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}
