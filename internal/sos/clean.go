package sos

import "strings"

// dotnet-dump analyze wraps every response in session chatter: a loading
// banner while the dump is mapped, a "ready" banner once SOS is up, a ">"
// prompt echoing each command, and the trailing exit directive. None of it
// belongs to the analyzer output proper.
const (
	loadingBanner = "Loading core dump"
	readyBanner   = "Ready to process analyzer commands"
	promptMarker  = ">"
	exitDirective = "exit"
)

// Clean strips session banners and prompt echoes from raw dotnet-dump
// analyze output and returns the remaining lines with leading and trailing
// blank lines removed. Interior blank lines are kept since some SOS reports
// use them as section separators.
func Clean(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)

		if strings.Contains(trimmed, loadingBanner) ||
			strings.Contains(trimmed, readyBanner) {
			continue
		}
		if strings.HasPrefix(trimmed, promptMarker) {
			continue
		}
		if trimmed == exitDirective {
			continue
		}

		lines = append(lines, line)
	}

	return trimBlankEdges(lines)
}

func trimBlankEdges(lines []string) []string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}

	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}

	return lines[start:end]
}
