package trace

import (
	"regexp"
	"strconv"
	"strings"
)

// HotPathEntry is one ranked function from a CPU trace top-N report.
// Inclusive time covers the function and everything it calls; exclusive
// time covers its own body only.
type HotPathEntry struct {
	Function         string
	InclusivePercent float64
	ExclusivePercent float64
}

// 1.   ConsoleApp.Worker.Process()   33.33%   12.50%
var topRowPattern = regexp.MustCompile(`^\s*\d+\.\s+(.+?)\s{2,}([\d.]+)%\s+([\d.]+)%`)

// Synthetic rollup rows the trace reporter emits alongside real functions.
// They are not call targets and would crowd out genuine hot paths.
var aggregateLabels = map[string]struct{}{
	"UNMANAGED_CODE_TIME": {},
	"Idle":                {},
}

// ParseTopReport extracts ranked function rows from dotnet-trace report topN
// output, dropping aggregate rollup rows and anything that is not a ranked
// line.
func ParseTopReport(output string) []HotPathEntry {
	var entries []HotPathEntry

	for _, line := range strings.Split(output, "\n") {
		m := topRowPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		function := strings.TrimSpace(m[1])
		if _, aggregate := aggregateLabels[function]; aggregate {
			continue
		}

		inclusive, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		exclusive, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			continue
		}

		entries = append(entries, HotPathEntry{
			Function:         function,
			InclusivePercent: inclusive,
			ExclusivePercent: exclusive,
		})
	}

	return entries
}
