package heap

import (
	"regexp"
	"strconv"
	"strings"
)

// TypeAggregate is one row of an aggregated heap report: total live bytes
// and object count for one canonical type name. A snapshot holds at most one
// aggregate per canonical name.
type TypeAggregate struct {
	Type  string
	Count int64
	Bytes int64
}

//      1,581,264    29,543  System.String  [System.Private.CoreLib.dll]
var reportRowPattern = regexp.MustCompile(`^\s*([\d,]+)\s+([\d,]+)\s+(.+?)\s*$`)

// dotnet-gcdump report splits large types into size buckets and tags each
// row with its source assembly. Both suffixes have to go before merging:
//
//	System.Byte[] (Bytes > 100K)  [System.Private.CoreLib.dll]
var (
	bucketAnnotationPattern = regexp.MustCompile(`\s*\(\s*Bytes\s*[<>]=?\s*[^)]*\)$`)
	// The whitespace guard keeps array suffixes like System.Int32[] intact:
	// assembly brackets are always separated from the type name.
	assemblyBracketPattern = regexp.MustCompile(`\s+\[[^\]]+\]$`)
)

// ParseHeapReport parses raw gcdump report output into one TypeAggregate per
// canonical type. Rows whose names collapse to the same canonical type are
// merged by summing counts and bytes; everything before the column header
// row is ignored. Result order follows first appearance in the report.
func ParseHeapReport(output string) []TypeAggregate {
	lines := strings.Split(output, "\n")

	start := -1
	for i, line := range lines {
		if isReportHeader(line) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil
	}

	byType := make(map[string]*TypeAggregate)
	var order []string

	for _, line := range lines[start:] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		m := reportRowPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		bytes, err := strconv.ParseInt(stripThousands(m[1]), 10, 64)
		if err != nil {
			continue
		}
		count, err := strconv.ParseInt(stripThousands(m[2]), 10, 64)
		if err != nil {
			continue
		}

		name := CanonicalTypeName(m[3])
		if name == "" {
			continue
		}

		agg, ok := byType[name]
		if !ok {
			agg = &TypeAggregate{Type: name}
			byType[name] = agg
			order = append(order, name)
		}
		agg.Count += count
		agg.Bytes += bytes
	}

	result := make([]TypeAggregate, 0, len(order))
	for _, name := range order {
		result = append(result, *byType[name])
	}
	return result
}

// CanonicalTypeName strips the tool-added size-bucket and assembly suffixes
// so bucketed rows for one logical type merge into a single aggregate.
func CanonicalTypeName(raw string) string {
	name := strings.TrimSpace(raw)
	for {
		stripped := bucketAnnotationPattern.ReplaceAllString(name, "")
		stripped = assemblyBracketPattern.ReplaceAllString(stripped, "")
		stripped = strings.TrimSpace(stripped)
		if stripped == name {
			return name
		}
		name = stripped
	}
}

func isReportHeader(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "bytes") &&
		strings.Contains(lower, "count") &&
		strings.Contains(lower, "type")
}

func stripThousands(s string) string {
	return strings.ReplaceAll(s, ",", "")
}
