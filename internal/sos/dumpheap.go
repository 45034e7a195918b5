package sos

import (
	"regexp"
	"strconv"
	"strings"
)

// HeapObjectRef identifies one live object found by a type-filtered heap
// scan. Refs are produced per scan and never persisted.
type HeapObjectRef struct {
	Address string
	Size    int64
}

//     7f8d44029a20     7f8d50017380         24
var heapScanRowPattern = regexp.MustCompile(`^\s*([0-9a-fA-F]+)\s+([0-9a-fA-F]+)\s+(\d+)\s*$`)

// ParseHeapScan extracts (address, size) pairs from dumpheap output. Banner
// lines, prompts, column headers and statistics trailers never match the row
// shape and are skipped, so the scan tolerates arbitrary surrounding chatter.
func ParseHeapScan(output string) []HeapObjectRef {
	var refs []HeapObjectRef
	for _, line := range strings.Split(output, "\n") {
		m := heapScanRowPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		size, err := strconv.ParseInt(m[3], 10, 64)
		if err != nil {
			continue
		}

		refs = append(refs, HeapObjectRef{Address: m[1], Size: size})
	}
	return refs
}
