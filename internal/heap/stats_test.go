package heap

import "testing"

// Captured dotnet-gcdump report output. System.Byte[] appears twice with
// different size-bucket annotations and must merge into one row.
const heapReportOutput = `Writing gc heap report for /tmp/20260831_101502.gcdump

  Object Bytes     Count  Type
     1,581,264    29,543  System.String  [System.Private.CoreLib.dll]
       948,545     1,390  System.Byte[] (Bytes > 1K)  [System.Private.CoreLib.dll]
       102,400       512  System.Byte[] (Bytes > 100K)  [System.Private.CoreLib.dll]
        65,536       128  ConsoleApp.Widget  [ConsoleApp.dll]
        12,288        96  System.Collections.Generic.Dictionary<System.String,ConsoleApp.Widget>  [System.Private.CoreLib.dll]
`

func TestParseHeapReport(t *testing.T) {
	aggs := ParseHeapReport(heapReportOutput)

	if len(aggs) != 4 {
		t.Fatalf("aggregates = %d, want 4: %+v", len(aggs), aggs)
	}

	byType := make(map[string]TypeAggregate)
	for _, agg := range aggs {
		byType[agg.Type] = agg
	}

	str := byType["System.String"]
	if str.Count != 29543 || str.Bytes != 1581264 {
		t.Errorf("System.String = %+v", str)
	}

	// Bucketed rows merged: counts and bytes summed under one canonical name.
	bytes := byType["System.Byte[]"]
	if bytes.Count != 1390+512 {
		t.Errorf("System.Byte[] count = %d, want %d", bytes.Count, 1390+512)
	}
	if bytes.Bytes != 948545+102400 {
		t.Errorf("System.Byte[] bytes = %d, want %d", bytes.Bytes, 948545+102400)
	}

	if _, found := byType["System.Byte[] (Bytes > 1K)"]; found {
		t.Error("bucket annotation leaked into canonical type name")
	}

	widget := byType["ConsoleApp.Widget"]
	if widget.Count != 128 || widget.Bytes != 65536 {
		t.Errorf("ConsoleApp.Widget = %+v", widget)
	}

	// First-appearance order preserved.
	if aggs[0].Type != "System.String" || aggs[1].Type != "System.Byte[]" {
		t.Errorf("order = %q, %q", aggs[0].Type, aggs[1].Type)
	}
}

func TestParseHeapReportNoHeader(t *testing.T) {
	if aggs := ParseHeapReport("nothing useful here\n1,024 12 Foo\n"); aggs != nil {
		t.Errorf("expected nil without a header row, got %+v", aggs)
	}
}

func TestCanonicalTypeName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"System.String", "System.String"},
		{"System.String  [System.Private.CoreLib.dll]", "System.String"},
		{"System.Byte[] (Bytes > 1K)", "System.Byte[]"},
		{"System.Byte[] (Bytes > 100K)  [System.Private.CoreLib.dll]", "System.Byte[]"},
		{"Foo[] (Bytes < 1K)", "Foo[]"},
		// Array brackets are part of the type, not an assembly suffix
		// position: only a trailing bracket group is stripped.
		{"System.Int32[]  [System.Private.CoreLib.dll]", "System.Int32[]"},
	}
	for _, tt := range tests {
		if got := CanonicalTypeName(tt.raw); got != tt.want {
			t.Errorf("CanonicalTypeName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
