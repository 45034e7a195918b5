package trace

import "testing"

// Captured dotnet-trace report topN output. The UNMANAGED_CODE_TIME row is a
// runtime-overhead rollup and must not appear in the result.
const topReportOutput = `Top 5 Functions (Inclusive)

1.  UNMANAGED_CODE_TIME   45.20%   45.20%
2.  Namespace.Type.Method()   33.33%   12.50%
3.  ConsoleApp.Worker.Process(System.String)   20.10%   18.75%
4.  Idle   1.00%   1.00%
5.  System.Linq.Enumerable.Where(...)   0.37%   0.37%
`

func TestParseTopReport(t *testing.T) {
	entries := ParseTopReport(topReportOutput)

	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3: %+v", len(entries), entries)
	}

	first := entries[0]
	if first.Function != "Namespace.Type.Method()" {
		t.Errorf("function = %q", first.Function)
	}
	if first.InclusivePercent != 33.33 || first.ExclusivePercent != 12.5 {
		t.Errorf("percentages = %v / %v, want 33.33 / 12.5",
			first.InclusivePercent, first.ExclusivePercent)
	}

	if entries[1].Function != "ConsoleApp.Worker.Process(System.String)" {
		t.Errorf("entries[1] = %+v", entries[1])
	}

	for _, e := range entries {
		if e.Function == "UNMANAGED_CODE_TIME" || e.Function == "Idle" {
			t.Errorf("aggregate row %q leaked into results", e.Function)
		}
	}
}

func TestParseTopReportIgnoresChatter(t *testing.T) {
	output := `Found .NET processes
Writing report...
no ranked rows here
`
	if entries := ParseTopReport(output); len(entries) != 0 {
		t.Errorf("entries = %+v, want none", entries)
	}
}
