package heap

import (
	"context"
	"strings"
	"sync"
	"testing"
)

// fakeAnalyzer scripts SOS responses and counts invocations per command.
type fakeAnalyzer struct {
	mu        sync.Mutex
	responses map[string][]string
	failing   map[string]bool
	calls     map[string]int
}

func newFakeAnalyzer() *fakeAnalyzer {
	return &fakeAnalyzer{
		responses: make(map[string][]string),
		failing:   make(map[string]bool),
		calls:     make(map[string]int),
	}
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, commands ...string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cmd := commands[0]
	f.calls[cmd]++
	if f.failing[cmd] {
		return nil, context.DeadlineExceeded
	}
	return f.responses[cmd], nil
}

func (f *fakeAnalyzer) Path() string { return "/tmp/fake.dmp" }

func (f *fakeAnalyzer) callCount(cmd string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[cmd]
}

func scriptedAnalyzer() *fakeAnalyzer {
	fake := newFakeAnalyzer()
	fake.responses["dumpobj 7f8d44029a20"] = []string{
		"Name:        ConsoleApp.Widget",
		"Size:        48(0x30) bytes",
		"Fields:",
		"              MT    Field   Offset                 Type VT     Attr            Value Name",
		"00007f8d4fe8a2e8  4000001        8         System.Int32  1 instance               2a _count",
		"00007f8d4ff01840  4000003       10      SHORTENED.TYPE  0 instance 00007f8d4402a100 _name",
	}
	fake.responses["dumpmt 00007f8d4fe8a2e8"] = []string{"Name:     System.Int32"}
	fake.responses["dumpmt 00007f8d4ff01840"] = []string{"Name:     System.String"}
	fake.responses["gcroot 7f8d44029a20"] = []string{
		"Thread 4f2a:",
		"    7ffd0010 (pinned handle)",
		"          -> 7f8d44029a20 ConsoleApp.Widget",
	}
	return fake
}

func TestInspectorObject(t *testing.T) {
	fake := scriptedAnalyzer()
	ins := NewInspector(fake)

	report := ins.Object(context.Background(), "7f8d44029a20")

	if len(report.Fields) != 2 {
		t.Fatalf("fields = %d, want 2", len(report.Fields))
	}
	if report.Fields[0].Decoded != "42" {
		t.Errorf("_count decoded = %q, want 42", report.Fields[0].Decoded)
	}
	// The truncated type column is replaced by the resolved name.
	if report.Fields[1].Type != "System.String" {
		t.Errorf("_name type = %q, want System.String", report.Fields[1].Type)
	}

	if got := fake.callCount("dumpmt 00007f8d4fe8a2e8"); got != 1 {
		t.Errorf("dumpmt calls = %d, want 1", got)
	}
}

func TestInspectorObjectCached(t *testing.T) {
	fake := scriptedAnalyzer()
	ins := NewInspector(fake)

	first := ins.Object(context.Background(), "7f8d44029a20")
	second := ins.Object(context.Background(), "7f8d44029a20")

	if first != second {
		t.Error("second expansion did not return the cached report")
	}
	if got := fake.callCount("dumpobj 7f8d44029a20"); got != 1 {
		t.Errorf("dumpobj calls = %d, want 1", got)
	}
}

func TestInspectorObjectToolFailure(t *testing.T) {
	fake := newFakeAnalyzer()
	fake.failing["dumpobj dead"] = true
	ins := NewInspector(fake)

	report := ins.Object(context.Background(), "dead")

	if len(report.Fields) != 0 {
		t.Errorf("fields = %d, want 0", len(report.Fields))
	}
	if len(report.Header) != 1 || !strings.HasPrefix(report.Header[0], "Error:") {
		t.Errorf("header = %q, want error marker", report.Header)
	}
}

func TestInspectorObjectWithRoots(t *testing.T) {
	fake := scriptedAnalyzer()
	ins := NewInspector(fake)

	report, roots, err := ins.ObjectWithRoots(context.Background(), "7f8d44029a20")
	if err != nil {
		t.Fatalf("unexpected roots error: %v", err)
	}
	if len(report.Fields) != 2 {
		t.Errorf("fields = %d, want 2", len(report.Fields))
	}
	if len(roots) != 3 {
		t.Errorf("roots = %d lines, want 3", len(roots))
	}
}

func TestInspectorObjectWithRootsFailureIsScoped(t *testing.T) {
	fake := scriptedAnalyzer()
	fake.failing["gcroot 7f8d44029a20"] = true
	ins := NewInspector(fake)

	report, roots, err := ins.ObjectWithRoots(context.Background(), "7f8d44029a20")
	if err == nil {
		t.Fatal("expected roots error")
	}
	if roots != nil {
		t.Errorf("roots = %v, want nil", roots)
	}
	// The field table still came back.
	if len(report.Fields) != 2 {
		t.Errorf("fields = %d, want 2", len(report.Fields))
	}
}

func TestInspectorScanType(t *testing.T) {
	fake := newFakeAnalyzer()
	fake.responses["dumpheap -type ConsoleApp.Widget"] = []string{
		"         Address               MT     Size",
		"    7f8d44029a20     7f8d500173a0       48",
		"    7f8d4402a100     7f8d500173a0       48",
	}
	ins := NewInspector(fake)

	refs, err := ins.ScanType(context.Background(), "ConsoleApp.Widget")
	if err != nil {
		t.Fatalf("ScanType: %v", err)
	}
	if len(refs) != 2 || refs[0].Address != "7f8d44029a20" {
		t.Errorf("refs = %+v", refs)
	}
}
