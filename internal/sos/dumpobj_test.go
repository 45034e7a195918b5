package sos

import (
	"strings"
	"testing"
)

// Captured from dotnet-dump analyze "dumpobj" against a sample app, with
// session chatter already stripped. The _flags row is missing its Type
// column, which is the misalignment the tokenizing fallback exists for.
var dumpObjLines = []string{
	"Name:        ConsoleApp.Widget",
	"MethodTable: 00007f8d500173a0",
	"EEClass:     00007f8d5000e918",
	"Size:        48(0x30) bytes",
	"File:        /app/ConsoleApp.dll",
	"Fields:",
	"              MT    Field   Offset                 Type VT     Attr            Value Name",
	"00007f8d4fe8a2e8  4000001        8         System.Int32  1 instance               2a _count",
	"00007f8d4fe8c6f0  4000002        c       System.Boolean  1 instance                1 _enabled",
	"00007f8d4ff01840  4000003       10        System.String  0 instance 00007f8d44029a20 _name",
	"00007f8d4ff01840  4000004       18        System.String  0 instance                0 _comment",
	"00007f8d50018d10  4000005       20 System.Collections.Generic.Dictionary`2[[System.String],[ConsoleApp.Widget]]  0 instance 00007f8d4402a100 _children",
	"00007f8d4fe8a2e8  4000007       2c  1 instance                5 _flags",
	"00007f8d4fe8a2e8  4000006       30         System.Int32  1   static               64 s_limit",
}

func TestParseObjectDump(t *testing.T) {
	names := map[string]string{
		"00007f8d4ff01840": "System.String",
		"00007f8d50018d10": "System.Collections.Generic.Dictionary<System.String,ConsoleApp.Widget>",
	}

	report := ParseObjectDump(dumpObjLines, names)

	if len(report.Header) != 5 {
		t.Fatalf("header lines = %d, want 5", len(report.Header))
	}
	if !strings.HasPrefix(report.Header[0], "Name:") {
		t.Errorf("header[0] = %q, want Name: line", report.Header[0])
	}
	if len(report.Fields) != 7 {
		t.Fatalf("fields = %d, want 7", len(report.Fields))
	}

	byName := make(map[string]ObjectField)
	for _, f := range report.Fields {
		byName[f.Name] = f
	}

	count := byName["_count"]
	if !count.IsPrimitive || count.Decoded != "42" {
		t.Errorf("_count = %+v, want primitive decoded 42", count)
	}
	if count.IsReference {
		t.Error("_count classified as reference")
	}
	if count.Offset != "8" {
		t.Errorf("_count offset = %q, want 8", count.Offset)
	}

	enabled := byName["_enabled"]
	if enabled.Decoded != "true" {
		t.Errorf("_enabled decoded = %q, want true", enabled.Decoded)
	}

	name := byName["_name"]
	if !name.IsReference {
		t.Error("_name not classified as reference")
	}
	if name.Type != "System.String" {
		t.Errorf("_name type = %q", name.Type)
	}
	if name.Value != "00007f8d44029a20" {
		t.Errorf("_name value = %q", name.Value)
	}

	// Null reference slot: pointer VT flag but all-zero value.
	comment := byName["_comment"]
	if comment.IsReference {
		t.Error("_comment (null slot) classified as reference")
	}

	children := byName["_children"]
	if !children.IsReference {
		t.Error("_children not classified as reference")
	}
	if !strings.Contains(children.Type, "Dictionary") {
		t.Errorf("_children type = %q, want resolved dictionary name", children.Type)
	}

	flags := byName["_flags"]
	if flags.Type != UnknownType {
		t.Errorf("_flags type = %q, want %q from fallback tokenizer", flags.Type, UnknownType)
	}
	if flags.IsReference {
		t.Error("_flags (value type flag 1) classified as reference")
	}

	limit := byName["s_limit"]
	if !limit.IsStatic {
		t.Error("s_limit not classified as static")
	}
	if limit.Decoded != "100" {
		t.Errorf("s_limit decoded = %q, want 100", limit.Decoded)
	}
}

func TestParseObjectDumpUnresolvedTypeKeepsRawText(t *testing.T) {
	report := ParseObjectDump(dumpObjLines, nil)

	for _, f := range report.Fields {
		if f.Name == "_name" && f.Type != "System.String" {
			t.Errorf("_name raw type = %q, want System.String", f.Type)
		}
	}
}

func TestMethodTables(t *testing.T) {
	addrs := MethodTables(dumpObjLines)

	want := []string{
		"00007f8d4fe8a2e8",
		"00007f8d4fe8c6f0",
		"00007f8d4ff01840",
		"00007f8d50018d10",
	}
	if len(addrs) != len(want) {
		t.Fatalf("addrs = %v, want %v", addrs, want)
	}
	for i := range want {
		if addrs[i] != want[i] {
			t.Errorf("addrs[%d] = %q, want %q", i, addrs[i], want[i])
		}
	}
}

func TestIsReferenceValue(t *testing.T) {
	tests := []struct {
		vt    string
		value string
		want  bool
	}{
		{"0", "7f8d1234", true},
		{"0", "00000000", false},
		{"0", "0", false},
		{"1", "7f8d1234", false},
		{"0", "not-hex", false},
	}
	for _, tt := range tests {
		if got := isReferenceValue(tt.vt, tt.value); got != tt.want {
			t.Errorf("isReferenceValue(%q, %q) = %v, want %v", tt.vt, tt.value, got, tt.want)
		}
	}
}

func TestScanTypeName(t *testing.T) {
	lines := []string{
		"EEClass:         00007f8d5000e918",
		"Module:          00007f8d4fe71038",
		"Name:            System.Text.StringBuilder",
		"mdToken:         0000000002000089",
	}

	name, ok := ScanTypeName(lines)
	if !ok || name != "System.Text.StringBuilder" {
		t.Errorf("ScanTypeName = %q, %v", name, ok)
	}

	if _, ok := ScanTypeName([]string{"Module: 00007f", "BaseSize: 24"}); ok {
		t.Error("ScanTypeName matched output without a Name: line")
	}
}

func TestClean(t *testing.T) {
	raw := strings.Join([]string{
		"Loading core dump: /tmp/dump_20260831_101502.dmp ...",
		"Ready to process analyzer commands. Type 'help' to list available commands.",
		"",
		"> dumpobj 00007f8d44029a20",
		"Name:        System.String",
		"",
		"String:      hello",
		"exit",
		"",
	}, "\n")

	lines := Clean(raw)

	want := []string{"Name:        System.String", "", "String:      hello"}
	if len(lines) != len(want) {
		t.Fatalf("Clean = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("Clean[%d] = %q, want %q", i, lines[i], want[i])
		}
	}
}
