package counters

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestReaderStreamingTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counters.json")
	r := NewReader(path)

	// Tick 1: two events for one timestamp, file captured mid-write with no
	// closing brackets.
	writeFile(t, path, `{"TargetProcess":"1234","StartTime":"2026-08-31 10:15:00Z","Events":[`+
		`{"timestamp":"2026-08-31 10:15:01Z","provider":"System.Runtime","name":"CPU Usage (%)","counterType":"Metric","value":12.5},`+
		`{"timestamp":"2026-08-31 10:15:01Z","provider":"System.Runtime","name":"Working Set (MB)","counterType":"Metric","value":180},`)

	samples, err := r.Poll()
	if err != nil {
		t.Fatalf("tick 1: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("tick 1 samples = %d, want 1: %+v", len(samples), samples)
	}
	if samples[0].CPUPercent != 12.5 || samples[0].WorkingSetMB != 180 {
		t.Errorf("tick 1 sample = %+v", samples[0])
	}

	// Tick 2: four appended events over two new timestamps. The second
	// CPU event at 10:15:02 overwrites the first within its bucket.
	writeFile(t, path, `{"TargetProcess":"1234","StartTime":"2026-08-31 10:15:00Z","Events":[`+
		`{"timestamp":"2026-08-31 10:15:01Z","provider":"System.Runtime","name":"CPU Usage (%)","counterType":"Metric","value":12.5},`+
		`{"timestamp":"2026-08-31 10:15:01Z","provider":"System.Runtime","name":"Working Set (MB)","counterType":"Metric","value":180},`+
		`{"timestamp":"2026-08-31 10:15:02Z","provider":"System.Runtime","name":"CPU Usage (%)","counterType":"Metric","value":8.0},`+
		`{"timestamp":"2026-08-31 10:15:02Z","provider":"System.Runtime","name":"CPU Usage (%)","counterType":"Metric","value":9.25},`+
		`{"timestamp":"2026-08-31 10:15:03Z","provider":"System.Runtime","name":"GC Heap Size (MB)","counterType":"Metric","value":64},`+
		`{"timestamp":"2026-08-31 10:15:03Z","provider":"System.Runtime","name":"Working Set (MB)","counterType":"Metric","value":182},`)

	samples, err = r.Poll()
	if err != nil {
		t.Fatalf("tick 2: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("tick 2 samples = %d, want 2: %+v", len(samples), samples)
	}
	if samples[0].CPUPercent != 9.25 {
		t.Errorf("tick 2 first sample CPU = %v, want later event to win", samples[0].CPUPercent)
	}
	if samples[1].GCHeapMB != 64 || samples[1].WorkingSetMB != 182 {
		t.Errorf("tick 2 second sample = %+v", samples[1])
	}

	// Tick 3: nothing appended, nothing re-emitted.
	samples, err = r.Poll()
	if err != nil {
		t.Fatalf("tick 3: %v", err)
	}
	if len(samples) != 0 {
		t.Errorf("tick 3 samples = %+v, want none", samples)
	}
}

func TestReaderSuppressesAllZeroSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counters.json")
	r := NewReader(path)

	writeFile(t, path, `{"TargetProcess":"1234","StartTime":"2026-08-31 10:15:00Z","Events":[`+
		`{"timestamp":"2026-08-31 10:15:01Z","provider":"System.Runtime","name":"CPU Usage (%)","counterType":"Metric","value":0},`+
		`{"timestamp":"2026-08-31 10:15:01Z","provider":"System.Runtime","name":"Working Set (MB)","counterType":"Metric","value":0},`+
		`{"timestamp":"2026-08-31 10:15:02Z","provider":"System.Runtime","name":"Working Set (MB)","counterType":"Metric","value":75},`)

	samples, err := r.Poll()
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 1 {
		t.Fatalf("samples = %d, want only the non-zero one: %+v", len(samples), samples)
	}
	if samples[0].WorkingSetMB != 75 {
		t.Errorf("sample = %+v", samples[0])
	}
}

func TestReaderSkipsUnparseableTick(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counters.json")
	r := NewReader(path)

	// Captured mid-write inside a string literal; recovery cannot fix this
	// and the tick is skipped without error.
	writeFile(t, path, `{"TargetProcess":"1234","Events":[{"timestamp":"2026-08-31 10:1`)

	samples, err := r.Poll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if samples != nil {
		t.Errorf("samples = %+v, want nil", samples)
	}
}

func TestRecoverPartialJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"complete document untouched", `{"Events":[]}`, `{"Events":[]}`},
		{"missing closure appended", `{"Events":[{"a":1}`, `{"Events":[{"a":1}]}`},
		{"trailing comma stripped", `{"Events":[{"a":1},`, `{"Events":[{"a":1}]}`},
		{"empty input", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recoverPartialJSON(tt.in); got != tt.want {
				t.Errorf("recoverPartialJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestReaderResynchronizesAfterTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counters.json")
	r := NewReader(path)

	writeFile(t, path, `{"Events":[`+
		`{"timestamp":"2026-08-31 10:15:01Z","provider":"System.Runtime","name":"CPU Usage (%)","counterType":"Metric","value":5},`+
		`{"timestamp":"2026-08-31 10:15:02Z","provider":"System.Runtime","name":"CPU Usage (%)","counterType":"Metric","value":6},`)
	if _, err := r.Poll(); err != nil {
		t.Fatal(err)
	}

	// Tool restarted: shorter file. Nothing replays.
	writeFile(t, path, `{"Events":[`+
		`{"timestamp":"2026-08-31 10:16:00Z","provider":"System.Runtime","name":"CPU Usage (%)","counterType":"Metric","value":7},`)
	samples, err := r.Poll()
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 0 {
		t.Errorf("samples after truncation = %+v, want none", samples)
	}
}
