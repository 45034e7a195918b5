package heap

import "testing"

func snapshot() []TypeAggregate {
	return []TypeAggregate{
		{Type: "System.String", Count: 29543, Bytes: 1581264},
		{Type: "System.Byte[]", Count: 1902, Bytes: 1050945},
		{Type: "ConsoleApp.Widget", Count: 128, Bytes: 65536},
	}
}

func TestComputeDeltasAgainstSelfIsZero(t *testing.T) {
	s := snapshot()
	deltas := ComputeDeltas(s, s)

	if len(deltas) != len(s) {
		t.Fatalf("deltas = %d, want %d", len(deltas), len(s))
	}
	for _, d := range deltas {
		if d.CountDelta != 0 || d.BytesDelta != 0 {
			t.Errorf("%s: delta = (%d, %d), want zero", d.Type, d.CountDelta, d.BytesDelta)
		}
	}
}

func TestComputeDeltasAgainstNilEqualsCurrent(t *testing.T) {
	s := snapshot()
	deltas := ComputeDeltas(s, nil)

	for i, d := range deltas {
		if d.CountDelta != s[i].Count || d.BytesDelta != s[i].Bytes {
			t.Errorf("%s: delta = (%d, %d), want (%d, %d)",
				d.Type, d.CountDelta, d.BytesDelta, s[i].Count, s[i].Bytes)
		}
	}
}

func TestComputeDeltas(t *testing.T) {
	previous := snapshot()
	current := []TypeAggregate{
		{Type: "System.String", Count: 30000, Bytes: 1600000},
		{Type: "System.Byte[]", Count: 1800, Bytes: 1000000},
		{Type: "ConsoleApp.Gadget", Count: 50, Bytes: 4000},
	}

	deltas := ComputeDeltas(current, previous)
	if len(deltas) != 3 {
		t.Fatalf("deltas = %d, want 3", len(deltas))
	}

	byType := make(map[string]TypeAggregateDelta)
	for _, d := range deltas {
		byType[d.Type] = d
	}

	str := byType["System.String"]
	if str.CountDelta != 457 || str.BytesDelta != 18736 {
		t.Errorf("System.String delta = (%d, %d)", str.CountDelta, str.BytesDelta)
	}

	shrunk := byType["System.Byte[]"]
	if shrunk.CountDelta != -102 || shrunk.BytesDelta != -50945 {
		t.Errorf("System.Byte[] delta = (%d, %d)", shrunk.CountDelta, shrunk.BytesDelta)
	}

	// A type unseen in the reference snapshot counts as entirely new.
	fresh := byType["ConsoleApp.Gadget"]
	if fresh.CountDelta != 50 || fresh.BytesDelta != 4000 {
		t.Errorf("ConsoleApp.Gadget delta = (%d, %d)", fresh.CountDelta, fresh.BytesDelta)
	}

	// Vanished types are not reported; the view follows current rows only.
	if _, found := byType["ConsoleApp.Widget"]; found {
		t.Error("vanished type emitted in delta view")
	}
}
