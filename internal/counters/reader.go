package counters

import (
	"encoding/json"
	"os"
	"strings"
	"time"
)

// Metric names exactly as dotnet-counters emits them in its JSON event log.
const (
	metricCPU        = "CPU Usage (%)"
	metricWorkingSet = "Working Set (MB)"
	metricGCHeap     = "GC Heap Size (MB)"
)

// Sample is one per-tick reading of the three tracked metrics, keyed by the
// event timestamp truncated to second resolution.
type Sample struct {
	Timestamp    time.Time
	CPUPercent   float64
	WorkingSetMB float64
	GCHeapMB     float64
}

type counterEvent struct {
	Timestamp string  `json:"timestamp"`
	Provider  string  `json:"provider"`
	Name      string  `json:"name"`
	Type      string  `json:"counterType"`
	Value     float64 `json:"value"`
}

type counterDocument struct {
	TargetProcess string         `json:"TargetProcess"`
	StartTime     string         `json:"StartTime"`
	Events        []counterEvent `json:"Events"`
}

// Reader tails the growing counter output file. dotnet-counters writes one
// large JSON document and only closes it on exit, so at any poll the file is
// usually syntactically incomplete; Reader repairs the tail, parses, and
// emits only events appended since the previous poll.
type Reader struct {
	path string
	seen int
}

func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// Poll re-reads the whole file and returns samples for newly appended
// events. A document that stays unparseable after tail recovery yields no
// samples and no error; partial writes are the normal case, not a fault.
func (r *Reader) Poll() ([]Sample, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, err
	}

	recovered := recoverPartialJSON(string(data))
	if recovered == "" {
		return nil, nil
	}

	var doc counterDocument
	if err := json.Unmarshal([]byte(recovered), &doc); err != nil {
		return nil, nil
	}

	if len(doc.Events) < r.seen {
		// The tool restarted and truncated its output; resynchronize
		// without replaying anything.
		r.seen = len(doc.Events)
		return nil, nil
	}

	fresh := doc.Events[r.seen:]
	r.seen = len(doc.Events)

	return groupSamples(fresh), nil
}

// recoverPartialJSON turns a mid-write document into a parseable one when
// the only defect is the missing trailing closure: strip a dangling comma
// and close the events array and the enclosing object.
func recoverPartialJSON(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || strings.HasSuffix(trimmed, "]}") {
		return trimmed
	}
	trimmed = strings.TrimSuffix(trimmed, ",")
	return trimmed + "]}"
}

// groupSamples buckets events by truncated timestamp. Within a bucket the
// last event for each metric wins. All-zero samples are dropped: they show
// up while the target is still starting and carry no signal.
func groupSamples(events []counterEvent) []Sample {
	buckets := make(map[time.Time]*Sample)
	var order []time.Time

	for _, ev := range events {
		ts, ok := parseEventTime(ev.Timestamp)
		if !ok {
			continue
		}
		tick := ts.Truncate(time.Second)

		sample, exists := buckets[tick]
		if !exists {
			sample = &Sample{Timestamp: tick}
			buckets[tick] = sample
			order = append(order, tick)
		}

		switch ev.Name {
		case metricCPU:
			sample.CPUPercent = ev.Value
		case metricWorkingSet:
			sample.WorkingSetMB = ev.Value
		case metricGCHeap:
			sample.GCHeapMB = ev.Value
		}
	}

	var samples []Sample
	for _, tick := range order {
		s := buckets[tick]
		if s.CPUPercent > 0 || s.WorkingSetMB > 0 || s.GCHeapMB > 0 {
			samples = append(samples, *s)
		}
	}
	return samples
}

var eventTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
}

func parseEventTime(raw string) (time.Time, bool) {
	for _, layout := range eventTimeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
