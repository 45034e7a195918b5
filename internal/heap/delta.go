package heap

// TypeAggregateDelta is a TypeAggregate annotated with its growth since a
// reference snapshot.
type TypeAggregateDelta struct {
	TypeAggregate
	CountDelta int64
	BytesDelta int64
}

// ComputeDeltas diffs the current snapshot against the previous one, keyed
// by canonical type name. With no previous snapshot every row counts as
// entirely new, so its deltas equal its own totals. Types present only in
// the previous snapshot are not emitted; the delta view iterates current
// rows only.
func ComputeDeltas(current, previous []TypeAggregate) []TypeAggregateDelta {
	var lookup map[string]TypeAggregate
	if previous != nil {
		lookup = make(map[string]TypeAggregate, len(previous))
		for _, agg := range previous {
			lookup[agg.Type] = agg
		}
	}

	deltas := make([]TypeAggregateDelta, 0, len(current))
	for _, agg := range current {
		prev := lookup[agg.Type] // zero value when unseen before
		deltas = append(deltas, TypeAggregateDelta{
			TypeAggregate: agg,
			CountDelta:    agg.Count - prev.Count,
			BytesDelta:    agg.Bytes - prev.Bytes,
		})
	}
	return deltas
}
