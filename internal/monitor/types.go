package monitor

type TabType int

const (
	TabCounters TabType = iota
	TabHeap
	TabHotPath
)

func (t TabType) String() string {
	switch t {
	case TabCounters:
		return "Counters"
	case TabHeap:
		return "Heap"
	case TabHotPath:
		return "Hot Paths"
	default:
		return "Unknown"
	}
}

func GetAllTabs() []TabType {
	return []TabType{TabCounters, TabHeap, TabHotPath}
}
