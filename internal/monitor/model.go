package monitor

import (
	"fmt"
	"time"

	"github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/clrdiag/clrdiag/internal/config"
	"github.com/clrdiag/clrdiag/internal/counters"
	"github.com/clrdiag/clrdiag/internal/dotnet"
	"github.com/clrdiag/clrdiag/internal/heap"
	"github.com/clrdiag/clrdiag/internal/trace"
	"github.com/clrdiag/clrdiag/utils"
)

type Model struct {
	cfg     *config.Config
	tools   *dotnet.Toolset
	session *counters.Session
	help    help.Model

	// UI state
	width  int
	height int

	// Tab management
	activeTab TabType
	// Scrolling support
	scrollPositions map[TabType]int // Per-tab scroll positions

	// Process selection state
	processMode     bool
	processList     list.Model
	selectedProcess *dotnet.DotnetProcess
	pid             int

	// Counters tab
	cpuChart    timeserieslinechart.Model
	heapChart   timeserieslinechart.Model
	chartsReady bool
	charted     int // samples already pushed into the charts

	// Heap tab
	heapTable        table.Model
	heapCurrent      []heap.TypeAggregate
	heapDeltas       []heap.TypeAggregateDelta
	snapshotPending  bool
	lastSnapshotTime time.Time

	// Hot path tab
	traceTable    table.Model
	hotPaths      []trace.HotPathEntry
	tracePending  bool
	lastTraceTime time.Time

	// Error state
	lastError    error
	errorMessage string
	showError    bool

	// Status tracking
	startTime time.Time
}

func initialModel(cfg *config.Config, pid int) *Model {
	items := []list.Item{}
	processList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	processList.Title = ".NET Processes"
	processList.SetShowStatusBar(false)
	processList.SetFilteringEnabled(true)

	tools := dotnet.NewToolset(cfg)

	m := &Model{
		cfg:             cfg,
		tools:           tools,
		help:            help.New(),
		activeTab:       TabCounters,
		scrollPositions: make(map[TabType]int),
		processList:     processList,
		processMode:     pid == 0, // Start in process mode if no target specified
		pid:             pid,
		heapTable:       newHeapTable(),
		traceTable:      newTraceTable(),
		startTime:       time.Now(),
	}

	if pid != 0 {
		m.session = counters.NewSession(tools, pid)
	}

	if m.processMode {
		m.refreshProcessList()
	}

	return m
}

// Model state management methods
func (m *Model) setError(err string) {
	m.errorMessage = err
	m.showError = true
	m.lastError = fmt.Errorf("%s", err)
}

func (m *Model) clearError() {
	m.errorMessage = ""
	m.showError = false
	m.lastError = nil
}

// Message types
type TickMsg time.Time

type heapSnapshotMsg struct {
	aggregates []heap.TypeAggregate
	err        error
}

type traceReportMsg struct {
	entries []trace.HotPathEntry
	err     error
}

func (m *Model) scheduleTick() tea.Cmd {
	interval := m.cfg.GetInterval()
	if m.processMode {
		interval = 5 * time.Second // Process refresh interval
	}

	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func triggerImmediateTick() tea.Cmd {
	return func() tea.Msg { return TickMsg(time.Now()) }
}

func (m *Model) nextTab() TabType {
	return utils.GetNextEnum(m.activeTab, TabHotPath)
}

func (m *Model) prevTab() TabType {
	return utils.GetPrevEnum(m.activeTab, TabHotPath)
}
