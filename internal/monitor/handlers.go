package monitor

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle global keys first (before mode-specific logic)
	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, keys.Quit) {
			if m.session != nil {
				m.session.Stop()
			}
			return m, tea.Quit
		}
	}

	switch msg := msg.(type) {
	case heapSnapshotMsg:
		return m.handleHeapSnapshot(msg)
	case traceReportMsg:
		return m.handleTraceReport(msg)
	}

	if m.processMode {
		return m.handleProcessModeUpdate(msg)
	}

	return m.handleMonitoringModeUpdate(msg)
}

func (m *Model) handleMonitoringModeUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)

	case TickMsg:
		return m.handleMetricsTick()

	case tea.KeyMsg:
		return m.handleMonitoringModeKeys(msg)
	}

	return m, nil
}

func (m *Model) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width

	if m.processMode {
		m.processList.SetWidth(msg.Width)
		m.processList.SetHeight(msg.Height - 4) // Leave space for header and footer
	}

	m.resizeCharts()
	m.resizeTables()

	return m, nil
}

func (m *Model) handleMetricsTick() (tea.Model, tea.Cmd) {
	if m.session != nil {
		m.pushNewSamples()
	}

	// Always schedule the next tick
	return m, m.scheduleTick()
}

func (m *Model) handleMonitoringModeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Tab):
		m.activeTab = m.nextTab()
		return m, nil

	case key.Matches(msg, keys.Left):
		m.activeTab = m.prevTab()
		return m, nil

	case key.Matches(msg, keys.Right):
		m.activeTab = m.nextTab()
		return m, nil

	case key.Matches(msg, keys.Up):
		m.scrollUp(1)
		return m, nil

	case key.Matches(msg, keys.Down):
		m.scrollDown(1)
		return m, nil

	case key.Matches(msg, keys.PageUp):
		m.scrollUp(10)
		return m, nil

	case key.Matches(msg, keys.PageDown):
		m.scrollDown(10)
		return m, nil

	case key.Matches(msg, keys.SelectProcess):
		m.processMode = true
		m.refreshProcessList()
		return m, triggerImmediateTick()

	case key.Matches(msg, keys.Snapshot):
		if m.activeTab == TabHeap && !m.snapshotPending {
			m.snapshotPending = true
			return m, m.takeHeapSnapshot()
		}
		return m, nil

	case key.Matches(msg, keys.Trace):
		if m.activeTab == TabHotPath && !m.tracePending {
			m.tracePending = true
			return m, m.collectHotPaths()
		}
		return m, nil
	}

	// Table navigation on the tabular tabs
	var cmd tea.Cmd
	switch m.activeTab {
	case TabHeap:
		m.heapTable, cmd = m.heapTable.Update(msg)
	case TabHotPath:
		m.traceTable, cmd = m.traceTable.Update(msg)
	}
	return m, cmd
}
