package monitor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/clrdiag/clrdiag/internal/counters"
	"github.com/clrdiag/clrdiag/internal/dotnet"
	"github.com/clrdiag/clrdiag/utils"
)

// processItem represents a .NET process in the selection list
type processItem struct {
	process *dotnet.DotnetProcess
}

func (i processItem) FilterValue() string {
	return fmt.Sprintf("%d %s", i.process.PID, i.process.Name)
}

func (i processItem) Title() string {
	title := fmt.Sprintf("PID %d: %s", i.process.PID, i.process.Name)
	if len(title) > 50 {
		title = title[:47] + "..."
	}
	return title
}

func (i processItem) Description() string {
	return i.process.Path
}

// refreshProcessList discovers and populates the process list
func (m *Model) refreshProcessList() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	processes, err := dotnet.DiscoverProcesses(ctx, m.tools)
	if err != nil {
		m.setError(fmt.Sprintf("Failed to discover processes: %v", err))
		return
	}

	// Sort processes by PID
	sort.Slice(processes, func(i, j int) bool {
		return processes[i].PID < processes[j].PID
	})

	items := make([]list.Item, len(processes))
	for i, proc := range processes {
		items[i] = processItem{process: proc}
	}

	m.processList.SetItems(items)
}

// selectProcess handles process selection and switches to monitoring mode
func (m *Model) selectProcess(process *dotnet.DotnetProcess) (tea.Model, tea.Cmd) {
	// Update target and switch to monitoring mode
	m.pid = process.PID
	m.selectedProcess = process
	m.processMode = false
	m.clearError()

	// Reset state for the new monitoring session
	m.startTime = time.Now()
	m.charted = 0
	m.chartsReady = false
	m.heapCurrent = nil
	m.heapDeltas = nil
	m.hotPaths = nil
	m.resizeCharts()
	m.resizeTables()

	// Restart the counter collector against the new target
	if m.session != nil {
		m.session.Stop()
	}
	m.session = counters.NewSession(m.tools, process.PID)

	if err := m.session.Start(); err != nil {
		m.setError(fmt.Sprintf("Failed to start counter collection for PID %d: %v", process.PID, err))
		m.processMode = true
		return m, nil
	}

	return m, triggerImmediateTick()
}

// renderProcessSelectionView renders the entire process selection UI
func (m *Model) renderProcessSelectionView() string {
	header := utils.HeaderStyle.Width(m.width).Render("🔍 Select .NET Process to Monitor")

	// Process list
	listView := m.processList.View() // Triggers Title(), Description(), FilterValue()

	// Status bar
	statusText := fmt.Sprintf("Found %d .NET processes", len(m.processList.Items()))
	if m.showError {
		statusText = m.errorMessage
	}
	statusView := utils.StatusBarStyle.Width(m.width).Render(statusText)

	separatorLine := strings.Repeat("─", m.width)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		utils.MutedStyle.Render(separatorLine),
		listView,
		statusView,
	)
}

// handleProcessModeUpdate handles all updates when in process mode
func (m *Model) handleProcessModeUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)

	case TickMsg:
		// Refresh list in process mode
		m.refreshProcessList()
		return m, m.scheduleTick()

	case tea.KeyMsg:
		return m.handleProcessModeKeys(msg)
	}

	return m, nil
}

// handleProcessModeKeys handles keyboard input when in process mode
func (m *Model) handleProcessModeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Enter):
		if selectedItem := m.processList.SelectedItem(); selectedItem != nil {
			if procItem, ok := selectedItem.(processItem); ok {
				return m.selectProcess(procItem.process)
			}
		}

	case key.Matches(msg, keys.Escape):
		// ESC in process mode - go back to monitoring if we had selected a process previously
		if m.selectedProcess != nil {
			m.processMode = false
		}
	}

	// Handle list navigation in process mode (for arrow keys, filtering, etc.)
	var cmd tea.Cmd
	m.processList, cmd = m.processList.Update(msg)
	return m, cmd
}
