package monitor

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/clrdiag/clrdiag/internal/config"
	"github.com/clrdiag/clrdiag/internal/counters"
	"github.com/clrdiag/clrdiag/utils"
)

func StartTUI(cfg *config.Config, pid int) error {
	model := initialModel(cfg, pid)

	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse support
	)

	// Run the program
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

func (m *Model) Init() tea.Cmd {
	if !m.processMode && m.session != nil {
		// Start the counter collector for direct monitoring
		if err := m.session.Start(); err != nil {
			m.setError(fmt.Sprintf("Failed to start counter collection: %v", err))
		}
	}

	return triggerImmediateTick()
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	// Add error overlay if needed
	if m.showError {
		errorBox := utils.ErrorStyle.Render(m.errorMessage)
		errorOverlay := lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, errorBox)
		return errorOverlay
	}

	if m.processMode {
		return m.renderProcessSelectionView()
	}

	return m.renderMonitorView()
}

func (m *Model) renderMonitorView() string {
	header := m.renderHeader()
	tabBar := m.renderTabBar()
	helpView := m.help.View(keys)

	// Calculate available height for content area
	headerHeight := lipgloss.Height(header)
	tabBarHeight := lipgloss.Height(tabBar)
	helpHeight := lipgloss.Height(helpView)

	contentHeight := m.height - headerHeight - tabBarHeight - helpHeight
	contentHeight = max(contentHeight, 1)

	fullContent := m.renderActiveTab()
	scrolledContent := m.applyScrolling(fullContent, contentHeight)
	content := lipgloss.NewStyle().Height(contentHeight).Render(scrolledContent)

	return lipgloss.JoinVertical(lipgloss.Left, header, tabBar, content, helpView)
}

func (m *Model) renderActiveTab() string {
	switch m.activeTab {
	case TabCounters:
		return m.renderCountersTab()
	case TabHeap:
		return m.renderHeapTab()
	case TabHotPath:
		return m.renderHotPathTab()
	default:
		return utils.CriticalStyle.Render("Unknown tab")
	}
}

func (m *Model) renderHeader() string {
	title := m.getTitle()
	status := m.getStatus()

	headerLine := title + " • " + status
	separatorLine := strings.Repeat("─", m.width)

	return lipgloss.JoinVertical(lipgloss.Left,
		utils.HeaderStyle.Width(m.width).Render(headerLine),
		utils.MutedStyle.Render(separatorLine),
	)
}

func (m *Model) getTitle() string {
	if m.selectedProcess != nil {
		return fmt.Sprintf("🔍 clrdiag watch - %s (PID: %d)",
			m.selectedProcess.Name, m.selectedProcess.PID)
	}
	return fmt.Sprintf("🔍 clrdiag watch - PID %d", m.pid)
}

func (m *Model) getStatus() string {
	if m.session == nil {
		return utils.MutedStyle.Render("○ No target")
	}

	switch m.session.State() {
	case counters.StateCollecting:
		uptime := time.Since(m.startTime)
		return utils.GoodStyle.Render(fmt.Sprintf("🟢 Collecting • Uptime: %s", utils.FormatDuration(uptime)))
	case counters.StateFailed:
		status := "🔴 Collection failed"
		if err := m.session.Err(); err != nil {
			status = fmt.Sprintf("🔴 %v", err)
		}
		return utils.CriticalStyle.Render(status)
	case counters.StateStopped:
		return utils.MutedStyle.Render("⏹ Stopped")
	default:
		return utils.MutedStyle.Render("○ Idle")
	}
}

func (m *Model) renderTabBar() string {
	var tabs []string

	for _, tab := range GetAllTabs() {
		if tab == m.activeTab {
			tabs = append(tabs, utils.TabActiveStyle.Render(tab.String()))
		} else {
			tabs = append(tabs, utils.TabInactiveStyle.Render(tab.String()))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
