package monitor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/clrdiag/clrdiag/internal/trace"
	"github.com/clrdiag/clrdiag/utils"
)

func newTraceTable() table.Model {
	columns := []table.Column{
		{Title: "Incl %", Width: 8},
		{Title: "Excl %", Width: 8},
		{Title: "Function", Width: 70},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(14),
		table.WithFocused(true),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).Foreground(utils.InfoColor)
	s.Selected = s.Selected.Foreground(lipgloss.Color("#FFFFFF")).Background(utils.InfoColor)
	t.SetStyles(s)

	return t
}

// collectHotPaths records a short CPU trace of the target and reports its
// hottest functions back to the update loop.
func (m *Model) collectHotPaths() tea.Cmd {
	tools := m.tools
	pid := m.pid
	seconds := int(m.cfg.GetTraceDuration().Seconds())
	topN := m.cfg.TopN

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		outPath := filepath.Join(os.TempDir(),
			fmt.Sprintf("clrdiag_trace_%d_%d.nettrace", pid, time.Now().UnixNano()))
		defer os.Remove(outPath)

		if err := tools.CollectTrace(ctx, pid, seconds, outPath); err != nil {
			return traceReportMsg{err: err}
		}

		report, err := tools.ReportTraceTop(ctx, outPath, topN)
		if err != nil {
			return traceReportMsg{err: err}
		}

		return traceReportMsg{entries: trace.ParseTopReport(report)}
	}
}

func (m *Model) handleTraceReport(msg traceReportMsg) (tea.Model, tea.Cmd) {
	m.tracePending = false

	if msg.err != nil {
		m.setError(fmt.Sprintf("CPU trace failed: %v", msg.err))
		return m, nil
	}

	m.hotPaths = msg.entries
	m.lastTraceTime = time.Now()
	m.clearError()

	rows := make([]table.Row, len(m.hotPaths))
	for i, e := range m.hotPaths {
		rows[i] = table.Row{
			fmt.Sprintf("%.2f", e.InclusivePercent),
			fmt.Sprintf("%.2f", e.ExclusivePercent),
			e.Function,
		}
	}
	m.traceTable.SetRows(rows)

	return m, nil
}

func (m *Model) renderHotPathTab() string {
	if m.pid == 0 {
		return utils.MutedStyle.Render("No target process. Press 'p' to select one.")
	}

	if m.tracePending {
		duration := utils.FormatDuration(m.cfg.GetTraceDuration())
		return utils.InfoStyle.Render(fmt.Sprintf("⏱ Recording CPU trace (%s)...", duration))
	}

	if len(m.hotPaths) == 0 {
		return utils.MutedStyle.Render("No CPU trace yet. Press 't' to record one.")
	}

	status := fmt.Sprintf("%d hot functions • trace taken %s ago • press 't' for a new trace",
		len(m.hotPaths),
		utils.FormatDuration(time.Since(m.lastTraceTime)))

	return lipgloss.JoinVertical(lipgloss.Left,
		utils.MutedStyle.Render(status),
		"",
		m.traceTable.View(),
	)
}

// resizeTables adjusts table heights to the terminal.
func (m *Model) resizeTables() {
	if m.height == 0 {
		return
	}

	h := m.height - 10
	if h < 5 {
		h = 5
	}
	m.heapTable.SetHeight(h)
	m.traceTable.SetHeight(h)
}
