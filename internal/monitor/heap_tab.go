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

	"github.com/clrdiag/clrdiag/internal/heap"
	"github.com/clrdiag/clrdiag/utils"
)

func newHeapTable() table.Model {
	columns := []table.Column{
		{Title: "Count", Width: 10},
		{Title: "Δ Count", Width: 10},
		{Title: "Bytes", Width: 14},
		{Title: "Δ Bytes", Width: 12},
		{Title: "Type", Width: 48},
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

// takeHeapSnapshot captures a gcdump of the target, summarizes it, and
// reports the aggregates back to the update loop.
func (m *Model) takeHeapSnapshot() tea.Cmd {
	tools := m.tools
	pid := m.pid

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		outPath := filepath.Join(os.TempDir(),
			fmt.Sprintf("clrdiag_gcdump_%d_%d.gcdump", pid, time.Now().UnixNano()))
		defer os.Remove(outPath)

		if err := tools.CollectGCDump(ctx, pid, outPath); err != nil {
			return heapSnapshotMsg{err: err}
		}

		report, err := tools.ReportGCDump(ctx, outPath)
		if err != nil {
			return heapSnapshotMsg{err: err}
		}

		return heapSnapshotMsg{aggregates: heap.ParseHeapReport(report)}
	}
}

func (m *Model) handleHeapSnapshot(msg heapSnapshotMsg) (tea.Model, tea.Cmd) {
	m.snapshotPending = false

	if msg.err != nil {
		m.setError(fmt.Sprintf("Heap snapshot failed: %v", msg.err))
		return m, nil
	}

	// Previous snapshot becomes the baseline for the new one
	m.heapDeltas = heap.ComputeDeltas(msg.aggregates, m.heapCurrent)
	m.heapCurrent = msg.aggregates
	m.lastSnapshotTime = time.Now()
	m.clearError()

	rows := make([]table.Row, len(m.heapDeltas))
	for i, d := range m.heapDeltas {
		rows[i] = table.Row{
			fmt.Sprintf("%d", d.Count),
			formatSigned(d.CountDelta),
			fmt.Sprintf("%d", d.Bytes),
			formatSigned(d.BytesDelta),
			d.Type,
		}
	}
	m.heapTable.SetRows(rows)

	return m, nil
}

func formatSigned(v int64) string {
	if v > 0 {
		return fmt.Sprintf("+%d", v)
	}
	return fmt.Sprintf("%d", v)
}

func (m *Model) renderHeapTab() string {
	if m.pid == 0 {
		return utils.MutedStyle.Render("No target process. Press 'p' to select one.")
	}

	if m.snapshotPending {
		return utils.InfoStyle.Render("📸 Capturing heap snapshot...")
	}

	if len(m.heapCurrent) == 0 {
		return utils.MutedStyle.Render("No heap snapshot yet. Press 's' to capture one.")
	}

	status := fmt.Sprintf("%d types • snapshot taken %s ago • press 's' for a new snapshot",
		len(m.heapCurrent),
		utils.FormatDuration(time.Since(m.lastSnapshotTime)))

	return lipgloss.JoinVertical(lipgloss.Left,
		utils.MutedStyle.Render(status),
		"",
		m.heapTable.View(),
	)
}
