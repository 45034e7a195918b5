package monitor

import (
	"fmt"
	"math"
	"time"

	"github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/charmbracelet/lipgloss"

	"github.com/clrdiag/clrdiag/internal/counters"
	"github.com/clrdiag/clrdiag/utils"
)

const (
	chartHeight   = 12
	minChartWidth = 24
)

func (m *Model) chartWidth() int {
	w := (m.width - 6) / 2
	if w < minChartWidth {
		w = minChartWidth
	}
	return w
}

// resizeCharts rebuilds both charts at the current terminal size and replays
// every collected sample into them.
func (m *Model) resizeCharts() {
	if m.width == 0 {
		return
	}

	w := m.chartWidth()

	m.cpuChart = timeserieslinechart.New(w, chartHeight,
		timeserieslinechart.WithStyle(utils.GoodStyle),
		timeserieslinechart.WithAxesStyles(utils.MutedStyle, utils.MutedStyle),
	)
	m.heapChart = timeserieslinechart.New(w, chartHeight,
		timeserieslinechart.WithStyle(utils.InfoStyle),
		timeserieslinechart.WithAxesStyles(utils.MutedStyle, utils.MutedStyle),
	)
	m.chartsReady = true
	m.charted = 0
	m.pushNewSamples()
}

// pushNewSamples feeds samples collected since the last tick into the charts.
func (m *Model) pushNewSamples() {
	if !m.chartsReady || m.session == nil {
		return
	}

	samples := m.session.Samples()
	if m.charted >= len(samples) {
		return
	}

	for _, s := range samples[m.charted:] {
		m.cpuChart.Push(timeserieslinechart.TimePoint{Time: s.Timestamp, Value: s.CPUPercent})
		m.heapChart.Push(timeserieslinechart.TimePoint{Time: s.Timestamp, Value: s.GCHeapMB})
	}
	m.charted = len(samples)

	m.cpuChart.DrawBraille()
	m.heapChart.DrawBraille()
}

func (m *Model) renderCountersTab() string {
	if m.session == nil {
		return utils.MutedStyle.Render("No target process. Press 'p' to select one.")
	}

	samples := m.session.Samples()
	if len(samples) == 0 {
		return utils.MutedStyle.Render("Waiting for counter samples...")
	}

	latest := samples[len(samples)-1]
	summary := fmt.Sprintf("CPU: %.1f%%  •  Working Set: %s  •  GC Heap: %s",
		latest.CPUPercent,
		utils.MemorySize(int64(latest.WorkingSetMB*float64(utils.MB))),
		utils.MemorySize(int64(latest.GCHeapMB*float64(utils.MB))))

	var charts string
	if m.chartsReady {
		cpuPane := lipgloss.JoinVertical(lipgloss.Left,
			utils.InfoStyle.Render("CPU Usage (%)"),
			m.cpuChart.View(),
		)
		heapPane := lipgloss.JoinVertical(lipgloss.Left,
			utils.InfoStyle.Render("GC Heap Size (MB)"),
			m.heapChart.View(),
		)
		charts = lipgloss.JoinHorizontal(lipgloss.Top, cpuPane, "  ", heapPane)
	}

	workingSetPane := lipgloss.JoinVertical(lipgloss.Left,
		utils.InfoStyle.Render("Working Set (MB)"),
		renderWorkingSetPlot(samples, m.width-4),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		utils.TextStyle.Render(summary),
		"",
		charts,
		"",
		workingSetPane,
		"",
		m.renderCPUStats(samples),
		m.renderHeapTrend(samples),
	)
}

// renderHeapTrend reports GC heap growth over the last five minutes.
func (m *Model) renderHeapTrend(samples []counters.Sample) string {
	if len(samples) < 2 {
		return ""
	}

	points := make([]utils.TimePoint, len(samples))
	for i, s := range samples {
		points[i] = utils.TimePoint{Time: s.Timestamp, Value: s.GCHeapMB}
	}

	slope, correlation := utils.CalculateHistoryTrend(points, 5*time.Minute)
	if slope == 0 {
		return ""
	}

	icon := "📈"
	style := utils.WarningStyle
	if slope < 0 {
		icon = "📉"
		style = utils.GoodStyle
	}

	trend := fmt.Sprintf("%s GC heap trend: %+.2f MB/min (r=%.2f)", icon, slope, correlation)
	return style.Render(trend)
}

func (m *Model) renderCPUStats(samples []counters.Sample) string {
	if len(samples) < 2 {
		return ""
	}

	cpu := make([]float64, len(samples))
	for i, s := range samples {
		cpu[i] = s.CPUPercent
	}

	variance, mean := utils.CalculateVarianceWithMean(cpu)
	stddev := math.Sqrt(variance)

	stats := fmt.Sprintf("CPU over %d samples: mean %.1f%%, stddev %.1f", len(samples), mean, stddev)
	return utils.MutedStyle.Render(stats)
}
