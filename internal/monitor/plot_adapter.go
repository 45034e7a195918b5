package monitor

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/clrdiag/clrdiag/internal/counters"
	"github.com/clrdiag/clrdiag/utils"
)

// LipglossRenderer wraps a lipgloss.Style to implement the utils.Renderer interface
type LipglossRenderer struct {
	Style lipgloss.Style
}

func (lr LipglossRenderer) Render(text string) string {
	return lr.Style.Render(text)
}

func chartStyles() utils.ChartStyles {
	return utils.ChartStyles{
		Muted:    LipglossRenderer{utils.MutedStyle},
		Good:     LipglossRenderer{utils.GoodStyle},
		Info:     LipglossRenderer{utils.InfoStyle},
		Critical: LipglossRenderer{utils.CriticalStyle},
		Warning:  LipglossRenderer{utils.WarningStyle},
	}
}

// renderWorkingSetPlot draws the working set history with the shared plot helper.
func renderWorkingSetPlot(samples []counters.Sample, width int) string {
	values := make([]float64, len(samples))
	timestamps := make([]time.Time, len(samples))
	for i, s := range samples {
		values[i] = s.WorkingSetMB
		timestamps[i] = s.Timestamp
	}

	config := utils.ChartConfig{
		Width:  width,
		Height: 8,
		Styles: chartStyles(),
	}
	return utils.CreateSimplePlot(values, timestamps, "MB", config)
}
