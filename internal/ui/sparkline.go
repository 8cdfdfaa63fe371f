package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-daynight/internal/state"
)

// SparklineWidth is the fixed width of the altitude sparklines.
const SparklineWidth = 40

// sparklineBlocks are the Unicode block characters for sparkline (0 = lowest, 7 = highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

var (
	altColorLow  = mustColor("#1b2b4b") // below horizon
	altColorMid  = mustColor("#3478c0")
	altColorHigh = mustColor("#ffd479") // high in the sky
)

func mustColor(hex string) colorful.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		panic("ui: bad color " + hex)
	}
	return c
}

// renderAltitudeSparkline draws altitude history in [-90, 90] as blocks,
// followed by the latest value.
func renderAltitudeSparkline(label string, series []state.TimeSeries) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(6)

	if len(series) == 0 {
		return labelStyle.Render(label) + dimStyle.Render("no samples yet")
	}

	var sb strings.Builder
	sb.WriteString(labelStyle.Render(label))

	for _, alt := range resampleAltitude(series, SparklineWidth) {
		t := (clamp(alt, -90, 90) + 90) / 180
		blockIdx := int(t * 7.0)
		if blockIdx > 7 {
			blockIdx = 7
		}
		color := lipgloss.Color(interpolateAltColor(t).Hex())
		sb.WriteString(lipgloss.NewStyle().Foreground(color).Render(string(sparklineBlocks[blockIdx])))
	}

	last := series[len(series)-1].Value
	sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Render(fmt.Sprintf(" %+.1f°", last)))
	return sb.String()
}

// interpolateAltColor blends low → mid → high for t in [0, 1].
func interpolateAltColor(t float64) colorful.Color {
	t = clamp(t, 0, 1)
	if t < 0.5 {
		return altColorLow.BlendLab(altColorMid, t*2).Clamped()
	}
	return altColorMid.BlendLab(altColorHigh, (t-0.5)*2).Clamped()
}

// resampleAltitude averages samples into a fixed number of buckets. Short
// series are returned as-is.
func resampleAltitude(samples []state.TimeSeries, width int) []float64 {
	if len(samples) == 0 || width <= 0 {
		return nil
	}
	if len(samples) <= width {
		out := make([]float64, len(samples))
		for i, s := range samples {
			out[i] = s.Value
		}
		return out
	}

	result := make([]float64, width)
	perBucket := float64(len(samples)) / float64(width)
	for i := 0; i < width; i++ {
		start := int(float64(i) * perBucket)
		end := int(float64(i+1) * perBucket)
		if end > len(samples) {
			end = len(samples)
		}
		if start >= end {
			start = end - 1
		}

		sum := 0.0
		for j := start; j < end; j++ {
			sum += samples[j].Value
		}
		result[i] = sum / float64(end-start)
	}
	return result
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
