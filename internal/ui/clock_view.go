package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-daynight/internal/astro"
	"github.com/litescript/ls-daynight/internal/state"
)

const (
	// Star glyphs by drawing brightness
	glyphStarBright = '✶'
	glyphStarMedium = '✸'
	glyphStarDim    = '·'

	glyphSunHand  = '☼'
	glyphMoonHand = '☾'

	infoPanelWidth = 40
)

// ClockModel renders the 24-hour day/night dial.
type ClockModel struct {
	width     int
	height    int
	snapshot  state.Snapshot
	showStars bool
}

// NewClockModel creates a clock view with the star field enabled.
func NewClockModel() ClockModel {
	return ClockModel{showStars: true}
}

// SetSize updates the viewport size.
func (m ClockModel) SetSize(width, height int) ClockModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with a new snapshot.
func (m ClockModel) UpdateData(snapshot state.Snapshot) ClockModel {
	m.snapshot = snapshot
	return m
}

// Update handles messages.
func (m ClockModel) Update(msg tea.Msg) (ClockModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "t" {
		m.showStars = !m.showStars
	}
	return m, nil
}

// ShowStars reports whether the star field is drawn.
func (m ClockModel) ShowStars() bool {
	return m.showStars
}

// View renders the dial and the solar info panel side by side.
func (m ClockModel) View() string {
	if !m.snapshot.HasFrame {
		return dimStyle.Render("Computing sky...")
	}
	f := m.snapshot.Frame

	w := max(24, m.width-infoPanelWidth-2)
	h := max(12, m.height-1)
	dial := m.renderDial(f, w, h)

	return lipgloss.JoinHorizontal(lipgloss.Top, dial.String(), "  ", m.renderInfo(f))
}

// dialRadius returns the dial radius in columns for a canvas, leaving room
// for the hour labels.
func dialRadius(w, h int) float64 {
	byWidth := float64(w)/2 - 4
	byHeight := (float64(h)/2 - 3) / cellAspect
	return math.Max(2, math.Min(byWidth, byHeight))
}

// dialPoint converts a dial angle to a cell offset from the centre. 0°
// (06:00) sits at the left and angles grow clockwise, so noon is at the top.
func dialPoint(angleDeg, r float64) (dx, dy int) {
	a := angleDeg * math.Pi / 180
	return int(math.Round(-r * math.Cos(a))), int(math.Round(-r * math.Sin(a) * cellAspect))
}

// dialAngleAt is the inverse of dialPoint for a cell offset.
func dialAngleAt(dx, dy float64) float64 {
	return astro.Normalize360(math.Atan2(-dy/cellAspect, -dx) * 180 / math.Pi)
}

func (m ClockModel) renderDial(f astro.Frame, w, h int) *canvas {
	c := newCanvas(w, h)
	c.fill(lipgloss.Color(f.Sky.Background))

	cx, cy := w/2, h/2
	r := dialRadius(w, h)

	// Face: day and night wedges
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := float64(x-cx), float64(y-cy)
			if math.Hypot(dx, dy/cellAspect) > r {
				continue
			}
			if f.DayArc.Contains(dialAngleAt(dx, dy)) {
				c.set(x, y, '▓', colorDayWedge)
			} else {
				c.set(x, y, '░', colorNightWedge)
			}
		}
	}
	c.circle(cx, cy, r+1, '·', colorRim)

	if m.showStars {
		m.drawStars(c, f, cx, cy, r+2)
	}

	for _, hour := range []float64{0, 6, 12, 18} {
		dx, dy := dialPoint(astro.DialAngle(hour), r+3)
		c.centeredText(cx+dx, cy+dy, fmt.Sprintf("%02.0f", hour), colorHourLabel)
	}

	ex, ey := dialPoint(f.HandAngle, r-1)
	c.line(cx, cy, cx+ex, cy+ey, '•', colorHand)
	tip := glyphMoonHand
	if f.IsDaytime() {
		tip = glyphSunHand
	}
	c.set(cx+ex, cy+ey, tip, colorSun)
	c.set(cx, cy, '◉', colorHand)

	return c
}

// drawStars places the visible star field on blank cells outside the dial,
// mapping azimuth across the width and altitude down from the top edge.
func (m ClockModel) drawStars(c *canvas, f astro.Frame, cx, cy int, keepOut float64) {
	for _, s := range astro.StarField(f.Instant, f.Location, f.Sky.StarOpacity) {
		x := int(s.AzDeg / 360 * float64(c.w))
		y := int((90 - s.ElDeg) / 90 * float64(c.h-1))
		if math.Hypot(float64(x-cx), float64(y-cy)/cellAspect) <= keepOut {
			continue
		}
		if c.at(x, y) != ' ' {
			continue
		}
		glyph, color := starGlyph(s.Brightness)
		c.set(x, y, glyph, color)
	}
}

// starGlyph picks a glyph and gray level for a drawing brightness in [0, 1].
func starGlyph(brightness float64) (rune, lipgloss.Color) {
	gray := int(clamp(brightness, 0, 1)*155) + 100
	color := lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", gray, gray, gray))
	switch {
	case brightness >= 0.6:
		return glyphStarBright, color
	case brightness >= 0.3:
		return glyphStarMedium, color
	default:
		return glyphStarDim, color
	}
}

func (m ClockModel) renderInfo(f astro.Frame) string {
	var b strings.Builder

	loc := m.snapshot.Location
	b.WriteString(titleStyle.Render(loc.String()))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(f.Instant.Format("Mon 02 Jan 2006  15:04:05 MST")))
	b.WriteString("\n\n")

	b.WriteString(infoRow("Sunrise", astro.FormatHour(f.Solar.Sunrise)) + "\n")
	b.WriteString(infoRow("Sunset", astro.FormatHour(f.Solar.Sunset)) + "\n")
	b.WriteString(infoRow("Day length", fmt.Sprintf("%.1fh", f.Solar.DayLength())) + "\n")
	if f.Solar.Condition != astro.DaylightNormal {
		b.WriteString(infoRow("Condition", f.Solar.Condition.String()) + "\n")
	}
	phase := "Night"
	if f.IsDaytime() {
		phase = "Day"
	}
	b.WriteString(infoRow("Now", phase) + "\n")
	b.WriteString(infoRow("Sun alt", fmt.Sprintf("%+.1f°", f.SunAltitude)) + "\n\n")

	swatch := lipgloss.NewStyle().Background(lipgloss.Color(f.Sky.Background)).Render("      ")
	b.WriteString(infoRow("Sky", swatch+" "+f.Sky.Background) + "\n")
	b.WriteString(infoRow("Stars", fmt.Sprintf("%.0f%% opacity", f.Sky.StarOpacity*100)))
	if m.showStars {
		n := len(astro.StarField(f.Instant, f.Location, f.Sky.StarOpacity))
		b.WriteString(dimStyle.Render(fmt.Sprintf(" (%d up)", n)))
	}
	b.WriteString("\n\n")

	b.WriteString(renderAltitudeSparkline("Sun", m.snapshot.SunHistory) + "\n")
	b.WriteString(renderAltitudeSparkline("Moon", m.snapshot.MoonHistory))

	return b.String()
}
