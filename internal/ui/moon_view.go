package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-daynight/internal/astro"
	"github.com/litescript/ls-daynight/internal/state"
)

const (
	// ringSlots is the number of days shown in the phase ring.
	ringSlots = 8

	// Search window for the next moonrise and moonset.
	moonSearchSpan = 26 * time.Hour
	moonSearchStep = 10 * time.Minute
)

// moonGlyphs index the eight phase octants. Crescent and gibbous octants
// share the half-disc glyph of their side.
var moonGlyphs = [ringSlots]string{"●", "◐", "◐", "◐", "○", "◑", "◑", "◑"}

// MoonModel renders the lit moon disc, a ring of upcoming phases and
// rise/set information.
type MoonModel struct {
	width    int
	height   int
	snapshot state.Snapshot

	// Cached horizon search, refreshed when the instant or place changes
	searchedAt  time.Time
	searchedLoc astro.GeoCoordinate
	nextRise    time.Time
	nextSet     time.Time
	hasNextRise bool
	hasNextSet  bool
}

// NewMoonModel creates a new moon view.
func NewMoonModel() MoonModel {
	return MoonModel{}
}

// SetSize updates the viewport size.
func (m MoonModel) SetSize(width, height int) MoonModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with a new snapshot and refreshes the next
// moonrise/moonset search at most once per simulated minute.
func (m MoonModel) UpdateData(snapshot state.Snapshot) MoonModel {
	m.snapshot = snapshot
	if !snapshot.HasFrame {
		return m
	}
	f := snapshot.Frame
	stale := f.Location != m.searchedLoc || m.searchedAt.IsZero() ||
		f.Instant.Sub(m.searchedAt).Abs() >= time.Minute
	if !stale {
		return m
	}

	alt := astro.MoonAltitudeFunc(f.Location)
	m.nextRise, m.hasNextRise = astro.NextCrossing(alt, f.Instant, moonSearchSpan, moonSearchStep, astro.MoonHorizonAltitude, true)
	m.nextSet, m.hasNextSet = astro.NextCrossing(alt, f.Instant, moonSearchSpan, moonSearchStep, astro.MoonHorizonAltitude, false)
	m.searchedAt = f.Instant
	m.searchedLoc = f.Location
	return m
}

// Update handles messages.
func (m MoonModel) Update(msg tea.Msg) (MoonModel, tea.Cmd) {
	return m, nil
}

// View renders the disc, the phase ring and the info panel.
func (m MoonModel) View() string {
	if !m.snapshot.HasFrame {
		return dimStyle.Render("Computing moon...")
	}
	f := m.snapshot.Frame

	w := max(20, m.width-infoPanelWidth-2)
	h := max(10, m.height-4)
	disc := renderMoonDisc(f.MoonPhase, w, h)

	left := disc.String() + "\n\n" + renderPhaseRing(f.MoonPhase)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", m.renderInfo(f))
}

// renderMoonDisc scan-converts the lit region of the disc.
func renderMoonDisc(phase float64, w, h int) *canvas {
	c := newCanvas(w, h)
	cx, cy := w/2, h/2
	r := math.Max(2, math.Min(float64(w)/2-1, (float64(h)/2-0.5)/cellAspect))
	shape := astro.MoonPhasePath(0, 0, 1, phase)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			nx := float64(x-cx) / r
			ny := float64(y-cy) / (r * cellAspect)
			if nx*nx+ny*ny > 1 {
				continue
			}
			if shape.Contains(nx, ny) {
				c.set(x, y, '█', colorMoonLit)
			} else {
				c.set(x, y, '█', colorMoonDark)
			}
		}
	}
	return c
}

// phaseGlyph maps a phase to its octant glyph.
func phaseGlyph(phase float64) string {
	slot := int(math.Floor(phase*ringSlots+0.5)) % ringSlots
	if slot < 0 {
		slot += ringSlots
	}
	return moonGlyphs[slot]
}

// renderPhaseRing shows the phase for today and the following days.
func renderPhaseRing(phase float64) string {
	phases := astro.RingPhases(phase, astro.RingOffsets(ringSlots))

	var glyphs, days []string
	for i, p := range phases {
		g := fmt.Sprintf("%-4s", phaseGlyph(p))
		if i == 0 {
			g = lipgloss.NewStyle().Foreground(colorFocus).Bold(true).Render(g)
		} else {
			g = valueStyle.Render(g)
		}
		glyphs = append(glyphs, g)
		days = append(days, fmt.Sprintf("%-4s", fmt.Sprintf("+%d", i)))
	}
	return strings.Join(glyphs, "") + "\n" + dimStyle.Render(strings.Join(days, ""))
}

func (m MoonModel) renderInfo(f astro.Frame) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(f.MoonPhaseName))
	b.WriteString("\n\n")

	trend := "waning"
	if astro.Waxing(f.MoonPhase) {
		trend = "waxing"
	}
	b.WriteString(infoRow("Phase", fmt.Sprintf("%.3f (%s)", f.MoonPhase, trend)) + "\n")
	b.WriteString(infoRow("Illuminated", fmt.Sprintf("%.0f%%", f.MoonIllumination*100)) + "\n")
	b.WriteString(infoRow("Age", fmt.Sprintf("%.1f days", astro.MoonAge(f.MoonPhase))) + "\n")
	b.WriteString(infoRow("Altitude", fmt.Sprintf("%+.1f°", f.MoonAltitude)) + "\n\n")

	rs := f.MoonRiseSet
	switch rs.Condition {
	case astro.MoonCircumpolar:
		b.WriteString(infoRow("Rise/set", "up all day") + "\n")
	case astro.MoonNeverRises:
		b.WriteString(infoRow("Rise/set", "below horizon all day") + "\n")
	default:
		b.WriteString(infoRow("Moonrise", formatMoonEvent(rs.Moonrise, rs.MoonriseDir)) + "\n")
		b.WriteString(infoRow("Moonset", formatMoonEvent(rs.Moonset, rs.MoonsetDir)) + "\n")
	}
	b.WriteString(infoRow("Transit", astro.FormatHour(rs.TransitHour)) + "\n\n")

	b.WriteString(infoRow("Next rise", m.formatNext(m.nextRise, m.hasNextRise, f.Instant)) + "\n")
	b.WriteString(infoRow("Next set", m.formatNext(m.nextSet, m.hasNextSet, f.Instant)) + "\n")
	b.WriteString(infoRow("New moon", formatUpcoming(astro.NextPhaseInstant(f.Instant, 0), f.Instant)) + "\n")
	b.WriteString(infoRow("Full moon", formatUpcoming(astro.NextPhaseInstant(f.Instant, 0.5), f.Instant)))

	return b.String()
}

func formatMoonEvent(hour *float64, dir string) string {
	if hour == nil {
		return "-"
	}
	s := astro.FormatHour(astro.Normalize24(*hour))
	if dir != "" {
		s += " " + dir
	}
	return s
}

func (m MoonModel) formatNext(t time.Time, ok bool, now time.Time) string {
	if !ok {
		return "none within 26h"
	}
	return formatUpcoming(t, now)
}

func formatUpcoming(t, now time.Time) string {
	return fmt.Sprintf("%s (in %s)", t.In(now.Location()).Format("Jan 02 15:04"), formatDuration(t.Sub(now)))
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "now"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d >= 48*time.Hour {
		return fmt.Sprintf("%dd %dh", int(d.Hours())/24, int(d.Hours())%24)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}
