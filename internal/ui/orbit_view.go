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

// OrbitModel renders Earth's yearly ring with season quarters.
type OrbitModel struct {
	width    int
	height   int
	snapshot state.Snapshot
}

// NewOrbitModel creates a new orbit view.
func NewOrbitModel() OrbitModel {
	return OrbitModel{}
}

// SetSize updates the viewport size.
func (m OrbitModel) SetSize(width, height int) OrbitModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with a new snapshot.
func (m OrbitModel) UpdateData(snapshot state.Snapshot) OrbitModel {
	m.snapshot = snapshot
	return m
}

// Update handles messages.
func (m OrbitModel) Update(msg tea.Msg) (OrbitModel, tea.Cmd) {
	return m, nil
}

// View renders the ring and the season panel.
func (m OrbitModel) View() string {
	if !m.snapshot.HasFrame {
		return dimStyle.Render("Computing orbit...")
	}
	f := m.snapshot.Frame

	w := max(30, m.width-infoPanelWidth-2)
	h := max(12, m.height-1)
	ring := m.renderRing(f, w, h)

	return lipgloss.JoinHorizontal(lipgloss.Top, ring.String(), "  ", m.renderInfo(f))
}

// ringCell places an orbit angle on the canvas. OrbitPoint is y-up.
func ringCell(cx, cy int, angleDeg, r float64) (int, int) {
	x, y := astro.OrbitPoint(angleDeg, r)
	return cx + int(math.Round(x)), cy - int(math.Round(y*cellAspect))
}

func (m OrbitModel) renderRing(f astro.Frame, w, h int) *canvas {
	c := newCanvas(w, h)
	cx, cy := w/2, h/2
	r := math.Max(3, math.Min(float64(w)/2-6, (float64(h)/2-1)/cellAspect))

	c.set(cx, cy, '☀', colorSun)

	// Quarter boundaries: solstices and equinoxes
	for k := 0; k < 4; k++ {
		x, y := ringCell(cx, cy, astro.SolsticeAngle+float64(k)*90, r)
		c.set(x, y, '+', colorRim)
	}
	c.circle(cx, cy, r, '·', colorRim)

	current := f.Season
	for s := astro.Winter; s <= astro.Autumn; s++ {
		x, y := ringCell(cx, cy, astro.SeasonLabelAngle(s, f.Hemisphere), r*0.6)
		color := lipgloss.Color("244")
		if s == current {
			color = colorFocus
		}
		c.centeredText(x, y, s.String(), color)
	}

	x, y := ringCell(cx, cy, f.OrbitAngle, r)
	c.set(x, y, '●', colorEarth)

	return c
}

// nextSeasonBoundary returns the season that starts at the next quarter
// boundary after angle and how many days away it is.
func nextSeasonBoundary(angleDeg float64, daysInYear int, h astro.Hemisphere) (astro.Season, float64) {
	sinceSolstice := astro.Normalize360(angleDeg - astro.SolsticeAngle)
	boundary := (math.Floor(sinceSolstice/90) + 1) * 90
	days := (boundary - sinceSolstice) / 360 * float64(daysInYear)
	next := astro.SeasonAt(astro.Normalize360(astro.SolsticeAngle+boundary+1), h)
	return next, days
}

func (m OrbitModel) renderInfo(f astro.Frame) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Orbit"))
	b.WriteString("\n\n")
	b.WriteString(infoRow("Day", fmt.Sprintf("%d / %d", f.DayOfYear, f.DaysInYear)) + "\n")
	b.WriteString(infoRow("Angle", fmt.Sprintf("%.2f°", f.OrbitAngle)) + "\n")
	b.WriteString(infoRow("Hemisphere", f.Hemisphere.String()) + "\n")
	b.WriteString(infoRow("Season", f.Season.String()) + "\n")

	next, days := nextSeasonBoundary(f.OrbitAngle, f.DaysInYear, f.Hemisphere)
	b.WriteString(infoRow("Next", fmt.Sprintf("%s in %.1f days", next, days)) + "\n\n")

	b.WriteString(infoRow("Declination", fmt.Sprintf("%+.2f°", astro.SolarDeclination(f.DayOfYear))))
	return b.String()
}
