package ui

import "github.com/charmbracelet/lipgloss"

// Shared styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Width(12)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7B2CBF"))
)

// Dial and disc palette
const (
	colorDayWedge   = lipgloss.Color("#f2c14e")
	colorNightWedge = lipgloss.Color("#2b3a67")
	colorRim        = lipgloss.Color("60")
	colorHand       = lipgloss.Color("255")
	colorHourLabel  = lipgloss.Color("252")
	colorSun        = lipgloss.Color("220")
	colorEarth      = lipgloss.Color("39")
	colorMoonLit    = lipgloss.Color("#f4f1de")
	colorMoonDark   = lipgloss.Color("#2b2d42")
	colorFocus      = lipgloss.Color("229")
)

// infoRow renders an aligned "label value" line for side panels.
func infoRow(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}
