// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-daynight/internal/logging"
	"github.com/litescript/ls-daynight/internal/state"
	"github.com/litescript/ls-daynight/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewClock ViewMode = iota
	ViewOrbit
	ViewMoon
	ViewEvents

	viewCount
)

// Msg types for Bubble Tea
type (
	// TickMsg triggers periodic UI updates.
	TickMsg time.Time

	// AnimTickMsg triggers fast animation updates.
	AnimTickMsg time.Time

	// FrameMsg delivers a freshly computed snapshot.
	FrameMsg struct {
		Snapshot state.Snapshot
	}
)

// headerHeight is the number of lines taken by the logo and tabs.
const headerHeight = 11

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state  *state.Manager
	logger *logging.Logger

	// UI state
	viewMode  ViewMode
	width     int
	height    int
	ready     bool
	statusMsg string
	animTick  int

	// Sub-models
	clock  ClockModel
	orbit  OrbitModel
	moon   MoonModel
	events EventsModel

	snapshot state.Snapshot
}

// New creates a new root UI model.
func New(stateMgr *state.Manager, logger *logging.Logger) Model {
	if logger == nil {
		logger = logging.Discard()
	}
	return Model{
		state:    stateMgr,
		logger:   logger,
		viewMode: ViewClock,
		clock:    NewClockModel(),
		orbit:    NewOrbitModel(),
		moon:     NewMoonModel(),
		events:   NewEventsModel(),
		snapshot: stateMgr.Snapshot(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		animTickCmd(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "1", "c":
			m.viewMode = ViewClock
		case "2", "o":
			m.viewMode = ViewOrbit
		case "3", "m":
			m.viewMode = ViewMoon
		case "4", "e":
			m.viewMode = ViewEvents

		case "tab":
			m.viewMode = (m.viewMode + 1) % viewCount
		case "shift+tab":
			m.viewMode = (m.viewMode + viewCount - 1) % viewCount

		case "n":
			loc := m.state.NextLocation()
			m.statusMsg = "Location: " + loc.String()
			m.logger.Info("location changed", "location", loc.Name)
			m = m.applySnapshot(m.state.Tick())
		case "p":
			loc := m.state.PrevLocation()
			m.statusMsg = "Location: " + loc.String()
			m.logger.Info("location changed", "location", loc.Name)
			m = m.applySnapshot(m.state.Tick())

		default:
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		contentHeight := msg.Height - headerHeight - 3
		m.clock = m.clock.SetSize(msg.Width, contentHeight)
		m.orbit = m.orbit.SetSize(msg.Width, contentHeight)
		m.moon = m.moon.SetSize(msg.Width, contentHeight)
		m.events = m.events.SetSize(msg.Width, contentHeight)

	case TickMsg:
		cmds = append(cmds, tickCmd())
		m = m.applySnapshot(m.state.Snapshot())

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++

	case FrameMsg:
		m = m.applySnapshot(msg.Snapshot)

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

// applySnapshot pushes a snapshot into every sub-model.
func (m Model) applySnapshot(snap state.Snapshot) Model {
	m.snapshot = snap
	m.clock = m.clock.UpdateData(snap)
	m.orbit = m.orbit.UpdateData(snap)
	m.moon = m.moon.UpdateData(snap)
	m.events = m.events.UpdateData(snap)
	return m
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewClock:
		m.clock, cmd = m.clock.Update(msg)
	case ViewOrbit:
		m.orbit, cmd = m.orbit.Update(msg)
	case ViewMoon:
		m.moon, cmd = m.moon.Update(msg)
	case ViewEvents:
		m.events, cmd = m.events.Update(msg)
	}
	return cmd
}

// ViewMode returns the active view.
func (m Model) ViewMode() ViewMode {
	return m.viewMode
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewClock:
		content = m.clock.View()
	case ViewOrbit:
		content = m.orbit.View()
	case ViewMoon:
		content = m.moon.View()
	case ViewEvents:
		content = m.events.View()
	}

	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	return m.renderLogo() + m.renderTabs() + "\n"
}

// logoLetters holds the six-row block font used by the logo.
var logoLetters = map[rune][]string{
	'L': {"██╗     ", "██║     ", "██║     ", "██║     ", "███████╗", "╚══════╝"},
	'S': {"███████╗", "██╔════╝", "███████╗", "╚════██║", "███████║", "╚══════╝"},
	'-': {"      ", "      ", "█████╗", "╚════╝", "      ", "      "},
	'D': {"██████╗ ", "██╔══██╗", "██║  ██║", "██║  ██║", "██████╔╝", "╚═════╝ "},
	'A': {" █████╗ ", "██╔══██╗", "███████║", "██╔══██║", "██║  ██║", "╚═╝  ╚═╝"},
	'Y': {"██╗   ██╗", "╚██╗ ██╔╝", " ╚████╔╝ ", "  ╚██╔╝  ", "   ██║   ", "   ╚═╝   "},
	'N': {"███╗   ██╗", "████╗  ██║", "██╔██╗ ██║", "██║╚██╗██║", "██║ ╚████║", "╚═╝  ╚═══╝"},
	'I': {"██╗", "██║", "██║", "██║", "██║", "╚═╝"},
	'G': {" ██████╗ ", "██╔════╝ ", "██║  ███╗", "██║   ██║", "╚██████╔╝", " ╚═════╝ "},
	'H': {"██╗  ██╗", "██║  ██║", "███████║", "██╔══██║", "██║  ██║", "╚═╝  ╚═╝"},
	'T': {"████████╗", "╚══██╔══╝", "   ██║   ", "   ██║   ", "   ██║   ", "   ╚═╝   "},
}

// logoLines spells word in the block font. Unknown runes are skipped.
func logoLines(word string) []string {
	lines := make([]string, 6)
	for _, r := range word {
		glyph, ok := logoLetters[r]
		if !ok {
			continue
		}
		for i := range lines {
			lines[i] += glyph[i]
		}
	}
	return lines
}

func (m Model) renderLogo() string {
	logo := logoLines("LS-DAYNIGHT")

	var b strings.Builder
	b.WriteString("\n")

	for row, line := range logo {
		runes := []rune("  " + line)
		for col, r := range runes {
			color := gradientColor(col, row, len(runes), len(logo))
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			b.WriteString(style.Render(string(r)))
		}
		b.WriteString("\n")
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render("  Day · Night · Moon · Seasons"))
	b.WriteString("\n")
	b.WriteString(muted.Render(fmt.Sprintf("  (c) 2025 litescript.net | v%s", version.Version)))
	b.WriteString("\n\n")

	return b.String()
}

// Logo gradient stops: night sky through twilight to dawn gold.
var logoStops = []colorful.Color{
	mustColor("#3B82F6"),
	mustColor("#8B5CF6"),
	mustColor("#D946EF"),
	mustColor("#F2C14E"),
}

// gradientColor returns a hex color for a position in the logo gradient,
// sweeping the stops horizontally and fading toward the bottom rows.
func gradientColor(col, row, width, height int) string {
	if width <= 1 {
		return logoStops[0].Hex()
	}
	x := float64(col) / float64(width-1) * float64(len(logoStops)-1)
	i := int(x)
	if i >= len(logoStops)-1 {
		i = len(logoStops) - 2
	}
	c := logoStops[i].BlendLuv(logoStops[i+1], x-float64(i))

	fade := float64(row) / float64(max(1, height)) * 0.5
	return c.BlendRgb(colorful.Color{}, fade).Clamped().Hex()
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Clock", "[2] Orbit", "[3] Moon", "[4] Events"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	tabDimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, tabDimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

// Animated spinner frames
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (m Model) renderFooter() string {
	footDim := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var status string
	if m.snapshot.HasFrame {
		status = accentStyle.Render(spinner) + footDim.Render(" "+m.snapshot.Location.Name)
		if m.snapshot.ComputeDuration > 0 {
			status += footDim.Render(" (" + m.snapshot.ComputeDuration.Round(time.Microsecond).String() + ")")
		}
	} else {
		status = accentStyle.Render(spinner) + " " + m.renderShimmerText("Computing sky...")
	}

	var help string
	switch m.viewMode {
	case ViewClock:
		help = "n/p: city | t: stars | tab: switch view | q: quit"
	case ViewEvents:
		help = "↑↓: scroll | n/p: city | tab: switch view | q: quit"
	default:
		help = "n/p: city | tab: switch view | q: quit"
	}

	footer := "  " + status + "  " + footDim.Render("|") + "  " + footDim.Render(help)
	if m.statusMsg != "" {
		footer += "\n  " + footDim.Render(m.statusMsg)
	}
	return footer
}

// renderShimmerText renders text with a subtle moving shine effect.
func (m Model) renderShimmerText(text string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	pos := m.animTick % (len(runes) + 8)

	var result strings.Builder
	for i, r := range runes {
		dist := abs(i - pos + 4)

		var hex string
		switch {
		case dist <= 1:
			hex = "#B4A0DC"
		case dist <= 3:
			hex = "#8C78B4"
		case dist <= 5:
			hex = "#6E5A96"
		default:
			hex = "#504678"
		}
		result.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(string(r)))
	}
	return result.String()
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}

// SendFrame creates a command that delivers a snapshot.
func SendFrame(snapshot state.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return FrameMsg{Snapshot: snapshot}
	}
}
