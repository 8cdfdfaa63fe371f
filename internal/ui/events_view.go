package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-daynight/internal/state"
)

// EventsModel lists detected sky events, newest first.
type EventsModel struct {
	width    int
	height   int
	cursor   int
	snapshot state.Snapshot
}

// NewEventsModel creates a new events view.
func NewEventsModel() EventsModel {
	return EventsModel{}
}

// SetSize updates the viewport size.
func (m EventsModel) SetSize(width, height int) EventsModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with a new snapshot.
func (m EventsModel) UpdateData(snapshot state.Snapshot) EventsModel {
	m.snapshot = snapshot
	if n := len(snapshot.Events); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
	return m
}

// Update handles messages.
func (m EventsModel) Update(msg tea.Msg) (EventsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		n := len(m.snapshot.Events)
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < n-1 {
				m.cursor++
			}
		case "home":
			m.cursor = 0
		case "end":
			if n > 0 {
				m.cursor = n - 1
			}
		}
	}
	return m, nil
}

// newestFirst returns the snapshot's events in reverse chronological order.
func (m EventsModel) newestFirst() []state.Event {
	events := m.snapshot.Events
	out := make([]state.Event, len(events))
	for i, e := range events {
		out[len(events)-1-i] = e
	}
	return out
}

// View renders the event table.
func (m EventsModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Sky Events"))
	b.WriteString("\n\n")

	events := m.newestFirst()
	if len(events) == 0 {
		b.WriteString(dimStyle.Render("No events yet. Sunrise, moonrise and phase changes appear here as they happen."))
		return b.String()
	}

	header := fmt.Sprintf("%-20s %-17s %-18s %s", "Time", "Event", "Location", "Detail")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	// Scroll window keeps the cursor visible
	visible := max(1, m.height-4)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(len(events), start+visible)

	for i := start; i < end; i++ {
		e := events[i]
		row := fmt.Sprintf("%-20s %-17s %-18s %s",
			e.Timestamp.Format("2006-01-02 15:04:05"),
			string(e.Type),
			truncate(e.Location, 18),
			e.Detail,
		)
		style := rowStyle.Foreground(eventColor(e.Type))
		if i == m.cursor {
			style = selectedRowStyle
		}
		b.WriteString(style.Render(row))
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf("\n%d events", len(events))))
	return b.String()
}

// eventColor tints rows by event family.
func eventColor(t state.EventType) lipgloss.Color {
	switch t {
	case state.EventSunrise, state.EventSunset:
		return colorSun
	case state.EventMoonrise, state.EventMoonset, state.EventNewMoon, state.EventFullMoon:
		return colorMoonLit
	case state.EventSeasonChange:
		return colorEarth
	default:
		return lipgloss.Color("244")
	}
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
