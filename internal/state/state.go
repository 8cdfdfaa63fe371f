// Package state provides thread-safe state management for the application.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/litescript/ls-daynight/internal/astro"
	"github.com/litescript/ls-daynight/internal/locations"
)

// EventType represents the type of sky event.
type EventType string

const (
	EventSunrise         EventType = "SUNRISE"
	EventSunset          EventType = "SUNSET"
	EventMoonrise        EventType = "MOONRISE"
	EventMoonset         EventType = "MOONSET"
	EventNewMoon         EventType = "NEW_MOON"
	EventFullMoon        EventType = "FULL_MOON"
	EventSeasonChange    EventType = "SEASON_CHANGE"
	EventLocationChanged EventType = "LOCATION_CHANGED"
)

// SunHorizonAltitude is the Sun's centre altitude at standard sunrise and
// sunset, allowing for refraction and the solar semidiameter.
const SunHorizonAltitude = -0.833

// maxEventGap bounds the tick gap across which crossings are reported. A
// larger jump (sleep, clock change) is treated as a discontinuity.
const maxEventGap = 6 * time.Hour

// Event is a sky change detected between two ticks.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Location  string    `json:"location"`
	Detail    string    `json:"detail,omitempty"`
}

// TimeSeries is a single data point with timestamp.
type TimeSeries struct {
	Timestamp time.Time `json:"t"`
	Value     float64   `json:"v"`
}

// Manager handles all shared application state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	clock    Clock
	registry *locations.Registry
	location locations.Location

	// Current state
	current         *astro.Frame
	lastTick        time.Time
	computeDuration time.Duration

	// Altitude history for sparklines
	sunHistory    []TimeSeries
	moonHistory   []TimeSeries
	maxHistoryLen int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	refreshInterval time.Duration
}

// Config holds configuration for the state manager.
type Config struct {
	MaxHistoryLen   int
	MaxEvents       int
	RefreshInterval time.Duration
	Clock           Clock
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistoryLen:   120, // two minutes at one tick per second
		MaxEvents:       50,
		RefreshInterval: time.Second,
		Clock:           SystemClock{},
	}
}

// NewManager creates a state manager observing loc. reg may be nil when the
// location was given as bare coordinates; cycling is then a no-op.
func NewManager(cfg Config, reg *locations.Registry, loc locations.Location) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	return &Manager{
		clock:           clock,
		registry:        reg,
		location:        loc,
		maxHistoryLen:   cfg.MaxHistoryLen,
		maxEvents:       maxEvents,
		events:          make([]Event, 0, maxEvents),
		refreshInterval: cfg.RefreshInterval,
	}
}

// Tick samples the clock, computes a frame for the active location, records
// any events since the previous tick and returns the new snapshot.
func (m *Manager) Tick() Snapshot {
	m.mu.RLock()
	loc := m.location
	m.mu.RUnlock()

	now := m.clock.Now()
	start := time.Now()
	frame := astro.Compute(now, loc.Coord())
	elapsed := time.Since(start)

	m.mu.Lock()
	// The location may have changed while computing; drop the stale frame.
	if m.location == loc {
		m.apply(frame, elapsed)
	}
	snap := m.snapshotLocked()
	m.mu.Unlock()
	return snap
}

func (m *Manager) apply(frame astro.Frame, elapsed time.Duration) {
	if m.current != nil {
		m.detectEvents(*m.current, frame)
	}
	m.current = &frame
	m.lastTick = frame.Instant
	m.computeDuration = elapsed

	m.sunHistory = appendBounded(m.sunHistory, TimeSeries{frame.Instant, frame.SunAltitude}, m.maxHistoryLen)
	m.moonHistory = appendBounded(m.moonHistory, TimeSeries{frame.Instant, frame.MoonAltitude}, m.maxHistoryLen)
}

func appendBounded(s []TimeSeries, p TimeSeries, limit int) []TimeSeries {
	if limit <= 0 {
		return s[:0]
	}
	s = append(s, p)
	if len(s) > limit {
		s = s[len(s)-limit:]
	}
	return s
}

// detectEvents compares consecutive frames and logs horizon crossings,
// principal lunar phases and season changes.
func (m *Manager) detectEvents(prev, cur astro.Frame) {
	gap := cur.Instant.Sub(prev.Instant)
	if gap <= 0 || gap > maxEventGap {
		return
	}
	name := m.location.Name

	if t, rising, ok := crossing(prev.Instant, cur.Instant, prev.SunAltitude, cur.SunAltitude, SunHorizonAltitude); ok {
		typ := EventSunset
		if rising {
			typ = EventSunrise
		}
		m.addEvent(Event{Type: typ, Timestamp: t, Location: name})
	}

	if t, rising, ok := crossing(prev.Instant, cur.Instant, prev.MoonAltitude, cur.MoonAltitude, astro.MoonHorizonAltitude); ok {
		typ, dir := EventMoonset, cur.MoonRiseSet.MoonsetDir
		if rising {
			typ, dir = EventMoonrise, cur.MoonRiseSet.MoonriseDir
		}
		m.addEvent(Event{Type: typ, Timestamp: t, Location: name, Detail: dir})
	}

	switch {
	case prev.MoonPhase > 0.5 && cur.MoonPhase < 0.5:
		m.addEvent(Event{Type: EventNewMoon, Timestamp: astro.NextPhaseInstant(prev.Instant, 0), Location: name})
	case prev.MoonPhase < 0.5 && cur.MoonPhase >= 0.5:
		m.addEvent(Event{Type: EventFullMoon, Timestamp: astro.NextPhaseInstant(prev.Instant, 0.5), Location: name})
	}

	if prev.Season != cur.Season && prev.Hemisphere == cur.Hemisphere {
		m.addEvent(Event{
			Type:      EventSeasonChange,
			Timestamp: cur.Instant,
			Location:  name,
			Detail:    fmt.Sprintf("%s → %s", prev.Season, cur.Season),
		})
	}
}

// crossing reports whether altitude passed threshold between two samples.
func crossing(t1, t2 time.Time, el1, el2, threshold float64) (time.Time, bool, bool) {
	switch {
	case el1 <= threshold && el2 > threshold:
		return astro.InterpolateCrossing(t1, t2, el1, el2, threshold), true, true
	case el1 > threshold && el2 <= threshold:
		return astro.InterpolateCrossing(t1, t2, el1, el2, threshold), false, true
	}
	return time.Time{}, false, false
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Location returns the active location.
func (m *Manager) Location() locations.Location {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.location
}

// SetLocation switches to a named location from the registry.
func (m *Manager) SetLocation(name string) error {
	if m.registry == nil {
		return fmt.Errorf("%w: %q (no registry)", locations.ErrUnknownLocation, name)
	}
	loc, err := m.registry.Lookup(name)
	if err != nil {
		return err
	}
	m.SetCoordinate(loc)
	return nil
}

// SetCoordinate switches to an arbitrary location. Crossing detection
// restarts from the next tick.
func (m *Manager) SetCoordinate(loc locations.Location) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if loc == m.location {
		return
	}
	old := m.location.Name
	m.location = loc
	m.current = nil
	m.sunHistory = m.sunHistory[:0]
	m.moonHistory = m.moonHistory[:0]
	m.addEvent(Event{
		Type:      EventLocationChanged,
		Timestamp: m.clock.Now(),
		Location:  loc.Name,
		Detail:    fmt.Sprintf("%s → %s", old, loc.Name),
	})
}

// NextLocation cycles forward through the registry.
func (m *Manager) NextLocation() locations.Location {
	return m.cycle(1)
}

// PrevLocation cycles backward through the registry.
func (m *Manager) PrevLocation() locations.Location {
	return m.cycle(-1)
}

func (m *Manager) cycle(dir int) locations.Location {
	cur := m.Location()
	if m.registry == nil {
		return cur
	}
	next := m.registry.Next(cur.Name)
	if dir < 0 {
		next = m.registry.Prev(cur.Name)
	}
	m.SetCoordinate(next)
	return next
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Location        locations.Location `json:"location"`
	Frame           astro.Frame        `json:"frame"`
	HasFrame        bool               `json:"has_frame"`
	LastTick        time.Time          `json:"last_tick"`
	ComputeDuration time.Duration      `json:"compute_duration_ns"`
	SunHistory      []TimeSeries       `json:"sun_history,omitempty"`
	MoonHistory     []TimeSeries       `json:"moon_history,omitempty"`
	Events          []Event            `json:"events,omitempty"`
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{
		Location:        m.location,
		LastTick:        m.lastTick,
		ComputeDuration: m.computeDuration,
		SunHistory:      append([]TimeSeries(nil), m.sunHistory...),
		MoonHistory:     append([]TimeSeries(nil), m.moonHistory...),
		Events:          m.getEventsOrdered(),
	}
	if m.current != nil {
		snap.Frame = *m.current
		snap.HasFrame = true
	}
	return snap
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		result[i] = m.events[(m.eventWriteAt+i)%m.maxEvents]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// RefreshInterval returns the configured refresh interval.
func (m *Manager) RefreshInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshInterval
}

// SetRefreshInterval updates the refresh interval.
func (m *Manager) SetRefreshInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshInterval = d
}

// HasData returns true once a frame has been computed for the current location.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}

// Clock returns the manager's time source.
func (m *Manager) Clock() Clock {
	return m.clock
}
