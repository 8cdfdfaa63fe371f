package state

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/litescript/ls-daynight/internal/astro"
	"github.com/litescript/ls-daynight/internal/locations"
)

func london(t *testing.T, reg *locations.Registry) locations.Location {
	t.Helper()
	loc, err := reg.Lookup("London")
	if err != nil {
		t.Fatalf("Lookup(London): %v", err)
	}
	return loc
}

func newTestManager(t *testing.T, start time.Time) (*Manager, *FixedClock) {
	t.Helper()
	reg := locations.Default()
	clock := NewFixedClock(start)
	cfg := DefaultConfig()
	cfg.Clock = clock
	return NewManager(cfg, reg, london(t, reg)), clock
}

func eventsOfType(events []Event, typ EventType) []Event {
	var out []Event
	for _, e := range events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func TestNewManager(t *testing.T) {
	m, _ := newTestManager(t, time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC))

	if m.RefreshInterval() != time.Second {
		t.Errorf("RefreshInterval = %v, want 1s", m.RefreshInterval())
	}
	if m.HasData() {
		t.Error("HasData should be false initially")
	}
	if m.Location().Name != "London" {
		t.Errorf("Location = %q, want London", m.Location().Name)
	}
}

func TestManager_Tick(t *testing.T) {
	at := time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)
	m, _ := newTestManager(t, at)

	snap := m.Tick()
	if !snap.HasFrame || !m.HasData() {
		t.Fatal("expected a frame after Tick")
	}
	if !snap.LastTick.Equal(at) {
		t.Errorf("LastTick = %v, want %v", snap.LastTick, at)
	}

	want := astro.Compute(at, m.Location().Coord())
	if snap.Frame.SunAltitude != want.SunAltitude || snap.Frame.OrbitAngle != want.OrbitAngle {
		t.Error("Tick frame differs from astro.Compute for the same inputs")
	}
	if len(snap.SunHistory) != 1 || len(snap.MoonHistory) != 1 {
		t.Errorf("history lengths = %d/%d, want 1/1", len(snap.SunHistory), len(snap.MoonHistory))
	}
}

func TestManager_DetectsSunrise(t *testing.T) {
	// London sunrise on the June solstice is about 03:43 UTC.
	m, clock := newTestManager(t, time.Date(2024, 6, 21, 3, 0, 0, 0, time.UTC))

	for i := 0; i < 90; i++ {
		m.Tick()
		clock.Advance(time.Minute)
	}

	rises := eventsOfType(m.RecentEvents(50), EventSunrise)
	if len(rises) != 1 {
		t.Fatalf("got %d sunrise events, want 1", len(rises))
	}
	lo := time.Date(2024, 6, 21, 3, 35, 0, 0, time.UTC)
	hi := time.Date(2024, 6, 21, 3, 55, 0, 0, time.UTC)
	if rises[0].Timestamp.Before(lo) || rises[0].Timestamp.After(hi) {
		t.Errorf("sunrise at %v, want between %v and %v", rises[0].Timestamp, lo, hi)
	}
	if rises[0].Location != "London" {
		t.Errorf("Location = %q, want London", rises[0].Location)
	}
	if len(eventsOfType(m.RecentEvents(50), EventSunset)) != 0 {
		t.Error("unexpected sunset in a morning window")
	}
}

func TestManager_DetectsFullMoon(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	full := astro.NextPhaseInstant(base, 0.5)

	m, clock := newTestManager(t, full.Add(-2*time.Hour))
	for i := 0; i < 5; i++ {
		m.Tick()
		clock.Advance(time.Hour)
	}

	fulls := eventsOfType(m.RecentEvents(50), EventFullMoon)
	if len(fulls) != 1 {
		t.Fatalf("got %d full moon events, want 1", len(fulls))
	}
	if d := fulls[0].Timestamp.Sub(full); d < -time.Minute || d > time.Minute {
		t.Errorf("full moon at %v, want %v", fulls[0].Timestamp, full)
	}
	if len(eventsOfType(m.RecentEvents(50), EventNewMoon)) != 0 {
		t.Error("unexpected new moon event")
	}
}

func TestManager_DetectsSeasonChange(t *testing.T) {
	// Day 355 of 2023 begins the northern winter quarter.
	m, clock := newTestManager(t, time.Date(2023, 12, 20, 23, 30, 0, 0, time.UTC))
	m.Tick()
	clock.Advance(time.Hour)
	m.Tick()

	changes := eventsOfType(m.RecentEvents(50), EventSeasonChange)
	if len(changes) != 1 {
		t.Fatalf("got %d season changes, want 1", len(changes))
	}
	if changes[0].Detail != "autumn → winter" {
		t.Errorf("Detail = %q, want %q", changes[0].Detail, "autumn → winter")
	}
}

func TestManager_LargeGapSkipsEvents(t *testing.T) {
	m, clock := newTestManager(t, time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC))
	m.Tick()
	clock.Advance(12 * time.Hour)
	m.Tick()

	if ev := m.RecentEvents(50); len(ev) != 0 {
		t.Errorf("got %d events across a 12h jump, want 0", len(ev))
	}
}

func TestManager_BackwardsClockSkipsEvents(t *testing.T) {
	m, clock := newTestManager(t, time.Date(2024, 6, 21, 4, 0, 0, 0, time.UTC))
	m.Tick()
	clock.Set(time.Date(2024, 6, 21, 3, 0, 0, 0, time.UTC))
	m.Tick()

	if ev := m.RecentEvents(50); len(ev) != 0 {
		t.Errorf("got %d events when the clock went backwards, want 0", len(ev))
	}
}

func TestManager_SetLocation(t *testing.T) {
	m, _ := newTestManager(t, time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC))
	m.Tick()

	if err := m.SetLocation("tokyo"); err != nil {
		t.Fatalf("SetLocation: %v", err)
	}
	if m.HasData() {
		t.Error("HasData should reset after a location change")
	}
	if m.Location().Name != "Tokyo" {
		t.Errorf("Location = %q, want Tokyo", m.Location().Name)
	}

	changed := eventsOfType(m.RecentEvents(10), EventLocationChanged)
	if len(changed) != 1 || changed[0].Detail != "London → Tokyo" {
		t.Errorf("location events = %+v", changed)
	}

	snap := m.Tick()
	if len(snap.SunHistory) != 1 {
		t.Errorf("history should restart after a location change, got %d points", len(snap.SunHistory))
	}

	// Same location is a no-op
	if err := m.SetLocation("Tokyo"); err != nil {
		t.Fatal(err)
	}
	if n := len(eventsOfType(m.RecentEvents(10), EventLocationChanged)); n != 1 {
		t.Errorf("got %d location events, want 1", n)
	}

	if err := m.SetLocation("Atlantis"); !errors.Is(err, locations.ErrUnknownLocation) {
		t.Errorf("SetLocation(Atlantis) error = %v, want ErrUnknownLocation", err)
	}
}

func TestManager_CycleLocations(t *testing.T) {
	m, _ := newTestManager(t, time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC))

	if got := m.NextLocation().Name; got != "Reykjavik" {
		t.Errorf("NextLocation = %q, want Reykjavik", got)
	}
	if got := m.PrevLocation().Name; got != "London" {
		t.Errorf("PrevLocation = %q, want London", got)
	}
	if got := m.PrevLocation().Name; got != "McMurdo Station" {
		t.Errorf("PrevLocation wrap = %q, want McMurdo Station", got)
	}
}

func TestManager_NoRegistry(t *testing.T) {
	here := locations.Location{Name: "Here", LatDeg: 10, LonDeg: 20}
	m := NewManager(DefaultConfig(), nil, here)

	if got := m.NextLocation(); got != here {
		t.Errorf("NextLocation without registry = %+v, want unchanged", got)
	}
	if err := m.SetLocation("London"); !errors.Is(err, locations.ErrUnknownLocation) {
		t.Errorf("SetLocation error = %v, want ErrUnknownLocation", err)
	}
}

func TestManager_HistoryBuffer(t *testing.T) {
	reg := locations.Default()
	clock := NewFixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	cfg := DefaultConfig()
	cfg.MaxHistoryLen = 5
	cfg.Clock = clock
	m := NewManager(cfg, reg, london(t, reg))

	for i := 0; i < 10; i++ {
		m.Tick()
		clock.Advance(time.Second)
	}

	snap := m.Snapshot()
	if len(snap.SunHistory) != 5 {
		t.Fatalf("history length = %d, want 5", len(snap.SunHistory))
	}
	want := time.Date(2024, 1, 1, 0, 0, 5, 0, time.UTC)
	if !snap.SunHistory[0].Timestamp.Equal(want) {
		t.Errorf("oldest point = %v, want %v", snap.SunHistory[0].Timestamp, want)
	}
}

func TestManager_EventRingBuffer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEvents = 3
	m := NewManager(cfg, nil, locations.Location{Name: "X"})

	for i := 0; i < 5; i++ {
		m.addEvent(Event{Type: EventSunrise, Detail: string(rune('a' + i))})
	}

	events := m.RecentEvents(10)
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for i, want := range []string{"c", "d", "e"} {
		if events[i].Detail != want {
			t.Errorf("events[%d] = %q, want %q", i, events[i].Detail, want)
		}
	}

	last := m.RecentEvents(2)
	if len(last) != 2 || last[0].Detail != "d" {
		t.Errorf("RecentEvents(2) = %+v", last)
	}
}

func TestManager_Snapshot_IsCopy(t *testing.T) {
	m, _ := newTestManager(t, time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC))
	m.Tick()
	m.addEvent(Event{Type: EventSunset})

	snap := m.Snapshot()
	snap.SunHistory[0].Value = 999
	snap.Events[0].Type = EventSunrise

	again := m.Snapshot()
	if again.SunHistory[0].Value == 999 {
		t.Error("modifying snapshot history affected manager state")
	}
	if again.Events[0].Type != EventSunset {
		t.Error("modifying snapshot events affected manager state")
	}
}

func TestManager_SetRefreshInterval(t *testing.T) {
	m := NewManager(DefaultConfig(), nil, locations.Location{Name: "X"})
	m.SetRefreshInterval(250 * time.Millisecond)
	if m.RefreshInterval() != 250*time.Millisecond {
		t.Errorf("RefreshInterval = %v, want 250ms", m.RefreshInterval())
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m, clock := newTestManager(t, time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				clock.Advance(time.Minute)
				m.Tick()
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = m.Snapshot()
				_ = m.RecentEvents(5)
				_ = m.HasData()
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 10; j++ {
			m.NextLocation()
		}
	}()
	wg.Wait()

	if m.Location().Name == "" {
		t.Error("location lost under concurrent access")
	}
}

func TestFixedClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFixedClock(start)
	c.Advance(90 * time.Minute)
	if got := c.Now(); !got.Equal(start.Add(90 * time.Minute)) {
		t.Errorf("Now = %v", got)
	}
	c.Set(start)
	if !c.Now().Equal(start) {
		t.Error("Set did not move the clock")
	}
}
