package astro

import (
	"math"
	"time"
)

// SynodicMonth is the mean length of a lunation in days.
const SynodicMonth = 29.53058770576

// ReferenceNewMoon is a known new moon used as the phase origin.
var ReferenceNewMoon = time.Date(2000, time.January, 6, 18, 14, 0, 0, time.UTC)

const msPerDay = 86400000.0

// MoonPhase returns the lunar phase in [0, 1): 0 is new moon, 0.5 is full.
// It depends only on the absolute instant, not on t's time zone, and is
// valid for instants before the reference new moon.
func MoonPhase(t time.Time) float64 {
	days := float64(t.UnixMilli()-ReferenceNewMoon.UnixMilli()) / msPerDay
	return phaseFromDays(days)
}

func phaseFromDays(days float64) float64 {
	cycle := math.Mod(math.Mod(days, SynodicMonth)+SynodicMonth, SynodicMonth)
	phase := cycle / SynodicMonth
	if phase >= 1 {
		phase = 0
	}
	return phase
}

// Illumination returns the illuminated fraction of the disc for a phase.
func Illumination(phase float64) float64 {
	return (1 - math.Cos(2*math.Pi*phase)) / 2
}

// Waxing reports whether illumination is increasing at this phase.
func Waxing(phase float64) bool {
	return phase < 0.5
}

// MoonAge returns days elapsed since the last new moon.
func MoonAge(phase float64) float64 {
	return phase * SynodicMonth
}

// PhaseName returns the common name of a lunar phase. Principal phases get a
// window of ±1/32 of a cycle around their exact value.
func PhaseName(phase float64) string {
	const w = 1.0 / 32
	switch p := phaseFromDays(phase * SynodicMonth); {
	case p < w || p >= 1-w:
		return "New Moon"
	case p < 0.25-w:
		return "Waxing Crescent"
	case p < 0.25+w:
		return "First Quarter"
	case p < 0.5-w:
		return "Waxing Gibbous"
	case p < 0.5+w:
		return "Full Moon"
	case p < 0.75-w:
		return "Waning Gibbous"
	case p < 0.75+w:
		return "Last Quarter"
	default:
		return "Waning Crescent"
	}
}

// RingPhases returns the phase at each ring slot, where slot i is i days
// after the base phase (negative offsets look into the past).
func RingPhases(base float64, offsets []int) []float64 {
	phases := make([]float64, len(offsets))
	for i, off := range offsets {
		phases[i] = phaseFromDays((base + float64(off)/SynodicMonth) * SynodicMonth)
	}
	return phases
}

// RingOffsets returns the slot offsets for a ring of n moons starting at
// the current day.
func RingOffsets(n int) []int {
	offsets := make([]int, n)
	for i := range offsets {
		offsets[i] = i
	}
	return offsets
}

// NextPhaseInstant returns the next instant at or after t when the phase
// reaches target (in [0,1)). Used to label upcoming new and full moons.
func NextPhaseInstant(t time.Time, target float64) time.Time {
	delta := target - MoonPhase(t)
	if delta < 0 {
		delta++
	}
	ms := math.Round(delta * SynodicMonth * msPerDay)
	return t.Add(time.Duration(ms) * time.Millisecond)
}
