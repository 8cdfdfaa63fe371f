package astro

import "time"

// Frame bundles everything the clock face needs for one instant at one place.
type Frame struct {
	Instant    time.Time     `json:"instant"`
	Location   GeoCoordinate `json:"location"`
	DayOfYear  int           `json:"day_of_year"`
	DaysInYear int           `json:"days_in_year"`
	LocalHour  float64       `json:"local_hour"`

	// Day/night dial
	Solar       SolarTimes `json:"solar"`
	DayArc      Arc        `json:"day_arc"`
	NightArc    Arc        `json:"night_arc"`
	HandAngle   float64    `json:"hand_angle"`
	SunAltitude float64    `json:"sun_altitude"`

	// Yearly orbit
	OrbitAngle float64    `json:"orbit_angle"`
	Hemisphere Hemisphere `json:"hemisphere"`
	Season     Season     `json:"season"`

	// Moon
	MoonPhase        float64     `json:"moon_phase"`
	MoonIllumination float64     `json:"moon_illumination"`
	MoonPhaseName    string      `json:"moon_phase_name"`
	MoonAltitude     float64     `json:"moon_altitude"`
	MoonRiseSet      MoonRiseSet `json:"moon_rise_set"`

	Sky SkyColor `json:"sky"`
}

// Compute runs the full pipeline for one instant and location. Identical
// inputs always produce identical frames.
func Compute(t time.Time, loc GeoCoordinate) Frame {
	doy := DayOfYear(t)
	hour := DecimalHour(t)
	solar := SolarTimesFor(doy, loc.LatDeg)
	day, night := DayNightArcs(solar)
	orbit := OrbitAngle(t)
	hemi := HemisphereOf(loc.LatDeg)
	phase := MoonPhase(t)

	return Frame{
		Instant:    t,
		Location:   loc,
		DayOfYear:  doy,
		DaysInYear: DaysInYear(t.Year()),
		LocalHour:  hour,

		Solar:       solar,
		DayArc:      day,
		NightArc:    night,
		HandAngle:   DialAngle(hour),
		SunAltitude: SunAltitude(t, loc),

		OrbitAngle: orbit,
		Hemisphere: hemi,
		Season:     SeasonAt(orbit, hemi),

		MoonPhase:        phase,
		MoonIllumination: Illumination(phase),
		MoonPhaseName:    PhaseName(phase),
		MoonAltitude:     MoonAltitude(t, loc),
		MoonRiseSet:      MoonRiseSetAt(t, loc.LatDeg, loc.LonDeg),

		Sky: SkyColorAt(hour, solar.Sunrise, solar.Sunset),
	}
}

// IsDaytime reports whether the frame's local hour lies in the day arc.
func (f Frame) IsDaytime() bool {
	return f.Solar.IsDaytime(f.LocalHour)
}

// MoonUp reports whether the Moon is above its rise/set threshold.
func (f Frame) MoonUp() bool {
	return f.MoonAltitude > MoonHorizonAltitude
}
