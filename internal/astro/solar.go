package astro

import "math"

// DaylightCondition distinguishes ordinary days from polar day and night.
type DaylightCondition int

const (
	DaylightNormal DaylightCondition = iota
	PolarDay                          // sun never sets: sunrise=0, sunset=24
	PolarNight                        // sun never rises: sunrise=sunset=12
)

func (c DaylightCondition) String() string {
	switch c {
	case PolarDay:
		return "polar day"
	case PolarNight:
		return "polar night"
	default:
		return "normal"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c DaylightCondition) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// SolarTimes holds sunrise and sunset as decimal hours in [0, 24].
// The times are symmetric about local solar noon (12:00).
type SolarTimes struct {
	Sunrise   float64           `json:"sunrise"`
	Sunset    float64           `json:"sunset"`
	Condition DaylightCondition `json:"condition"`
}

// DayLength returns the hours between sunrise and sunset.
func (s SolarTimes) DayLength() float64 {
	return s.Sunset - s.Sunrise
}

// IsDaytime reports whether the decimal hour falls between sunrise and sunset.
func (s SolarTimes) IsDaytime(hour float64) bool {
	return hour >= s.Sunrise && hour < s.Sunset
}

// maxDeclination is the axial tilt used by the single-harmonic declination model.
const maxDeclination = 23.45

// SolarDeclination approximates the Sun's declination in degrees for a
// 1-based day of the year. Day 81 is the spring equinox reference.
func SolarDeclination(dayOfYear int) float64 {
	return maxDeclination * math.Sin(360.0/365.0*float64(dayOfYear-81)*math.Pi/180)
}

// SolarTimesFor computes sunrise and sunset from the sunrise hour angle
// cos(ω) = -tan(lat)·tan(δ). Each 15° of hour angle is one hour.
//
// When the Sun stays up all day the result is {0, 24}; when it never rises
// the result is a zero-width window at noon, {12, 12}.
func SolarTimesFor(dayOfYear int, latDeg float64) SolarTimes {
	dec := degToRad(SolarDeclination(dayOfYear))
	cosOmega := -math.Tan(degToRad(latDeg)) * math.Tan(dec)

	switch {
	case math.IsNaN(cosOmega):
		// tan(±90°) is finite in float64, but guard anyway
		return SolarTimes{Sunrise: 12, Sunset: 12, Condition: PolarNight}
	case cosOmega < -1:
		return SolarTimes{Sunrise: 0, Sunset: 24, Condition: PolarDay}
	case cosOmega > 1:
		return SolarTimes{Sunrise: 12, Sunset: 12, Condition: PolarNight}
	}

	omegaHours := radToDeg(math.Acos(cosOmega)) / 15
	return SolarTimes{
		Sunrise:   12 - omegaHours,
		Sunset:    12 + omegaHours,
		Condition: DaylightNormal,
	}
}

// DialAngle maps a decimal hour onto the 24-hour dial: 06:00 sits at 0° and
// the dial turns once per day.
func DialAngle(hour float64) float64 {
	return Normalize360((hour - 6) / 24 * 360)
}

// Arc is a pie-wedge sector on the dial, sweeping forward from StartDeg.
type Arc struct {
	StartDeg float64 `json:"start_deg"`
	SweepDeg float64 `json:"sweep_deg"`
}

// EndDeg returns the normalized end angle of the arc.
func (a Arc) EndDeg() float64 {
	return Normalize360(a.StartDeg + a.SweepDeg)
}

// Contains reports whether the dial angle lies within the arc.
func (a Arc) Contains(angleDeg float64) bool {
	if a.SweepDeg >= 360 {
		return true
	}
	if a.SweepDeg <= 0 {
		return false
	}
	return Normalize360(angleDeg-a.StartDeg) < a.SweepDeg
}

// DayNightArcs splits the dial into the daylight sector (sunrise forward to
// sunset) and its complement.
func DayNightArcs(s SolarTimes) (day, night Arc) {
	sweep := (s.Sunset - s.Sunrise) / 24 * 360
	if sweep < 0 {
		sweep = 0
	} else if sweep > 360 {
		sweep = 360
	}

	start := DialAngle(s.Sunrise)
	day = Arc{StartDeg: start, SweepDeg: sweep}
	night = Arc{StartDeg: Normalize360(start + sweep), SweepDeg: 360 - sweep}
	return day, night
}
