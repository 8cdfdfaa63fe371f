// Package astro computes the physical quantities behind the day/night clock:
// solar rise/set, the yearly orbit angle, lunar phase and rise/set, and the
// sky color for a time of day.
//
// Every function is a pure function of its arguments. The current instant is
// always passed in explicitly; nothing in this package reads the wall clock.
package astro

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidCoordinate is returned by GeoCoordinate.Validate.
var ErrInvalidCoordinate = errors.New("coordinate out of range")

// GeoCoordinate is an observer's position on the Earth.
type GeoCoordinate struct {
	LatDeg float64 `json:"lat" yaml:"lat"` // Latitude in degrees (north positive)
	LonDeg float64 `json:"lon" yaml:"lon"` // Longitude in degrees (east positive)
}

// Validate reports whether the coordinate lies in the documented domain.
// The engine does not call it; out-of-range input yields meaningless but
// finite output.
func (g GeoCoordinate) Validate() error {
	if math.IsNaN(g.LatDeg) || g.LatDeg < -90 || g.LatDeg > 90 {
		return fmt.Errorf("latitude %v: %w", g.LatDeg, ErrInvalidCoordinate)
	}
	if math.IsNaN(g.LonDeg) || g.LonDeg < -180 || g.LonDeg > 180 {
		return fmt.Errorf("longitude %v: %w", g.LonDeg, ErrInvalidCoordinate)
	}
	return nil
}

// SkyCoord represents celestial coordinates with both equatorial (RA/Dec)
// and horizontal (Az/El) components.
type SkyCoord struct {
	// Equatorial coordinates (of date)
	RAdeg  float64 // Right Ascension in degrees (0-360)
	DecDeg float64 // Declination in degrees (-90 to +90)

	// Horizontal coordinates (observer-relative)
	AzDeg float64 // Azimuth in degrees (0=N, 90=E, 180=S, 270=W)
	ElDeg float64 // Elevation/Altitude in degrees (0=horizon, 90=zenith)
}

// EquatorialToHorizontal converts equatorial coordinates (RA/Dec) to horizontal
// coordinates (Az/El) for a given observer and time.
//
// The function preserves the input RA/Dec values and populates Az/El.
// Uses standard astronomical conventions:
//   - Azimuth: 0° = North, 90° = East, 180° = South, 270° = West
//   - Elevation: 0° = horizon, 90° = zenith
func EquatorialToHorizontal(eq SkyCoord, obs GeoCoordinate, t time.Time) SkyCoord {
	lat := degToRad(obs.LatDeg)
	ra := degToRad(eq.RAdeg)
	dec := degToRad(eq.DecDeg)

	lst := localSiderealTime(t, obs.LonDeg)

	// Hour Angle = LST - RA
	ha := degToRad(lst) - ra

	sinAlt := math.Sin(dec)*math.Sin(lat) + math.Cos(dec)*math.Cos(lat)*math.Cos(ha)
	alt := math.Asin(clampUnit(sinAlt))

	// At the poles and the zenith the azimuth is undefined; report due north.
	denom := math.Cos(alt) * math.Cos(lat)
	az := 0.0
	if math.Abs(denom) > 1e-12 {
		cosAz := (math.Sin(dec) - math.Sin(alt)*math.Sin(lat)) / denom
		az = math.Acos(clampUnit(cosAz))

		// Positive hour angle means the object is west of the meridian
		if math.Sin(ha) > 0 {
			az = 2*math.Pi - az
		}
	}

	return SkyCoord{
		RAdeg:  eq.RAdeg,
		DecDeg: eq.DecDeg,
		AzDeg:  radToDeg(az),
		ElDeg:  radToDeg(alt),
	}
}

// localSiderealTime calculates the Local Sidereal Time in degrees
// for a given time and observer longitude.
func localSiderealTime(t time.Time, lonDeg float64) float64 {
	return Normalize360(greenwichMeanSiderealTime(t) + lonDeg)
}

// greenwichMeanSiderealTime calculates GMST in degrees for a given instant.
// Uses the IAU 1982 formula based on Julian Date.
func greenwichMeanSiderealTime(t time.Time) float64 {
	jd := julianDate(t)
	T := julianCenturies(jd)

	// GMST = 280.46061837 + 360.98564736629*(JD-2451545) + 0.000387933*T^2 - T^3/38710000
	gmst := 280.46061837 +
		360.98564736629*(jd-j2000JD) +
		0.000387933*T*T -
		T*T*T/38710000.0

	return Normalize360(gmst)
}

// j2000JD is the Julian Date of the J2000.0 epoch (2000-01-01 12:00 UTC).
const j2000JD = 2451545.0

// julianCenturies converts a Julian Date to centuries since J2000.0.
func julianCenturies(jd float64) float64 {
	return (jd - j2000JD) / 36525.0
}

// julianDate calculates the Julian Date for a given time.
func julianDate(t time.Time) float64 {
	t = t.UTC()

	y := float64(t.Year())
	m := float64(t.Month())
	d := float64(t.Day())

	h := float64(t.Hour())
	min := float64(t.Minute())
	sec := float64(t.Second())
	ns := float64(t.Nanosecond())

	dayFrac := (h + min/60 + sec/3600 + ns/3600e9) / 24.0

	// Treat January/February as months 13/14 of the previous year
	if m <= 2 {
		y--
		m += 12
	}

	// Gregorian calendar correction
	A := math.Floor(y / 100)
	B := 2 - A + math.Floor(A/4)

	return math.Floor(365.25*(y+4716)) +
		math.Floor(30.6001*(m+1)) +
		d + dayFrac + B - 1524.5
}

// clampUnit clamps v to [-1, 1] so asin/acos never see rounding overshoot.
func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// degToRad converts degrees to radians.
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// radToDeg converts radians to degrees.
func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
