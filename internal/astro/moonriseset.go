package astro

import (
	"math"
	"time"
)

// MoonHorizonAltitude is the altitude of the Moon's centre at rise and set,
// in degrees: mean horizontal parallax minus refraction and semidiameter.
const MoonHorizonAltitude = 0.125

// moonHourRate is the mean rate at which the Moon's hour angle grows, in
// degrees per solar hour (one lunar day is about 24h50m).
const moonHourRate = 360.0 / 24.8412

// RiseSetCondition classifies the Moon's behaviour for a date and latitude.
type RiseSetCondition int

const (
	MoonRisesAndSets RiseSetCondition = iota
	MoonCircumpolar                   // never sets
	MoonNeverRises
)

func (c RiseSetCondition) String() string {
	switch c {
	case MoonCircumpolar:
		return "circumpolar"
	case MoonNeverRises:
		return "never rises"
	default:
		return "rises and sets"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c RiseSetCondition) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// MoonRiseSet holds local moonrise and moonset as decimal hours. A nil time
// means the event does not occur; its direction is then "".
//
// Moonrise and Moonset are relative to the local day of the instant and
// may fall outside [0, 24); callers wrap with Normalize24.
type MoonRiseSet struct {
	Moonrise    *float64         `json:"moonrise"`
	Moonset     *float64         `json:"moonset"`
	MoonriseDir string           `json:"moonrise_dir"`
	MoonsetDir  string           `json:"moonset_dir"`
	TransitHour float64          `json:"transit_hour"`
	Condition   RiseSetCondition `json:"condition"`
}

// MoonEquatorial returns the Moon's geocentric right ascension and
// declination in degrees from low-order mean elements, each with the
// leading periodic term of the lunar theory.
func MoonEquatorial(t time.Time) (raDeg, decDeg float64) {
	lon, lat := MoonEcliptic(t)
	T := julianCenturies(julianDate(t))

	eq := EclipticToEquatorial(SphericalToVec3(lon, lat), moonObliquity(T))
	return eq.Spherical()
}

// MoonEcliptic returns the Moon's geocentric ecliptic longitude and latitude
// in degrees.
func MoonEcliptic(t time.Time) (lonDeg, latDeg float64) {
	T := julianCenturies(julianDate(t))

	// Mean longitude, mean anomaly, argument of latitude
	L := 218.3164477 + 481267.88123421*T
	M := 134.9633964 + 477198.8675055*T
	F := 93.2720950 + 483202.0175233*T

	lonDeg = Normalize360(L + 6.289*math.Sin(degToRad(M)))
	latDeg = 5.128 * math.Sin(degToRad(F))
	return lonDeg, latDeg
}

// moonObliquity is the obliquity of the ecliptic, decreasing linearly from
// its J2000 value.
func moonObliquity(T float64) float64 {
	return 23.439291 - 0.0130042*T
}

// MoonAltitude returns the Moon's geocentric elevation in degrees.
func MoonAltitude(t time.Time, obs GeoCoordinate) float64 {
	ra, dec := MoonEquatorial(t)
	return EquatorialToHorizontal(SkyCoord{RAdeg: ra, DecDeg: dec}, obs, t).ElDeg
}

// MoonRiseSetAt computes local moonrise and moonset for the day containing t.
//
// The hour angle at the threshold altitude comes from
// cos(H) = (sin(h0) - sin(lat)·sin(dec)) / (cos(lat)·cos(dec)). Transit is
// placed on the local clock using GMST and the observer's longitude.
// When cos(H) < -1 the Moon is circumpolar (rise=0, no set); when
// cos(H) > 1 it never rises.
func MoonRiseSetAt(t time.Time, latDeg, lonDeg float64) MoonRiseSet {
	ra, dec := MoonEquatorial(t)

	// Local hour angle now, folded to (-180, 180]
	ha := localSiderealTime(t, lonDeg) - ra
	ha = Normalize360(ha + 180) - 180

	// Nearest meridian crossing to t; left unwrapped so rise and set stay
	// continuous across midnight.
	transit := DecimalHour(t) - ha/moonHourRate
	result := MoonRiseSet{TransitHour: Normalize24(transit)}

	cosH, ok := moonCosHourAngle(latDeg, dec)
	switch {
	case !ok:
		// Pole: altitude equals ±declination all day
		if latDeg*dec > 0 && math.Abs(dec) > MoonHorizonAltitude {
			return circumpolar(result)
		}
		result.Condition = MoonNeverRises
		return result
	case cosH < -1:
		return circumpolar(result)
	case cosH > 1:
		result.Condition = MoonNeverRises
		return result
	}

	hHours := radToDeg(math.Acos(cosH)) / moonHourRate
	rise := transit - hHours
	set := transit + hHours

	riseAz := MoonRiseAzimuth(latDeg, dec)
	result.Moonrise = &rise
	result.Moonset = &set
	result.MoonriseDir = CompassDirection(riseAz)
	result.MoonsetDir = CompassDirection(360 - riseAz)
	result.Condition = MoonRisesAndSets
	return result
}

func circumpolar(r MoonRiseSet) MoonRiseSet {
	zero := 0.0
	r.Moonrise = &zero
	r.Moonset = nil
	r.MoonriseDir = ""
	r.MoonsetDir = ""
	r.Condition = MoonCircumpolar
	return r
}

// moonCosHourAngle returns cos(H) at the threshold altitude. ok is false at
// the poles, where the relation divides by zero.
func moonCosHourAngle(latDeg, decDeg float64) (float64, bool) {
	lat, dec := degToRad(latDeg), degToRad(decDeg)
	denom := math.Cos(lat) * math.Cos(dec)
	if math.Abs(denom) < 1e-9 {
		return 0, false
	}
	return (math.Sin(degToRad(MoonHorizonAltitude)) - math.Sin(lat)*math.Sin(dec)) / denom, true
}

// MoonRiseAzimuth returns the azimuth of moonrise in degrees east of north,
// from cos(Az) = sin(dec)/cos(lat). Moonset is at 360 minus this value.
func MoonRiseAzimuth(latDeg, decDeg float64) float64 {
	cosLat := math.Cos(degToRad(latDeg))
	if math.Abs(cosLat) < 1e-9 {
		return 90
	}
	return radToDeg(math.Acos(clampUnit(math.Sin(degToRad(decDeg)) / cosLat)))
}

var compassPoints = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// CompassDirection buckets an azimuth into one of eight 45° sectors centred
// on the cardinal and intercardinal points.
func CompassDirection(azDeg float64) string {
	idx := int(math.Floor(Normalize360(azDeg+22.5)/45)) % 8
	return compassPoints[idx]
}
