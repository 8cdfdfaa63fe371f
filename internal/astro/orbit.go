package astro

import (
	"math"
	"time"
)

const (
	// WinterSolsticeDay is the approximate day of year of the December solstice.
	WinterSolsticeDay = 355

	// SolsticeAngle is where the December solstice sits on the orbit ring.
	SolsticeAngle = 90.0
)

// OrbitAngleForDay places a whole day of the year on the orbit ring.
// The December solstice maps to SolsticeAngle and the angle grows by
// 360/daysInYear per day.
func OrbitAngleForDay(dayOfYear, daysInYear int) float64 {
	return orbitAngle(float64(dayOfYear), daysInYear)
}

// OrbitAngle returns Earth's position on the orbit ring in degrees [0, 360).
// The fractional part of the local day is included so the marker moves
// continuously; at 00:00 on day 355 the angle is exactly SolsticeAngle.
func OrbitAngle(t time.Time) float64 {
	day := float64(DayOfYear(t)) + DecimalHour(t)/24
	return orbitAngle(day, DaysInYear(t.Year()))
}

func orbitAngle(day float64, daysInYear int) float64 {
	n := float64(daysInYear)
	sinceSolstice := math.Mod(day-WinterSolsticeDay+n, n)
	if sinceSolstice < 0 {
		sinceSolstice += n
	}
	return Normalize360(SolsticeAngle + sinceSolstice/n*360)
}

// OrbitPoint converts an orbit angle into Cartesian coordinates on a circle
// of the given radius centred on the origin, with y pointing up.
func OrbitPoint(angleDeg, radius float64) (x, y float64) {
	a := degToRad(angleDeg)
	return radius * math.Cos(a), radius * math.Sin(a)
}

// Hemisphere selects how seasons are labelled; the orbit angle itself does
// not depend on it.
type Hemisphere int

const (
	Northern Hemisphere = iota
	Southern
)

// HemisphereOf returns Southern for negative latitudes.
func HemisphereOf(latDeg float64) Hemisphere {
	if latDeg < 0 {
		return Southern
	}
	return Northern
}

func (h Hemisphere) String() string {
	if h == Southern {
		return "southern"
	}
	return "northern"
}

// MarshalText implements encoding.TextMarshaler.
func (h Hemisphere) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// Season is an astronomical season label.
type Season int

const (
	Winter Season = iota
	Spring
	Summer
	Autumn
)

func (s Season) String() string {
	switch s {
	case Spring:
		return "spring"
	case Summer:
		return "summer"
	case Autumn:
		return "autumn"
	default:
		return "winter"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Season) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SeasonAt labels an orbit angle. Each season spans a quarter of the ring
// starting at its solstice or equinox. Southern observers see the label
// shifted half a year.
func SeasonAt(angleDeg float64, h Hemisphere) Season {
	a := angleDeg - SolsticeAngle
	if h == Southern {
		a += 180
	}
	return Season(int(Normalize360(a)/90) % 4)
}

// SeasonLabelAngle is the ring angle at which a season's label is drawn for
// the given hemisphere (the middle of its quarter).
func SeasonLabelAngle(s Season, h Hemisphere) float64 {
	a := SolsticeAngle + float64(s)*90 + 45
	if h == Southern {
		a += 180
	}
	return Normalize360(a)
}
