package astro

import (
	"math"
	"time"
)

// IsLeapYear reports whether February 29 exists in the given year.
func IsLeapYear(year int) bool {
	return time.Date(year, time.February, 29, 0, 0, 0, 0, time.UTC).Month() == time.February
}

// DaysInYear returns 366 for leap years and 365 otherwise.
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// DayOfYear returns the 1-based day of the year on t's local calendar,
// i.e. the number of days elapsed since December 31 of the previous year.
func DayOfYear(t time.Time) int {
	return t.YearDay()
}

// DecimalHour returns the local clock time of t as fractional hours in [0, 24).
func DecimalHour(t time.Time) float64 {
	return float64(t.Hour()) +
		float64(t.Minute())/60 +
		float64(t.Second())/3600 +
		float64(t.Nanosecond()/int(time.Millisecond))/3600000
}

// Normalize360 normalizes an angle to [0, 360) degrees.
func Normalize360(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	// math.Mod of a tiny negative value can round back up to 360
	if a >= 360 {
		a -= 360
	}
	return a
}

// Normalize24 normalizes a decimal hour to [0, 24).
func Normalize24(h float64) float64 {
	h = math.Mod(h, 24)
	if h < 0 {
		h += 24
	}
	if h >= 24 {
		h -= 24
	}
	return h
}

// FormatHour renders a decimal hour as HH:MM after wrapping it into a day.
func FormatHour(h float64) string {
	total := int(math.Round(Normalize24(h) * 60))
	if total >= 24*60 {
		total -= 24 * 60
	}
	return twoDigits(total/60) + ":" + twoDigits(total%60)
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}
