package astro

import (
	"errors"
	"math"
	"time"
)

// SunHorizonAltitude is the altitude of the Sun's centre at apparent
// sunrise and sunset, allowing for refraction and the solar semi-diameter.
const SunHorizonAltitude = -0.833

// AltitudeFunc returns a body's altitude in degrees at t.
type AltitudeFunc func(t time.Time) float64

// SunAltitudeFunc tracks the Sun for an observer.
func SunAltitudeFunc(obs GeoCoordinate) AltitudeFunc {
	return func(t time.Time) float64 { return SunAltitude(t, obs) }
}

// MoonAltitudeFunc tracks the Moon for an observer.
func MoonAltitudeFunc(obs GeoCoordinate) AltitudeFunc {
	return func(t time.Time) float64 { return MoonAltitude(t, obs) }
}

// Crossing is an instant where a body passes a threshold altitude.
type Crossing struct {
	Time   time.Time `json:"time"`
	Rising bool      `json:"rising"`
}

// HorizonPass is a rise-transit-set cycle found by sampling.
type HorizonPass struct {
	Rise        time.Time `json:"rise,omitzero"`
	Transit     time.Time `json:"transit"`
	Set         time.Time `json:"set,omitzero"`
	MaxAltitude float64   `json:"max_altitude"`
	AlwaysUp    bool      `json:"always_up"`
	NeverUp     bool      `json:"never_up"`
}

// ErrBadSampling is returned when the sampling step cannot cover the window.
var ErrBadSampling = errors.New("astro: sampling step must be positive and shorter than the window")

// FindCrossings samples alt every step over [from, to) and returns every
// threshold crossing, located by linear interpolation between samples.
func FindCrossings(alt AltitudeFunc, from, to time.Time, step time.Duration, threshold float64) ([]Crossing, error) {
	if step <= 0 || !to.After(from.Add(step)) {
		return nil, ErrBadSampling
	}

	var out []Crossing
	prevT, prevEl := from, alt(from)
	for t := from.Add(step); t.Before(to); t = t.Add(step) {
		el := alt(t)
		switch {
		case prevEl <= threshold && el > threshold:
			out = append(out, Crossing{Time: InterpolateCrossing(prevT, t, prevEl, el, threshold), Rising: true})
		case prevEl > threshold && el <= threshold:
			out = append(out, Crossing{Time: InterpolateCrossing(prevT, t, prevEl, el, threshold)})
		}
		prevT, prevEl = t, el
	}
	return out, nil
}

// NextCrossing returns the first crossing in the requested direction
// within span of from. ok is false if none occurs.
func NextCrossing(alt AltitudeFunc, from time.Time, span, step time.Duration, threshold float64, rising bool) (time.Time, bool) {
	cs, err := FindCrossings(alt, from, from.Add(span), step, threshold)
	if err != nil {
		return time.Time{}, false
	}
	for _, c := range cs {
		if c.Rising == rising {
			return c.Time, true
		}
	}
	return time.Time{}, false
}

// RiseTransitSet finds the first rise, the following set and the highest
// point over [from, from+span).
func RiseTransitSet(alt AltitudeFunc, from time.Time, span, step time.Duration, threshold float64) (HorizonPass, error) {
	if step <= 0 || span < 2*step {
		return HorizonPass{}, ErrBadSampling
	}

	n := int(span / step)
	times := make([]time.Time, n)
	els := make([]float64, n)
	maxIdx := 0
	minEl := math.Inf(1)
	for i := range times {
		times[i] = from.Add(time.Duration(i) * step)
		els[i] = alt(times[i])
		if els[i] > els[maxIdx] {
			maxIdx = i
		}
		minEl = math.Min(minEl, els[i])
	}

	transit, maxEl := refinePeak(times, els, maxIdx)
	pass := HorizonPass{Transit: transit, MaxAltitude: maxEl}
	switch {
	case minEl > threshold:
		pass.AlwaysUp = true
		return pass, nil
	case els[maxIdx] <= threshold:
		pass.NeverUp = true
		return pass, nil
	}

	riseIdx := -1
	for i := 1; i < n; i++ {
		if els[i-1] <= threshold && els[i] > threshold {
			pass.Rise = InterpolateCrossing(times[i-1], times[i], els[i-1], els[i], threshold)
			riseIdx = i
			break
		}
	}
	for i := max(riseIdx, 1); i < n; i++ {
		if els[i-1] > threshold && els[i] <= threshold {
			pass.Set = InterpolateCrossing(times[i-1], times[i], els[i-1], els[i], threshold)
			break
		}
	}
	return pass, nil
}

// refinePeak fits a parabola through the samples around idx.
func refinePeak(times []time.Time, els []float64, idx int) (time.Time, float64) {
	if idx == 0 || idx == len(els)-1 {
		return times[idx], els[idx]
	}

	y0, y1, y2 := els[idx-1], els[idx], els[idx+1]
	a := (y0+y2)/2 - y1
	b := (y2 - y0) / 2
	if a >= 0 {
		return times[idx], y1
	}

	x := math.Max(-1, math.Min(1, -b/(2*a)))
	dt := times[idx].Sub(times[idx-1])
	return times[idx].Add(time.Duration(float64(dt) * x)), a*x*x + b*x + y1
}

// InterpolateCrossing finds when a linearly varying altitude passes threshold
// between two samples.
func InterpolateCrossing(t1, t2 time.Time, el1, el2, threshold float64) time.Time {
	if math.Abs(el2-el1) < 1e-4 {
		return t1
	}
	frac := math.Max(0, math.Min(1, (threshold-el1)/(el2-el1)))
	return t1.Add(time.Duration(float64(t2.Sub(t1)) * frac))
}
