package astro

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Sky color anchors.
const (
	ColorNight    = "#000000"
	ColorNavy     = "#0b1d3f"
	ColorTwilight = "#4b3f72"
	ColorDawn     = "#5b8fd1"
	ColorDaylight = "#8ec9f0"
)

// SkyColor is the background color and star-field opacity for a moment of the day.
type SkyColor struct {
	Background  string  `json:"background"`
	StarOpacity float64 `json:"star_opacity"`
}

type skyAnchor struct {
	offset  float64 // hours from sunrise (morning) or sunset (evening, mirrored)
	color   colorful.Color
	opacity float64
}

// Breakpoints relative to sunrise. The evening uses the same anchors
// mirrored around sunset.
var skyAnchors = []skyAnchor{
	{offset: -1.5, color: mustHex(ColorNight), opacity: 1.0},    // first light
	{offset: -0.75, color: mustHex(ColorNavy), opacity: 0.8},    // nautical
	{offset: 0, color: mustHex(ColorTwilight), opacity: 0.4},    // sunrise
	{offset: 1.0, color: mustHex(ColorDawn), opacity: 0.1},      // morning
	{offset: 2.75, color: mustHex(ColorDaylight), opacity: 0.0}, // full daylight
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic("astro: bad sky color " + s)
	}
	return c
}

// SkyColorAt interpolates the sky color for a decimal hour given the day's
// sunrise and sunset. Four linear segments lead from night to daylight after
// sunrise and four mirror them before sunset. Polar day is always daylight
// and polar night always night.
func SkyColorAt(hour, sunrise, sunset float64) SkyColor {
	length := sunset - sunrise
	switch {
	case length >= 24:
		return anchorColor(len(skyAnchors) - 1)
	case length <= 0:
		return anchorColor(0)
	}

	// Morning half of the day uses offsets from sunrise; the evening half
	// mirrors them from sunset.
	var offset float64
	if hour < sunrise+length/2 {
		offset = hour - sunrise
	} else {
		offset = sunset - hour
	}
	return interpolateSky(offset)
}

func interpolateSky(offset float64) SkyColor {
	first, last := skyAnchors[0], skyAnchors[len(skyAnchors)-1]
	if offset <= first.offset {
		return anchorColor(0)
	}
	if offset >= last.offset {
		return anchorColor(len(skyAnchors) - 1)
	}

	for i := 1; i < len(skyAnchors); i++ {
		a, b := skyAnchors[i-1], skyAnchors[i]
		if offset > b.offset {
			continue
		}
		t := (offset - a.offset) / (b.offset - a.offset)
		return SkyColor{
			Background:  a.color.BlendRgb(b.color, t).Clamped().Hex(),
			StarOpacity: a.opacity + (b.opacity-a.opacity)*t,
		}
	}
	return anchorColor(len(skyAnchors) - 1)
}

func anchorColor(i int) SkyColor {
	a := skyAnchors[i]
	return SkyColor{Background: a.color.Hex(), StarOpacity: a.opacity}
}
