package astro

import (
	"sort"
	"time"
)

// Star is a catalogued background star (J2000 coordinates).
type Star struct {
	Name   string
	RAdeg  float64
	DecDeg float64
	Mag    float64
}

// brightStars covers both hemispheres down to about magnitude 2, sorted by
// right ascension.
var brightStars = []Star{
	{"Achernar", 24.429, -57.237, 0.46},
	{"Polaris", 37.955, 89.264, 1.98},
	{"Mirfak", 51.081, 49.861, 1.79},
	{"Aldebaran", 68.980, 16.509, 0.85},
	{"Rigel", 78.634, -8.202, 0.13},
	{"Capella", 79.172, 45.998, 0.08},
	{"Bellatrix", 81.283, 6.350, 1.64},
	{"Alnilam", 84.053, -1.202, 1.69},
	{"Betelgeuse", 88.793, 7.407, 0.50},
	{"Canopus", 95.988, -52.696, -0.74},
	{"Sirius", 101.287, -16.716, -1.46},
	{"Castor", 113.650, 31.889, 1.58},
	{"Procyon", 114.826, 5.225, 0.34},
	{"Pollux", 116.329, 28.026, 1.14},
	{"Regulus", 152.093, 11.967, 1.35},
	{"Dubhe", 165.932, 61.751, 1.79},
	{"Acrux", 186.650, -63.099, 0.76},
	{"Mimosa", 191.930, -59.689, 1.25},
	{"Alioth", 193.507, 55.960, 1.77},
	{"Spica", 201.298, -11.161, 0.97},
	{"Hadar", 210.956, -60.373, 0.61},
	{"Arcturus", 213.915, 19.182, -0.05},
	{"Antares", 247.352, -26.432, 0.96},
	{"Shaula", 263.402, -37.104, 1.63},
	{"Vega", 279.235, 38.784, 0.03},
	{"Altair", 297.696, 8.868, 0.76},
	{"Deneb", 310.358, 45.280, 1.25},
	{"Fomalhaut", 344.413, -29.622, 1.16},
}

// BrightStars returns a copy of the built-in star list.
func BrightStars() []Star {
	out := make([]Star, len(brightStars))
	copy(out, brightStars)
	return out
}

// VisibleStar is a star above the horizon with its drawing brightness.
type VisibleStar struct {
	Star
	AzDeg      float64
	ElDeg      float64
	Brightness float64 // 0..1, already scaled by sky star opacity
}

// faintestMag is the dimmest magnitude drawn under a fully dark sky.
const faintestMag = 2.0

// StarField returns the stars above the horizon at t, brightest first.
// opacity is the sky's star opacity; as it falls, fainter stars drop out
// before bright ones dim.
func StarField(t time.Time, obs GeoCoordinate, opacity float64) []VisibleStar {
	if opacity <= 0 {
		return nil
	}
	// Sirius at -1.46 survives down to opacity ~0.1
	limit := -1.5 + (faintestMag+1.5)*opacity

	var out []VisibleStar
	for _, s := range brightStars {
		if s.Mag > limit {
			continue
		}
		h := EquatorialToHorizontal(SkyCoord{RAdeg: s.RAdeg, DecDeg: s.DecDeg}, obs, t)
		if h.ElDeg <= 0 {
			continue
		}
		b := 1 - (s.Mag+1.5)/(faintestMag+1.5)*0.7
		out = append(out, VisibleStar{Star: s, AzDeg: h.AzDeg, ElDeg: h.ElDeg, Brightness: b * opacity})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Mag < out[j].Mag })
	return out
}
