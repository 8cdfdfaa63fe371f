package astro

import (
	"math"
	"testing"
)

func TestMoonPhasePath_Kind(t *testing.T) {
	tests := []struct {
		phase float64
		r     float64
		want  ShapeKind
	}{
		{0, 10, ShapeDark},
		{0.005, 10, ShapeDark},
		{0.995, 10, ShapeDark},
		{0.02, 10, ShapeLune},
		{0.25, 10, ShapeLune},
		{0.489, 10, ShapeLune},
		{0.495, 10, ShapeFull},
		{0.5, 10, ShapeFull},
		{0.505, 10, ShapeFull},
		{0.75, 10, ShapeLune},
		{0.5, 0, ShapeDark},
		{0.3, -1, ShapeDark},
	}

	for _, tt := range tests {
		s := MoonPhasePath(0, 0, tt.r, tt.phase)
		if s.Kind != tt.want {
			t.Errorf("MoonPhasePath(r=%v, phase=%v).Kind = %v, want %v", tt.r, tt.phase, s.Kind, tt.want)
		}
		if s.Kind != ShapeLune && len(s.Segments) != 0 {
			t.Errorf("phase %v: %v shape carries segments", tt.phase, s.Kind)
		}
	}
}

func TestMoonPhasePath_Segments(t *testing.T) {
	s := MoonPhasePath(50, 50, 40, 0.1)

	if len(s.Segments) != 4 {
		t.Fatalf("got %d segments, want 4", len(s.Segments))
	}
	if s.Segments[0].Op != OpMoveTo || s.Segments[3].Op != OpClose {
		t.Errorf("path not closed: %+v", s.Segments)
	}

	limb, term := s.Segments[1], s.Segments[2]
	if limb.RX != 40 || limb.RY != 40 || limb.Y != 90 {
		t.Errorf("limb = %+v, want half circle to the bottom", limb)
	}
	wantRX := math.Cos(2*math.Pi*0.1) * 40
	if math.Abs(term.RX-wantRX) > 1e-9 || term.RY != 40 || term.Y != 10 {
		t.Errorf("terminator = %+v, want rx %v back to the top", term, wantRX)
	}
}

func TestMoonPhasePath_SVG(t *testing.T) {
	tests := []struct {
		name  string
		phase float64
		want  string
	}{
		{"dark", 0, ""},
		{"full", 0.5, "M 50 10 A 40 40 0 0 1 50 90 A 40 40 0 0 1 50 10 Z"},
		{"waxing crescent", 0.1, "M 50 10 A 40 40 0 0 1 50 90 A 32.361 40 0 0 0 50 10 Z"},
		{"waxing gibbous", 0.4, "M 50 10 A 40 40 0 0 1 50 90 A 32.361 40 0 0 1 50 10 Z"},
		{"waning gibbous", 0.6, "M 50 10 A 40 40 0 0 0 50 90 A 32.361 40 0 0 0 50 10 Z"},
		{"waning crescent", 0.9, "M 50 10 A 40 40 0 0 0 50 90 A 32.361 40 0 0 1 50 10 Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MoonPhasePath(50, 50, 40, tt.phase).SVG(); got != tt.want {
				t.Errorf("SVG() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMoonShape_Contains(t *testing.T) {
	const r = 10

	tests := []struct {
		name  string
		phase float64
		x, y  float64
		want  bool
	}{
		{"waxing crescent right limb", 0.1, 9, 0, true},
		{"waxing crescent centre", 0.1, 0, 0, false},
		{"waxing crescent left", 0.1, -9, 0, false},
		{"first quarter right", 0.25, 5, 1, true},
		{"first quarter left", 0.25, -5, 1, false},
		{"waxing gibbous centre", 0.4, 0, 0, true},
		{"waxing gibbous far left", 0.4, -9.5, 0, false},
		{"waning gibbous centre", 0.6, 0, 0, true},
		{"waning gibbous far right", 0.6, 9.5, 0, false},
		{"waning crescent left limb", 0.9, -9, 0, true},
		{"waning crescent right", 0.9, 9, 0, false},
		{"full anywhere on disc", 0.5, -7, 7, true},
		{"outside disc", 0.5, 10, 10, false},
		{"dark", 0, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := MoonPhasePath(0, 0, r, tt.phase)
			if got := s.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestMoonShape_WaningMirrorsWaxing(t *testing.T) {
	for _, p := range []float64{0.1, 0.35} {
		waxing := MoonPhasePath(0, 0, 10, p)
		waning := MoonPhasePath(0, 0, 10, 1-p)

		for y := -9.7; y < 10; y += 1.3 {
			for x := -9.7; x < 10; x += 1.3 {
				if waxing.Contains(x, y) != waning.Contains(-x, y) {
					t.Errorf("phase %v: (%v, %v) not mirrored", p, x, y)
				}
			}
		}
	}
}

func TestMoonShape_LitFractionMatchesIllumination(t *testing.T) {
	for _, p := range []float64{0.05, 0.15, 0.25, 0.4, 0.5, 0.6, 0.8, 0.95} {
		s := MoonPhasePath(0, 0, 1, p)
		got := s.LitFraction(300)
		want := Illumination(p)
		if math.Abs(got-want) > 0.01 {
			t.Errorf("phase %v: lit fraction = %v, illumination = %v", p, got, want)
		}
	}

	if got := MoonPhasePath(0, 0, 1, 0).LitFraction(100); got != 0 {
		t.Errorf("dark moon lit fraction = %v", got)
	}
	if got := MoonPhasePath(0, 0, 1, 0.3).LitFraction(0); got != 0 {
		t.Errorf("LitFraction(0) = %v", got)
	}
}
