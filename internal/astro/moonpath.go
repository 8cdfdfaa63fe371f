package astro

import (
	"math"
	"strconv"
	"strings"
)

// ShapeKind classifies the lit region of the moon disc.
type ShapeKind int

const (
	ShapeDark ShapeKind = iota // nothing to draw
	ShapeFull                  // filled disc
	ShapeLune                  // semicircle joined to a terminator arc
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeFull:
		return "full"
	case ShapeLune:
		return "lune"
	default:
		return "dark"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ShapeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Phase windows where the terminator path degenerates.
const (
	darkWindow = 0.01
	fullWindow = 0.01
)

// SegmentOp is a path drawing operation.
type SegmentOp int

const (
	OpMoveTo SegmentOp = iota
	OpArcTo
	OpClose
)

// PathSegment is one step of a closed vector path. Arc segments follow SVG
// elliptical-arc semantics in screen coordinates (y grows downward): Sweep
// true means the arc is drawn clockwise on screen.
type PathSegment struct {
	Op       SegmentOp `json:"op"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	RX       float64   `json:"rx,omitempty"`
	RY       float64   `json:"ry,omitempty"`
	LargeArc bool      `json:"large_arc,omitempty"`
	Sweep    bool      `json:"sweep,omitempty"`
}

// MoonShape describes the illuminated region of a moon disc of radius R
// centred at (CX, CY), in screen coordinates.
type MoonShape struct {
	Kind     ShapeKind     `json:"kind"`
	CX       float64       `json:"cx"`
	CY       float64       `json:"cy"`
	R        float64       `json:"r"`
	Phase    float64       `json:"phase"`
	Segments []PathSegment `json:"segments,omitempty"`

	// k = cos(2π·phase). The terminator's horizontal half-width is |k|·R.
	k float64
}

// MoonPhasePath builds the lit region for a phase. Waxing phases light the
// right limb and waning phases the left limb. The terminator bulges toward
// the lit limb while the moon is a crescent and away from it when gibbous.
func MoonPhasePath(cx, cy, r, phase float64) MoonShape {
	shape := MoonShape{CX: cx, CY: cy, R: r, Phase: phase, k: math.Cos(2 * math.Pi * phase)}

	switch {
	case r <= 0 || phase < darkWindow || phase > 1-darkWindow:
		shape.Kind = ShapeDark
		return shape
	case math.Abs(phase-0.5) < fullWindow:
		shape.Kind = ShapeFull
		return shape
	}

	shape.Kind = ShapeLune
	rx := math.Abs(shape.k) * r
	top, bottom := cy-r, cy+r

	// Limb: top to bottom around the lit side. On screen, top→right→bottom
	// is clockwise.
	limbSweep := Waxing(phase)

	// Terminator: bottom back to top. For a waxing crescent it passes to
	// the right of centre, which is counter-clockwise on screen.
	var termSweep bool
	if Waxing(phase) {
		termSweep = shape.k <= 0
	} else {
		termSweep = shape.k > 0
	}

	shape.Segments = []PathSegment{
		{Op: OpMoveTo, X: cx, Y: top},
		{Op: OpArcTo, X: cx, Y: bottom, RX: r, RY: r, Sweep: limbSweep},
		{Op: OpArcTo, X: cx, Y: top, RX: rx, RY: r, Sweep: termSweep},
		{Op: OpClose},
	}
	return shape
}

// Contains reports whether the screen point (x, y) is lit. It is the
// scan-conversion counterpart of the path and agrees with it everywhere
// except on the boundary.
func (s MoonShape) Contains(x, y float64) bool {
	dx, dy := x-s.CX, y-s.CY
	if dx*dx+dy*dy > s.R*s.R {
		return false
	}

	switch s.Kind {
	case ShapeFull:
		return true
	case ShapeLune:
		// Terminator x offset at this height
		half := math.Sqrt(math.Max(0, s.R*s.R-dy*dy))
		edge := s.k * half
		if Waxing(s.Phase) {
			return dx >= edge
		}
		return dx <= -edge
	default:
		return false
	}
}

// LitFraction estimates the lit share of the disc by sampling an n×n grid.
func (s MoonShape) LitFraction(n int) float64 {
	if n <= 0 || s.R <= 0 {
		return 0
	}
	var inside, lit int
	step := 2 * s.R / float64(n)
	for i := 0; i < n; i++ {
		y := s.CY - s.R + (float64(i)+0.5)*step
		for j := 0; j < n; j++ {
			x := s.CX - s.R + (float64(j)+0.5)*step
			dx, dy := x-s.CX, y-s.CY
			if dx*dx+dy*dy > s.R*s.R {
				continue
			}
			inside++
			if s.Contains(x, y) {
				lit++
			}
		}
	}
	if inside == 0 {
		return 0
	}
	return float64(lit) / float64(inside)
}

// SVG renders the shape as an SVG path "d" attribute. A full moon is drawn
// as two half-circle arcs; a dark moon yields an empty string.
func (s MoonShape) SVG() string {
	switch s.Kind {
	case ShapeDark:
		return ""
	case ShapeFull:
		top, bottom := s.CY-s.R, s.CY+s.R
		return svgPath([]PathSegment{
			{Op: OpMoveTo, X: s.CX, Y: top},
			{Op: OpArcTo, X: s.CX, Y: bottom, RX: s.R, RY: s.R, Sweep: true},
			{Op: OpArcTo, X: s.CX, Y: top, RX: s.R, RY: s.R, Sweep: true},
			{Op: OpClose},
		})
	default:
		return svgPath(s.Segments)
	}
}

func svgPath(segs []PathSegment) string {
	var b strings.Builder
	for i, seg := range segs {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch seg.Op {
		case OpMoveTo:
			b.WriteString("M ")
			b.WriteString(svgNum(seg.X))
			b.WriteByte(' ')
			b.WriteString(svgNum(seg.Y))
		case OpArcTo:
			b.WriteString("A ")
			b.WriteString(svgNum(seg.RX))
			b.WriteByte(' ')
			b.WriteString(svgNum(seg.RY))
			b.WriteString(" 0 ")
			b.WriteString(svgFlag(seg.LargeArc))
			b.WriteByte(' ')
			b.WriteString(svgFlag(seg.Sweep))
			b.WriteByte(' ')
			b.WriteString(svgNum(seg.X))
			b.WriteByte(' ')
			b.WriteString(svgNum(seg.Y))
		case OpClose:
			b.WriteString("Z")
		}
	}
	return b.String()
}

func svgNum(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

func svgFlag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
