package astro

import "fmt"

// parseName returns the value whose String form is text.
func parseName[T interface {
	~int
	String() string
}](kind string, text []byte, values ...T) (T, error) {
	for _, v := range values {
		if v.String() == string(text) {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("astro: unknown %s %q", kind, text)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hemisphere) UnmarshalText(text []byte) (err error) {
	*h, err = parseName("hemisphere", text, Northern, Southern)
	return err
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Season) UnmarshalText(text []byte) (err error) {
	*s, err = parseName("season", text, Winter, Spring, Summer, Autumn)
	return err
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *DaylightCondition) UnmarshalText(text []byte) (err error) {
	*c, err = parseName("daylight condition", text, DaylightNormal, PolarDay, PolarNight)
	return err
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *RiseSetCondition) UnmarshalText(text []byte) (err error) {
	*c, err = parseName("rise/set condition", text, MoonRisesAndSets, MoonCircumpolar, MoonNeverRises)
	return err
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ShapeKind) UnmarshalText(text []byte) (err error) {
	*k, err = parseName("shape kind", text, ShapeDark, ShapeFull, ShapeLune)
	return err
}

func (op SegmentOp) String() string {
	switch op {
	case OpArcTo:
		return "A"
	case OpClose:
		return "Z"
	default:
		return "M"
	}
}

// MarshalText implements encoding.TextMarshaler using SVG command letters.
func (op SegmentOp) MarshalText() ([]byte, error) {
	return []byte(op.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (op *SegmentOp) UnmarshalText(text []byte) (err error) {
	*op, err = parseName("segment op", text, OpMoveTo, OpArcTo, OpClose)
	return err
}
