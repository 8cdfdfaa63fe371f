// Package locations holds the registry of named observer locations.
package locations

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/litescript/ls-daynight/internal/astro"
)

//go:embed cities.yaml
var defaultCities []byte

// Errors returned by the registry.
var (
	ErrUnknownLocation   = errors.New("unknown location")
	ErrDuplicateLocation = errors.New("duplicate location")
	ErrEmptyRegistry     = errors.New("no locations defined")
)

// Location is a named point on Earth.
type Location struct {
	Name    string  `yaml:"name" json:"name"`
	Country string  `yaml:"country,omitempty" json:"country,omitempty"`
	LatDeg  float64 `yaml:"lat" json:"lat"`
	LonDeg  float64 `yaml:"lon" json:"lon"`
}

// Coord returns the location as an engine coordinate.
func (l Location) Coord() astro.GeoCoordinate {
	return astro.GeoCoordinate{LatDeg: l.LatDeg, LonDeg: l.LonDeg}
}

func (l Location) String() string {
	return fmt.Sprintf("%s (%.2f°, %.2f°)", l.Name, l.LatDeg, l.LonDeg)
}

type file struct {
	Locations []Location `yaml:"locations"`
}

// Registry is an ordered, immutable set of locations with case-insensitive
// name lookup.
type Registry struct {
	locs  []Location
	index map[string]int
}

// New validates locs and builds a registry preserving their order.
func New(locs []Location) (*Registry, error) {
	if len(locs) == 0 {
		return nil, ErrEmptyRegistry
	}

	r := &Registry{
		locs:  make([]Location, 0, len(locs)),
		index: make(map[string]int, len(locs)),
	}
	for _, l := range locs {
		l.Name = strings.TrimSpace(l.Name)
		if l.Name == "" {
			return nil, fmt.Errorf("location #%d: empty name", len(r.locs)+1)
		}
		if err := l.Coord().Validate(); err != nil {
			return nil, fmt.Errorf("location %q: %w", l.Name, err)
		}
		key := normalize(l.Name)
		if _, dup := r.index[key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateLocation, l.Name)
		}
		r.index[key] = len(r.locs)
		r.locs = append(r.locs, l)
	}
	return r, nil
}

// Parse reads a YAML document with a top-level "locations" list.
func Parse(data []byte) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse locations: %w", err)
	}
	return New(f.Locations)
}

// Load reads a locations file from disk.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locations file: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in city list.
func Default() *Registry {
	r, err := Parse(defaultCities)
	if err != nil {
		panic("locations: embedded city list is invalid: " + err.Error())
	}
	return r
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup finds a location by name, ignoring case.
func (r *Registry) Lookup(name string) (Location, error) {
	i, ok := r.index[normalize(name)]
	if !ok {
		return Location{}, fmt.Errorf("%w: %q", ErrUnknownLocation, name)
	}
	return r.locs[i], nil
}

// Len returns the number of locations.
func (r *Registry) Len() int {
	return len(r.locs)
}

// First returns the first location in registry order.
func (r *Registry) First() Location {
	return r.locs[0]
}

// Names returns location names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.locs))
	for i, l := range r.locs {
		names[i] = l.Name
	}
	return names
}

// All returns a copy of every location in registry order.
func (r *Registry) All() []Location {
	out := make([]Location, len(r.locs))
	copy(out, r.locs)
	return out
}

// Next returns the location after name, wrapping at the end. An unknown
// name yields the first location.
func (r *Registry) Next(name string) Location {
	return r.step(name, 1)
}

// Prev returns the location before name, wrapping at the start. An unknown
// name yields the first location.
func (r *Registry) Prev(name string) Location {
	return r.step(name, -1)
}

func (r *Registry) step(name string, delta int) Location {
	i, ok := r.index[normalize(name)]
	if !ok {
		return r.locs[0]
	}
	n := len(r.locs)
	return r.locs[((i+delta)%n+n)%n]
}

// Custom builds an ad-hoc location from coordinates. An empty label is
// replaced by the formatted coordinate.
func Custom(label string, lat, lon float64) (Location, error) {
	loc := Location{Name: strings.TrimSpace(label), LatDeg: lat, LonDeg: lon}
	if err := loc.Coord().Validate(); err != nil {
		return Location{}, err
	}
	if loc.Name == "" {
		loc.Name = fmt.Sprintf("%.4f, %.4f", lat, lon)
	}
	return loc, nil
}

// Resolve picks a location from query-style strings: explicit lat and lon
// win over name, and an empty request yields the first location.
func (r *Registry) Resolve(name, lat, lon string) (Location, error) {
	if lat != "" || lon != "" {
		if lat == "" || lon == "" {
			return Location{}, fmt.Errorf("%w: lat and lon must be given together", astro.ErrInvalidCoordinate)
		}
		la, err := strconv.ParseFloat(lat, 64)
		if err != nil {
			return Location{}, fmt.Errorf("%w: lat %q", astro.ErrInvalidCoordinate, lat)
		}
		lo, err := strconv.ParseFloat(lon, 64)
		if err != nil {
			return Location{}, fmt.Errorf("%w: lon %q", astro.ErrInvalidCoordinate, lon)
		}
		return Custom(name, la, lo)
	}
	if strings.TrimSpace(name) == "" {
		return r.First(), nil
	}
	return r.Lookup(name)
}
