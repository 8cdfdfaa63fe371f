// Package report renders snapshots for headless output: JSON export, a
// summary table and the event log.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/litescript/ls-daynight/internal/astro"
	"github.com/litescript/ls-daynight/internal/state"
)

// SnapshotExport is the JSON-serializable representation of one tick.
type SnapshotExport struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Location    LocationExport `json:"location"`
	Frame       astro.Frame    `json:"frame"`
	Moon        MoonExport     `json:"moon"`
	Stars       []StarExport   `json:"stars,omitempty"`
	Events      []state.Event  `json:"events,omitempty"`
}

// LocationExport names the observer.
type LocationExport struct {
	Name    string  `json:"name"`
	Country string  `json:"country,omitempty"`
	LatDeg  float64 `json:"lat"`
	LonDeg  float64 `json:"lon"`
}

// MoonExport carries derived lunar fields not stored on the frame.
type MoonExport struct {
	Waxing       bool      `json:"waxing"`
	AgeDays      float64   `json:"age_days"`
	NextNewMoon  time.Time `json:"next_new_moon"`
	NextFullMoon time.Time `json:"next_full_moon"`
	Path         string    `json:"svg_path"`
}

// StarExport is a visible star in horizontal coordinates.
type StarExport struct {
	Name       string  `json:"name"`
	Mag        float64 `json:"mag"`
	AzDeg      float64 `json:"az"`
	ElDeg      float64 `json:"el"`
	Brightness float64 `json:"brightness"`
}

// exportDiscRadius is the disc radius used for the exported moon path.
const exportDiscRadius = 50

// ExportSnapshot converts a snapshot to an exportable form. A snapshot
// without a frame exports just its location and events.
func ExportSnapshot(snap state.Snapshot, generatedAt time.Time) *SnapshotExport {
	export := &SnapshotExport{
		GeneratedAt: generatedAt,
		Location: LocationExport{
			Name:    snap.Location.Name,
			Country: snap.Location.Country,
			LatDeg:  snap.Location.LatDeg,
			LonDeg:  snap.Location.LonDeg,
		},
		Events: snap.Events,
	}
	if !snap.HasFrame {
		return export
	}

	f := snap.Frame
	export.Frame = f
	export.Moon = MoonExport{
		Waxing:       astro.Waxing(f.MoonPhase),
		AgeDays:      astro.MoonAge(f.MoonPhase),
		NextNewMoon:  astro.NextPhaseInstant(f.Instant, 0),
		NextFullMoon: astro.NextPhaseInstant(f.Instant, 0.5),
		Path:         astro.MoonPhasePath(exportDiscRadius, exportDiscRadius, exportDiscRadius, f.MoonPhase).SVG(),
	}
	for _, s := range astro.StarField(f.Instant, f.Location, f.Sky.StarOpacity) {
		export.Stars = append(export.Stars, StarExport{
			Name:       s.Name,
			Mag:        s.Mag,
			AzDeg:      s.AzDeg,
			ElDeg:      s.ElDeg,
			Brightness: s.Brightness,
		})
	}
	return export
}

// WriteJSON writes the snapshot as JSON to the given writer.
func (s *SnapshotExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// SummaryRow represents one row in the summary table.
type SummaryRow struct {
	Label string
	Value string
}

// GenerateSummaryRows creates summary rows from a frame.
func GenerateSummaryRows(f astro.Frame) []SummaryRow {
	day := "night"
	if f.IsDaytime() {
		day = "day"
	}

	rows := []SummaryRow{
		{"Local time", f.Instant.Format("2006-01-02 15:04:05 MST")},
		{"Sunrise", astro.FormatHour(f.Solar.Sunrise)},
		{"Sunset", astro.FormatHour(f.Solar.Sunset)},
		{"Day length", fmt.Sprintf("%.2fh (%s)", f.Solar.DayLength(), f.Solar.Condition)},
		{"Now", fmt.Sprintf("%s, sun %+.1f°", day, f.SunAltitude)},
		{"Dial hand", fmt.Sprintf("%.1f°", f.HandAngle)},
		{"Orbit", fmt.Sprintf("%.2f° day %d/%d", f.OrbitAngle, f.DayOfYear, f.DaysInYear)},
		{"Season", fmt.Sprintf("%s (%s)", f.Season, f.Hemisphere)},
		{"Moon", fmt.Sprintf("%s, %.0f%% lit, phase %.3f", f.MoonPhaseName, f.MoonIllumination*100, f.MoonPhase)},
		{"Moon alt", fmt.Sprintf("%+.1f°", f.MoonAltitude)},
	}

	rs := f.MoonRiseSet
	switch rs.Condition {
	case astro.MoonRisesAndSets:
		rows = append(rows,
			SummaryRow{"Moonrise", formatMoonTime(rs.Moonrise, rs.MoonriseDir)},
			SummaryRow{"Moonset", formatMoonTime(rs.Moonset, rs.MoonsetDir)},
		)
	default:
		rows = append(rows, SummaryRow{"Moonrise", rs.Condition.String()})
	}

	rows = append(rows, SummaryRow{"Sky", fmt.Sprintf("%s, stars %.0f%%", f.Sky.Background, f.Sky.StarOpacity*100)})
	return rows
}

func formatMoonTime(hour *float64, dir string) string {
	if hour == nil {
		return "-"
	}
	s := astro.FormatHour(astro.Normalize24(*hour))
	if dir != "" {
		s += " " + dir
	}
	return s
}

// WriteSummaryTable writes a text table to the given writer.
func WriteSummaryTable(w io.Writer, snap state.Snapshot) {
	fmt.Fprintf(w, "Sky over %s\n", snap.Location)
	fmt.Fprintln(w, strings.Repeat("─", 60))

	if !snap.HasFrame {
		fmt.Fprintln(w, "No frame computed")
		return
	}

	for _, r := range GenerateSummaryRows(snap.Frame) {
		fmt.Fprintf(w, "%-12s %s\n", r.Label, r.Value)
	}
}

// WriteEvents writes the most recent n events, oldest first.
func WriteEvents(w io.Writer, events []state.Event, n int) {
	fmt.Fprintln(w, "Recent events")
	fmt.Fprintln(w, strings.Repeat("─", 60))

	if len(events) == 0 {
		fmt.Fprintln(w, "No events")
		return
	}
	if n > 0 && len(events) > n {
		events = events[len(events)-n:]
	}
	for _, e := range events {
		line := fmt.Sprintf("%s  %-16s %s", e.Timestamp.Format("2006-01-02 15:04:05"), e.Type, truncateStr(e.Location, 20))
		if e.Detail != "" {
			line += "  " + e.Detail
		}
		fmt.Fprintln(w, line)
	}
}

func truncateStr(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-2]) + ".."
}

// WriteNowLine writes a single-line status for the frame.
func WriteNowLine(w io.Writer, snap state.Snapshot) {
	if !snap.HasFrame {
		fmt.Fprintf(w, "%s: no frame\n", snap.Location.Name)
		return
	}
	f := snap.Frame
	glyph, day := "☾", "night"
	if f.IsDaytime() {
		glyph, day = "☼", "day"
	}
	fmt.Fprintf(w, "%s %s %s %s  sun %+.1f°  moon %s %.0f%%  %s\n",
		glyph, snap.Location.Name, f.Instant.Format("15:04"), day,
		f.SunAltitude, f.MoonPhaseName, f.MoonIllumination*100, f.Season)
}
