package astro

import (
	"encoding/json"
	"math"
	"reflect"
	"sync"
	"testing"
	"time"
)

var london = GeoCoordinate{LatDeg: 51.5074, LonDeg: -0.1278}

func TestCompute_Deterministic(t *testing.T) {
	tm := time.Date(2024, 6, 21, 9, 30, 0, 0, time.UTC)

	a := Compute(tm, london)
	b := Compute(tm, london)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("identical inputs produced different frames:\n%+v\n%+v", a, b)
	}
}

func TestCompute_Concurrent(t *testing.T) {
	tm := time.Date(2025, 3, 14, 21, 0, 0, 0, time.UTC)
	want := Compute(tm, london)

	var wg sync.WaitGroup
	errs := make(chan string, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := Compute(tm, london); !reflect.DeepEqual(got, want) {
				errs <- "frame differs under concurrency"
			}
		}()
	}
	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Error(msg)
	}
}

func TestCompute_Summer(t *testing.T) {
	tm := time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)
	f := Compute(tm, london)

	if f.DayOfYear != 173 || f.DaysInYear != 366 {
		t.Errorf("day %d of %d, want 173 of 366", f.DayOfYear, f.DaysInYear)
	}
	if f.Season != Summer || f.Hemisphere != Northern {
		t.Errorf("season %v/%v, want summer/northern", f.Season, f.Hemisphere)
	}
	if !f.IsDaytime() {
		t.Error("noon in June should be daytime")
	}
	if f.Solar.DayLength() < 16 {
		t.Errorf("London midsummer day length = %v", f.Solar.DayLength())
	}
	if math.Abs(f.HandAngle-90) > 1e-9 {
		t.Errorf("hand angle at noon = %v, want 90", f.HandAngle)
	}
	if f.Sky.Background != ColorDaylight {
		t.Errorf("sky at noon = %s", f.Sky.Background)
	}
	if f.SunAltitude < 55 {
		t.Errorf("sun altitude = %v", f.SunAltitude)
	}
}

func TestCompute_SouthernWinter(t *testing.T) {
	sydney := GeoCoordinate{LatDeg: -33.8688, LonDeg: 151.2093}
	tm := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	f := Compute(tm, sydney)
	if f.Hemisphere != Southern || f.Season != Winter {
		t.Errorf("season %v/%v, want winter/southern", f.Season, f.Hemisphere)
	}

	north := Compute(tm, london)
	if f.OrbitAngle != north.OrbitAngle {
		t.Errorf("orbit angle depends on location: %v vs %v", f.OrbitAngle, north.OrbitAngle)
	}
}

func TestCompute_PolesAreFinite(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, lat := range []float64{90, -90, 89.999, -66.6} {
		loc := GeoCoordinate{LatDeg: lat, LonDeg: 45}
		for d := 0; d < 366; d += 11 {
			f := Compute(start.AddDate(0, 0, d), loc)

			values := []float64{
				f.Solar.Sunrise, f.Solar.Sunset, f.DayArc.StartDeg, f.NightArc.SweepDeg,
				f.SunAltitude, f.MoonAltitude, f.MoonRiseSet.TransitHour, f.Sky.StarOpacity,
			}
			if f.MoonRiseSet.Moonrise != nil {
				values = append(values, *f.MoonRiseSet.Moonrise)
			}
			if f.MoonRiseSet.Moonset != nil {
				values = append(values, *f.MoonRiseSet.Moonset)
			}
			for i, v := range values {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("lat=%v day=%d: value %d not finite", lat, d, i)
				}
			}
		}
	}
}

func TestFrame_JSON(t *testing.T) {
	f := Compute(time.Date(2023, 12, 21, 0, 0, 0, 0, time.UTC), london)

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded["season"] != "winter" || decoded["hemisphere"] != "northern" {
		t.Errorf("enums not encoded as text: season=%v hemisphere=%v", decoded["season"], decoded["hemisphere"])
	}
	if decoded["orbit_angle"].(float64) != 90 {
		t.Errorf("orbit_angle = %v, want 90", decoded["orbit_angle"])
	}
}

func TestFrame_JSONRoundTrip(t *testing.T) {
	f := Compute(time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC), GeoCoordinate{LatDeg: 78.22, LonDeg: 15.65})

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back Frame
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Season != f.Season || back.Hemisphere != f.Hemisphere {
		t.Errorf("season/hemisphere = %v/%v, want %v/%v", back.Season, back.Hemisphere, f.Season, f.Hemisphere)
	}
	if back.Solar.Condition != PolarDay {
		t.Errorf("condition = %v, want polar day", back.Solar.Condition)
	}
	if back.MoonRiseSet.Condition != f.MoonRiseSet.Condition {
		t.Errorf("moon condition = %v, want %v", back.MoonRiseSet.Condition, f.MoonRiseSet.Condition)
	}

	var h Hemisphere
	if err := h.UnmarshalText([]byte("western")); err == nil {
		t.Error("unknown hemisphere should fail to decode")
	}
}
