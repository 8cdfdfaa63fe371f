package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/litescript/ls-daynight/internal/astro"
	"github.com/litescript/ls-daynight/internal/locations"
	"github.com/litescript/ls-daynight/internal/logging"
	"github.com/litescript/ls-daynight/internal/metrics"
	"github.com/litescript/ls-daynight/internal/state"
	"github.com/litescript/ls-daynight/internal/version"
)

// Handler serves the engine over HTTP.
type Handler struct {
	reg    *locations.Registry
	clock  state.Clock
	logger *logging.Logger
}

// NewHandler constructs the API handler.
func NewHandler(reg *locations.Registry, clock state.Clock, logger *logging.Logger) *Handler {
	if clock == nil {
		clock = state.SystemClock{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{
		reg:    reg,
		clock:  clock,
		logger: logger.With("component", "api.handler"),
	}
}

// SolarResponse is returned by GET /solar.
type SolarResponse struct {
	DayOfYear   int                     `json:"day_of_year"`
	LatDeg      float64                 `json:"lat"`
	Declination float64                 `json:"declination"`
	Sunrise     float64                 `json:"sunrise"`
	Sunset      float64                 `json:"sunset"`
	DayLength   float64                 `json:"day_length"`
	Condition   astro.DaylightCondition `json:"condition"`
	DayArc      astro.Arc               `json:"day_arc"`
	NightArc    astro.Arc               `json:"night_arc"`
}

// Solar handles GET /solar?doy=&lat=.
func (h *Handler) Solar(c *gin.Context) {
	doy, herr := queryRange(c, "doy", 1, 366)
	if herr != nil {
		abortWithError(c, herr)
		return
	}
	if doy != float64(int(doy)) {
		abortWithError(c, badRequest("doy must be an integer", nil))
		return
	}
	lat, herr := queryRange(c, "lat", -90, 90)
	if herr != nil {
		abortWithError(c, herr)
		return
	}

	st := astro.SolarTimesFor(int(doy), lat)
	day, night := astro.DayNightArcs(st)
	c.JSON(http.StatusOK, SolarResponse{
		DayOfYear:   int(doy),
		LatDeg:      lat,
		Declination: astro.SolarDeclination(int(doy)),
		Sunrise:     st.Sunrise,
		Sunset:      st.Sunset,
		DayLength:   st.DayLength(),
		Condition:   st.Condition,
		DayArc:      day,
		NightArc:    night,
	})
}

// OrbitResponse is returned by GET /orbit.
type OrbitResponse struct {
	At         time.Time        `json:"at"`
	DayOfYear  int              `json:"day_of_year"`
	DaysInYear int              `json:"days_in_year"`
	Angle      float64          `json:"angle"`
	X          float64          `json:"x"`
	Y          float64          `json:"y"`
	Hemisphere astro.Hemisphere `json:"hemisphere"`
	Season     astro.Season     `json:"season"`
}

// Orbit handles GET /orbit?at=&lat=. The point is on a unit circle, y up.
func (h *Handler) Orbit(c *gin.Context) {
	at, herr := queryTime(c, h.clock.Now())
	if herr != nil {
		abortWithError(c, herr)
		return
	}
	lat, herr := queryFloat(c, "lat", 0, false)
	if herr != nil {
		abortWithError(c, herr)
		return
	}

	angle := astro.OrbitAngle(at)
	x, y := astro.OrbitPoint(angle, 1)
	hemi := astro.HemisphereOf(lat)
	c.JSON(http.StatusOK, OrbitResponse{
		At:         at,
		DayOfYear:  astro.DayOfYear(at),
		DaysInYear: astro.DaysInYear(at.Year()),
		Angle:      angle,
		X:          x,
		Y:          y,
		Hemisphere: hemi,
		Season:     astro.SeasonAt(angle, hemi),
	})
}

// MoonPhaseResponse is returned by GET /moon/phase.
type MoonPhaseResponse struct {
	At           time.Time `json:"at"`
	Phase        float64   `json:"phase"`
	Illumination float64   `json:"illumination"`
	Name         string    `json:"name"`
	Waxing       bool      `json:"waxing"`
	AgeDays      float64   `json:"age_days"`
	NextNewMoon  time.Time `json:"next_new_moon"`
	NextFullMoon time.Time `json:"next_full_moon"`
}

// MoonPhase handles GET /moon/phase?at=.
func (h *Handler) MoonPhase(c *gin.Context) {
	at, herr := queryTime(c, h.clock.Now())
	if herr != nil {
		abortWithError(c, herr)
		return
	}

	phase := astro.MoonPhase(at)
	c.JSON(http.StatusOK, MoonPhaseResponse{
		At:           at,
		Phase:        phase,
		Illumination: astro.Illumination(phase),
		Name:         astro.PhaseName(phase),
		Waxing:       astro.Waxing(phase),
		AgeDays:      astro.MoonAge(phase),
		NextNewMoon:  astro.NextPhaseInstant(at, 0),
		NextFullMoon: astro.NextPhaseInstant(at, 0.5),
	})
}

// MoonRiseSetResponse is returned by GET /moon/riseset.
type MoonRiseSetResponse struct {
	At     time.Time `json:"at"`
	LatDeg float64   `json:"lat"`
	LonDeg float64   `json:"lon"`
	astro.MoonRiseSet
}

// MoonRiseSet handles GET /moon/riseset?at=&lat=&lon=.
func (h *Handler) MoonRiseSet(c *gin.Context) {
	at, herr := queryTime(c, h.clock.Now())
	if herr != nil {
		abortWithError(c, herr)
		return
	}
	lat, herr := queryRange(c, "lat", -90, 90)
	if herr != nil {
		abortWithError(c, herr)
		return
	}
	lon, herr := queryRange(c, "lon", -180, 180)
	if herr != nil {
		abortWithError(c, herr)
		return
	}

	c.JSON(http.StatusOK, MoonRiseSetResponse{
		At:          at,
		LatDeg:      lat,
		LonDeg:      lon,
		MoonRiseSet: astro.MoonRiseSetAt(at, lat, lon),
	})
}

// MoonPathResponse is returned by GET /moon/path.
type MoonPathResponse struct {
	astro.MoonShape
	SVG string `json:"svg"`
}

// MoonPath handles GET /moon/path?cx=&cy=&r=&phase=. Without a phase the
// phase at "at" (default now) is used. format=svg or an Accept header
// preferring image/svg+xml returns a standalone SVG document.
func (h *Handler) MoonPath(c *gin.Context) {
	cx, herr := queryFloat(c, "cx", 50, false)
	if herr != nil {
		abortWithError(c, herr)
		return
	}
	cy, herr := queryFloat(c, "cy", 50, false)
	if herr != nil {
		abortWithError(c, herr)
		return
	}
	r, herr := queryFloat(c, "r", 50, false)
	if herr != nil {
		abortWithError(c, herr)
		return
	}
	if r <= 0 {
		abortWithError(c, badRequest("r must be positive", nil))
		return
	}

	var phase float64
	if _, ok := c.GetQuery("phase"); ok {
		if phase, herr = queryRange(c, "phase", 0, 1); herr != nil {
			abortWithError(c, herr)
			return
		}
		phase = astro.Normalize360(phase*360) / 360
	} else {
		at, herr := queryTime(c, h.clock.Now())
		if herr != nil {
			abortWithError(c, herr)
			return
		}
		phase = astro.MoonPhase(at)
	}

	shape := astro.MoonPhasePath(cx, cy, r, phase)
	path := shape.SVG()

	if wantsSVG(c) {
		c.Data(http.StatusOK, "image/svg+xml", []byte(svgDocument(shape, path)))
		return
	}
	c.JSON(http.StatusOK, MoonPathResponse{MoonShape: shape, SVG: path})
}

func wantsSVG(c *gin.Context) bool {
	if f := c.Query("format"); f != "" {
		return strings.EqualFold(f, "svg")
	}
	return c.NegotiateFormat(gin.MIMEJSON, "image/svg+xml") == "image/svg+xml"
}

// svgDocument wraps a lit path in a dark disc sized to the shape.
func svgDocument(s astro.MoonShape, path string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%g %g %g %g">`, s.CX-s.R, s.CY-s.R, 2*s.R, 2*s.R)
	fmt.Fprintf(&b, `<circle cx="%g" cy="%g" r="%g" fill="#1c1c28"/>`, s.CX, s.CY, s.R)
	if path != "" {
		fmt.Fprintf(&b, `<path d="%s" fill="#f4f1de"/>`, path)
	}
	b.WriteString(`</svg>`)
	return b.String()
}

// SkyResponse is returned by GET /sky.
type SkyResponse struct {
	Hour    float64 `json:"hour"`
	Sunrise float64 `json:"sunrise"`
	Sunset  float64 `json:"sunset"`
	astro.SkyColor
}

// Sky handles GET /sky?hour=&sunrise=&sunset=.
func (h *Handler) Sky(c *gin.Context) {
	hour, herr := queryRange(c, "hour", 0, 24)
	if herr != nil {
		abortWithError(c, herr)
		return
	}
	sunrise, herr := queryRange(c, "sunrise", 0, 24)
	if herr != nil {
		abortWithError(c, herr)
		return
	}
	sunset, herr := queryRange(c, "sunset", 0, 24)
	if herr != nil {
		abortWithError(c, herr)
		return
	}
	if sunset < sunrise {
		abortWithError(c, badRequest("sunset must not precede sunrise", nil))
		return
	}

	c.JSON(http.StatusOK, SkyResponse{
		Hour:     hour,
		Sunrise:  sunrise,
		Sunset:   sunset,
		SkyColor: astro.SkyColorAt(hour, sunrise, sunset),
	})
}

// FrameResponse is returned by GET /frame.
type FrameResponse struct {
	Location locations.Location `json:"location"`
	Frame    astro.Frame        `json:"frame"`
}

// Frame handles GET /frame?at=&location= or ?at=&lat=&lon=.
func (h *Handler) Frame(c *gin.Context) {
	at, herr := queryTime(c, h.clock.Now())
	if herr != nil {
		abortWithError(c, herr)
		return
	}
	loc, err := h.reg.Resolve(c.Query("location"), c.Query("lat"), c.Query("lon"))
	if err != nil {
		abortWithError(c, locationError(err))
		return
	}

	start := time.Now()
	frame := astro.Compute(at, loc.Coord())
	metrics.ObserveFrame(time.Since(start))

	c.JSON(http.StatusOK, FrameResponse{Location: loc, Frame: frame})
}

// PassResponse is returned by GET /passes.
type PassResponse struct {
	Body     string             `json:"body"`
	Location locations.Location `json:"location"`
	From     time.Time          `json:"from"`
	Hours    int                `json:"hours"`
	Pass     astro.HorizonPass  `json:"pass"`
}

const passStep = 5 * time.Minute

// Passes handles GET /passes?body=sun|moon&at=&hours=&location= (or lat/lon).
// Unlike /solar and /moon/riseset it samples the ephemeris altitude directly.
func (h *Handler) Passes(c *gin.Context) {
	at, herr := queryTime(c, h.clock.Now())
	if herr != nil {
		abortWithError(c, herr)
		return
	}
	hoursF, herr := queryFloat(c, "hours", 24, false)
	if herr != nil {
		abortWithError(c, herr)
		return
	}
	hours := int(hoursF)
	if hours < 1 || hours > 72 {
		abortWithError(c, badRequest("hours must be within [1, 72]", nil))
		return
	}
	loc, err := h.reg.Resolve(c.Query("location"), c.Query("lat"), c.Query("lon"))
	if err != nil {
		abortWithError(c, locationError(err))
		return
	}

	body := strings.ToLower(c.DefaultQuery("body", "sun"))
	var (
		alt       astro.AltitudeFunc
		threshold float64
	)
	switch body {
	case "sun":
		alt, threshold = astro.SunAltitudeFunc(loc.Coord()), astro.SunHorizonAltitude
	case "moon":
		alt, threshold = astro.MoonAltitudeFunc(loc.Coord()), astro.MoonHorizonAltitude
	default:
		abortWithError(c, badRequest(fmt.Sprintf("body %q: want sun or moon", body), nil))
		return
	}

	pass, err := astro.RiseTransitSet(alt, at, time.Duration(hours)*time.Hour, passStep, threshold)
	if err != nil {
		abortWithError(c, badRequest(err.Error(), err))
		return
	}
	c.JSON(http.StatusOK, PassResponse{Body: body, Location: loc, From: at, Hours: hours, Pass: pass})
}

func locationError(err error) *HTTPError {
	if errors.Is(err, locations.ErrUnknownLocation) {
		return NewHTTPError(http.StatusNotFound, "unknown_location", err.Error(), err)
	}
	return NewHTTPError(http.StatusBadRequest, "invalid_location", err.Error(), err)
}

// Locations handles GET /locations.
func (h *Handler) Locations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"locations": h.reg.All()})
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Version})
}
