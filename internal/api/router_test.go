package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-daynight/internal/astro"
	"github.com/litescript/ls-daynight/internal/locations"
	"github.com/litescript/ls-daynight/internal/state"
	"github.com/litescript/ls-daynight/internal/stream"
)

var testNow = time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)

func newRouterUnderTest(t *testing.T) http.Handler {
	t.Helper()
	reg := locations.Default()
	clock := state.NewFixedClock(testNow)
	streamHandler := stream.NewHandler(context.Background(), stream.Config{
		Interval:          time.Hour,
		ConnectsPerMinute: 60,
		Burst:             5,
		MaxPerIP:          2,
	}, reg, clock, nil)
	return NewRouter(NewHandler(reg, clock, nil), streamHandler, nil, false)
}

func performRequest(router http.Handler, target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	body := decodeJSON[map[string]map[string]string](t, rec)
	require.Equal(t, code, body["error"]["code"])
	require.NotEmpty(t, body["error"]["message"])
}

func TestRouter_Healthz(t *testing.T) {
	rec := performRequest(newRouterUnderTest(t), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeJSON[map[string]string](t, rec)
	require.Equal(t, "ok", body["status"])
	require.NotEmpty(t, body["version"])
}

func TestRouter_Solar(t *testing.T) {
	router := newRouterUnderTest(t)

	rec := performRequest(router, "/api/v1/solar?doy=172&lat=0")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeJSON[SolarResponse](t, rec)
	require.InDelta(t, 6, got.Sunrise, 1e-9)
	require.InDelta(t, 18, got.Sunset, 1e-9)
	require.InDelta(t, 12, got.DayLength, 1e-9)
	require.Equal(t, astro.DaylightNormal, got.Condition)
	require.InDelta(t, 360, got.DayArc.SweepDeg+got.NightArc.SweepDeg, 1e-9)

	rec = performRequest(router, "/api/v1/solar?doy=172&lat=80")
	require.Equal(t, http.StatusOK, rec.Code)
	got = decodeJSON[SolarResponse](t, rec)
	require.Equal(t, astro.PolarDay, got.Condition)
	require.Equal(t, 24.0, got.DayLength)
}

func TestRouter_SolarInvalid(t *testing.T) {
	router := newRouterUnderTest(t)

	for _, target := range []string{
		"/api/v1/solar?doy=172",
		"/api/v1/solar?lat=10",
		"/api/v1/solar?doy=400&lat=10",
		"/api/v1/solar?doy=1.5&lat=10",
		"/api/v1/solar?doy=10&lat=91",
		"/api/v1/solar?doy=10&lat=north",
	} {
		requireError(t, performRequest(router, target), http.StatusBadRequest, "invalid_request")
	}
}

func TestRouter_Orbit(t *testing.T) {
	router := newRouterUnderTest(t)

	rec := performRequest(router, "/api/v1/orbit?at=2023-12-21T00:00:00Z")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeJSON[OrbitResponse](t, rec)
	require.Equal(t, 355, got.DayOfYear)
	require.InDelta(t, 90, got.Angle, 1e-9)
	require.InDelta(t, 0, got.X, 1e-9)
	require.InDelta(t, 1, got.Y, 1e-9)
	require.Equal(t, astro.Northern, got.Hemisphere)
	require.Equal(t, astro.Winter, got.Season)

	rec = performRequest(router, "/api/v1/orbit?at=2023-12-21T00:00:00Z&lat=-33.9")
	got = decodeJSON[OrbitResponse](t, rec)
	require.Equal(t, astro.Southern, got.Hemisphere)
	require.Equal(t, astro.Summer, got.Season)

	rec = performRequest(router, "/api/v1/orbit")
	got = decodeJSON[OrbitResponse](t, rec)
	require.True(t, got.At.Equal(testNow), "missing at should use the clock")

	requireError(t, performRequest(router, "/api/v1/orbit?at=yesterday"), http.StatusBadRequest, "invalid_request")
}

func TestRouter_MoonPhase(t *testing.T) {
	rec := performRequest(newRouterUnderTest(t), "/api/v1/moon/phase?at=2000-01-06T18:14:00Z")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeJSON[MoonPhaseResponse](t, rec)
	require.True(t, got.Phase < 1e-6 || got.Phase > 1-1e-6, "phase %v", got.Phase)
	require.InDelta(t, 0, got.Illumination, 1e-6)
	require.Equal(t, "New Moon", got.Name)
	require.True(t, got.NextFullMoon.After(got.At))
}

func TestRouter_MoonRiseSet(t *testing.T) {
	router := newRouterUnderTest(t)

	rec := performRequest(router, "/api/v1/moon/riseset?at=2024-03-01T12:00:00Z&lat=40&lon=0")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeJSON[MoonRiseSetResponse](t, rec)
	require.Equal(t, astro.MoonRisesAndSets, got.Condition)
	require.NotNil(t, got.Moonrise)
	require.NotNil(t, got.Moonset)
	require.NotEmpty(t, got.MoonriseDir)

	requireError(t, performRequest(router, "/api/v1/moon/riseset?lat=40"), http.StatusBadRequest, "invalid_request")
	requireError(t, performRequest(router, "/api/v1/moon/riseset?lat=40&lon=200"), http.StatusBadRequest, "invalid_request")
}

func TestRouter_MoonPath(t *testing.T) {
	router := newRouterUnderTest(t)

	rec := performRequest(router, "/api/v1/moon/path?phase=0.25&cx=10&cy=10&r=10")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeJSON[MoonPathResponse](t, rec)
	require.Equal(t, astro.ShapeLune, got.Kind)
	require.NotEmpty(t, got.Segments)
	require.Equal(t, astro.OpMoveTo, got.Segments[0].Op)
	require.True(t, strings.HasPrefix(got.SVG, "M "))

	rec = performRequest(router, "/api/v1/moon/path?phase=0.5")
	got = decodeJSON[MoonPathResponse](t, rec)
	require.Equal(t, astro.ShapeFull, got.Kind)

	rec = performRequest(router, "/api/v1/moon/path?phase=0")
	got = decodeJSON[MoonPathResponse](t, rec)
	require.Equal(t, astro.ShapeDark, got.Kind)
	require.Empty(t, got.SVG)

	requireError(t, performRequest(router, "/api/v1/moon/path?r=0"), http.StatusBadRequest, "invalid_request")
	requireError(t, performRequest(router, "/api/v1/moon/path?phase=1.5"), http.StatusBadRequest, "invalid_request")
}

func TestRouter_MoonPathSVG(t *testing.T) {
	router := newRouterUnderTest(t)

	for _, rec := range []*httptest.ResponseRecorder{
		performRequest(router, "/api/v1/moon/path?phase=0.3&format=svg"),
		performRequest(router, "/api/v1/moon/path?phase=0.3", "Accept", "image/svg+xml"),
	} {
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
		body := rec.Body.String()
		require.True(t, strings.HasPrefix(body, "<svg"))
		require.Contains(t, body, `<path d="M `)
		require.True(t, strings.HasSuffix(body, "</svg>"))
	}
}

func TestRouter_Sky(t *testing.T) {
	router := newRouterUnderTest(t)

	rec := performRequest(router, "/api/v1/sky?hour=12&sunrise=6&sunset=18")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeJSON[SkyResponse](t, rec)
	require.Equal(t, astro.ColorDaylight, got.Background)
	require.Equal(t, 0.0, got.StarOpacity)

	rec = performRequest(router, "/api/v1/sky?hour=0&sunrise=6&sunset=18")
	got = decodeJSON[SkyResponse](t, rec)
	require.Equal(t, astro.ColorNight, got.Background)
	require.Equal(t, 1.0, got.StarOpacity)

	requireError(t, performRequest(router, "/api/v1/sky?hour=12&sunrise=18&sunset=6"), http.StatusBadRequest, "invalid_request")
	requireError(t, performRequest(router, "/api/v1/sky?hour=25&sunrise=6&sunset=18"), http.StatusBadRequest, "invalid_request")
}

func TestRouter_Frame(t *testing.T) {
	router := newRouterUnderTest(t)

	rec := performRequest(router, "/api/v1/frame?location=tokyo")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeJSON[FrameResponse](t, rec)
	require.Equal(t, "Tokyo", got.Location.Name)
	require.True(t, got.Frame.Instant.Equal(testNow))

	rec = performRequest(router, "/api/v1/frame?lat=-33.87&lon=151.21&at=2024-06-21T12:00:00%2B10:00")
	require.Equal(t, http.StatusOK, rec.Code)
	got = decodeJSON[FrameResponse](t, rec)
	require.Equal(t, astro.Southern, got.Frame.Hemisphere)
	require.InDelta(t, 12, got.Frame.LocalHour, 1e-9)

	requireError(t, performRequest(router, "/api/v1/frame?location=atlantis"), http.StatusNotFound, "unknown_location")
	requireError(t, performRequest(router, "/api/v1/frame?lat=10"), http.StatusBadRequest, "invalid_location")
	requireError(t, performRequest(router, "/api/v1/frame?lat=100&lon=0"), http.StatusBadRequest, "invalid_location")
}

func TestRouter_Passes(t *testing.T) {
	router := newRouterUnderTest(t)

	rec := performRequest(router, "/api/v1/passes?location=london&at=2024-06-21T00:00:00Z")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeJSON[PassResponse](t, rec)
	require.Equal(t, "sun", got.Body)
	require.Equal(t, 24, got.Hours)
	// London midsummer: up before 04:00 UTC, down after 20:00 UTC, ~62° at noon
	require.Equal(t, 3, got.Pass.Rise.Hour())
	require.Equal(t, 20, got.Pass.Set.Hour())
	require.InDelta(t, 62, got.Pass.MaxAltitude, 1)
	require.InDelta(t, 12, float64(got.Pass.Transit.Hour())+float64(got.Pass.Transit.Minute())/60, 0.25)

	rec = performRequest(router, "/api/v1/passes?lat=78.22&lon=15.6&at=2024-06-21T00:00:00Z")
	require.Equal(t, http.StatusOK, rec.Code)
	got = decodeJSON[PassResponse](t, rec)
	require.True(t, got.Pass.AlwaysUp)
	require.True(t, got.Pass.Rise.IsZero())

	rec = performRequest(router, "/api/v1/passes?body=Moon&location=london&hours=48")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "moon", decodeJSON[PassResponse](t, rec).Body)

	requireError(t, performRequest(router, "/api/v1/passes?body=mars&location=london"), http.StatusBadRequest, "invalid_request")
	requireError(t, performRequest(router, "/api/v1/passes?hours=100&location=london"), http.StatusBadRequest, "invalid_request")
	requireError(t, performRequest(router, "/api/v1/passes?location=atlantis"), http.StatusNotFound, "unknown_location")
}

func TestRouter_Locations(t *testing.T) {
	rec := performRequest(newRouterUnderTest(t), "/api/v1/locations")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeJSON[map[string][]locations.Location](t, rec)
	require.Len(t, got["locations"], 20)
	require.Equal(t, "London", got["locations"][0].Name)
}

func TestRouter_NotFound(t *testing.T) {
	requireError(t, performRequest(newRouterUnderTest(t), "/wp-admin"), http.StatusNotFound, "not_found")
}

func TestRouter_Metrics(t *testing.T) {
	router := newRouterUnderTest(t)
	performRequest(router, "/api/v1/locations")

	rec := performRequest(router, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "daynight_http_requests_total")
}

func TestRouter_Stream(t *testing.T) {
	srv := httptest.NewServer(newRouterUnderTest(t))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/stream?location=oslo"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg stream.Message
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "Oslo", msg.Location.Name)
	require.Equal(t, uint64(1), msg.Seq)
}

func TestHTTPError(t *testing.T) {
	inner := io.ErrUnexpectedEOF
	err := NewHTTPError(http.StatusBadRequest, "invalid_request", "bad", inner)
	require.Equal(t, inner.Error(), err.Error())
	require.ErrorIs(t, err, inner)

	generic := asHTTPError(inner)
	require.Equal(t, http.StatusInternalServerError, generic.Status)
	require.Equal(t, "internal_error", generic.Code)

	require.Same(t, err, asHTTPError(err))
	require.Nil(t, asHTTPError(nil))
}
