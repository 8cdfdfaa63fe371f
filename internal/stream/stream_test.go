package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-daynight/internal/locations"
	"github.com/litescript/ls-daynight/internal/state"
)

var testInstant = time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, ctx context.Context, cfg Config) *httptest.Server {
	t.Helper()
	h := NewHandler(ctx, cfg, locations.Default(), state.NewFixedClock(testInstant), nil)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/?" + query
}

func fastConfig() Config {
	return Config{
		Interval:          20 * time.Millisecond,
		ConnectsPerMinute: 600,
		Burst:             10,
		MaxPerIP:          2,
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestStream_PushesFrames(t *testing.T) {
	srv := newTestServer(t, context.Background(), fastConfig())

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "location=oslo"), nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readMessage(t, conn)
	second := readMessage(t, conn)

	require.NotEmpty(t, first.ConnectionID)
	require.Equal(t, first.ConnectionID, second.ConnectionID)
	require.Equal(t, uint64(1), first.Seq)
	require.Equal(t, uint64(2), second.Seq)
	require.Equal(t, "Oslo", first.Location.Name)
	require.True(t, first.Frame.Instant.Equal(testInstant))
	require.Greater(t, first.Frame.SunAltitude, 0.0)
}

func TestStream_Coordinates(t *testing.T) {
	srv := newTestServer(t, context.Background(), fastConfig())

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "lat=-33.87&lon=151.21"), nil)
	require.NoError(t, err)
	defer conn.Close()

	msg := readMessage(t, conn)
	require.InDelta(t, -33.87, msg.Location.LatDeg, 1e-9)
	require.Equal(t, "southern", msg.Frame.Hemisphere.String())
}

func TestStream_InvalidLocation(t *testing.T) {
	srv := newTestServer(t, context.Background(), fastConfig())

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "location=atlantis"), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "invalid_location", body["error"]["code"])
}

func TestStream_MaxPerIP(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxPerIP = 1
	srv := newTestServer(t, context.Background(), cfg)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	require.NoError(t, err)
	readMessage(t, conn)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// The slot frees once the first stream ends.
	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		c, _, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
		if err != nil {
			return false
		}
		c.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)
}

func TestStream_RateLimit(t *testing.T) {
	cfg := fastConfig()
	cfg.ConnectsPerMinute = 1
	cfg.Burst = 1
	srv := newTestServer(t, context.Background(), cfg)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	require.NoError(t, err)
	conn.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Equal(t, "30", resp.Header.Get("Retry-After"))
}

func TestStream_ClosesOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig()
	cfg.Interval = time.Hour
	srv := newTestServer(t, ctx, cfg)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	require.NoError(t, err)
	defer conn.Close()
	readMessage(t, conn)

	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(60, 2)

	require.Same(t, l.GetLimiter("1.1.1.1"), l.GetLimiter("1.1.1.1"))
	require.True(t, l.Allow("1.1.1.1"))
	require.True(t, l.Allow("1.1.1.1"))
	require.False(t, l.Allow("1.1.1.1"))
	require.True(t, l.Allow("2.2.2.2"), "buckets are per IP")
}

func TestConnLimiter(t *testing.T) {
	l := newConnLimiter(2)

	require.True(t, l.acquire("a"))
	require.True(t, l.acquire("a"))
	require.False(t, l.acquire("a"))
	require.True(t, l.acquire("b"))
	require.Equal(t, 2, l.count("a"))

	l.release("a")
	require.Equal(t, 1, l.count("a"))
	require.True(t, l.acquire("a"))

	l.release("b")
	require.Equal(t, 0, l.count("b"))
}
