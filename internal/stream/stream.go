// Package stream pushes live sky frames to websocket clients.
//
// Clients connect to GET /api/v1/stream?location=Oslo (or lat=&lon=) and
// receive one JSON Message per interval until either side closes or the
// server shuts down.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/litescript/ls-daynight/internal/astro"
	"github.com/litescript/ls-daynight/internal/httputil"
	"github.com/litescript/ls-daynight/internal/locations"
	"github.com/litescript/ls-daynight/internal/logging"
	"github.com/litescript/ls-daynight/internal/metrics"
	"github.com/litescript/ls-daynight/internal/state"
)

const writeWait = 5 * time.Second

// Config holds stream limits.
type Config struct {
	Interval          time.Duration
	ConnectsPerMinute int
	Burst             int
	MaxPerIP          int
	TrustProxy        bool
}

// Message is one frame pushed to a client.
type Message struct {
	ConnectionID string             `json:"connection_id"`
	Seq          uint64             `json:"seq"`
	Location     locations.Location `json:"location"`
	Frame        astro.Frame        `json:"frame"`
}

// Handler serves websocket frame streams.
type Handler struct {
	ctx      context.Context
	cfg      Config
	reg      *locations.Registry
	clock    state.Clock
	logger   *logging.Logger
	upgrader websocket.Upgrader
	attempts *IPRateLimiter
	conns    *connLimiter
}

// NewHandler creates a stream handler. Cancelling ctx closes every open
// stream with a going-away frame.
func NewHandler(ctx context.Context, cfg Config, reg *locations.Registry, clock state.Clock, logger *logging.Logger) *Handler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.MaxPerIP <= 0 {
		cfg.MaxPerIP = 1
	}
	if clock == nil {
		clock = state.SystemClock{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{
		ctx:    ctx,
		cfg:    cfg,
		reg:    reg,
		clock:  clock,
		logger: logger.With("component", "stream"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		attempts: NewIPRateLimiter(cfg.ConnectsPerMinute, cfg.Burst),
		conns:    newConnLimiter(cfg.MaxPerIP),
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

// ServeHTTP upgrades the request and streams frames.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ip := httputil.ClientIP(r, h.cfg.TrustProxy)

	if !h.attempts.Allow(ip) {
		metrics.StreamRejected("rate_limited")
		h.logger.Warn("stream rate limit exceeded", "remote_ip", ip)
		w.Header().Set("Retry-After", "30")
		writeError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "too many connection attempts")
		return
	}

	q := r.URL.Query()
	loc, err := h.reg.Resolve(q.Get("location"), q.Get("lat"), q.Get("lon"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_location", err.Error())
		return
	}

	if !h.conns.acquire(ip) {
		metrics.StreamRejected("max_per_ip")
		h.logger.Warn("stream limit exceeded", "remote_ip", ip, "current_count", h.conns.count(ip))
		w.Header().Set("Retry-After", "30")
		writeError(w, http.StatusTooManyRequests, "too_many_streams", "too many concurrent streams")
		return
	}
	defer h.conns.release(ip)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "remote_ip", ip, "error", err)
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	log := h.logger.With("conn", id, "remote_ip", ip, "location", loc.Name)

	metrics.StreamOpened()
	start := time.Now()
	log.Info("stream connected")
	defer func() {
		metrics.StreamClosed()
		log.Info("stream disconnected", "duration_seconds", int(time.Since(start).Seconds()))
	}()

	// Reads only serve to notice the client going away.
	_ = conn.SetReadDeadline(time.Time{})
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	var seq uint64
	send := func() error {
		seq++
		t0 := time.Now()
		frame := astro.Compute(h.clock.Now(), loc.Coord())
		metrics.ObserveFrame(time.Since(t0))

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(Message{
			ConnectionID: id,
			Seq:          seq,
			Location:     loc,
			Frame:        frame,
		})
	}

	if err := send(); err != nil {
		log.Debug("stream send failed", "error", err)
		return
	}

	ticker := time.NewTicker(h.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return
		case <-gone:
			return
		case <-ticker.C:
			if err := send(); err != nil {
				log.Debug("stream send failed", "error", err)
				return
			}
		}
	}
}
