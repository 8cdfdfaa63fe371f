// Command ls-daynight is a terminal day/night clock: a 24-hour dial, the
// Earth's orbit and the Moon's phase for any place on Earth.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-daynight/internal/api"
	"github.com/litescript/ls-daynight/internal/config"
	"github.com/litescript/ls-daynight/internal/locations"
	"github.com/litescript/ls-daynight/internal/logging"
	"github.com/litescript/ls-daynight/internal/report"
	"github.com/litescript/ls-daynight/internal/state"
	"github.com/litescript/ls-daynight/internal/stream"
	"github.com/litescript/ls-daynight/internal/ui"
	"github.com/litescript/ls-daynight/internal/version"
)

// CLI flags for headless mode
var (
	summaryMode   bool
	watchInterval time.Duration
	snapshotPath  string
	nowMode       bool
	eventsMode    bool
	beepMode      bool
	serveMode     bool
	atFlag        string
)

const (
	minRefresh = 100 * time.Millisecond
	maxRefresh = 5 * time.Minute

	shutdownTimeout = 10 * time.Second
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	locationName := flag.String("location", "", "City name from the location registry")
	lat := flag.Float64("lat", 0, "Observer latitude in degrees (with --lon)")
	lon := flag.Float64("lon", 0, "Observer longitude in degrees (with --lat)")
	refresh := flag.Duration("refresh", 0, "Frame refresh interval (e.g., 1s, 500ms)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.BoolVar(&summaryMode, "summary", false, "Print text summary instead of TUI")
	flag.DurationVar(&watchInterval, "watch", 0, "Repeat output at interval (e.g., 30s)")
	flag.StringVar(&snapshotPath, "json", "", "Export JSON snapshot to file (use - for stdout)")
	flag.BoolVar(&nowMode, "now", false, "Single-line status mode")
	flag.BoolVar(&eventsMode, "events", false, "Show event log")
	flag.BoolVar(&beepMode, "beep", false, "Beep on sky events (TTY only)")
	flag.BoolVar(&serveMode, "serve", false, "Serve the HTTP API instead of the TUI")
	flag.StringVar(&atFlag, "at", "", "Start at a fixed RFC 3339 instant instead of now")
	flag.Parse()

	if *showVersion {
		fmt.Println("ls-daynight", version.Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := applyFlags(cfg, *locationName, *lat, *lon, *refresh, *logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	headless := summaryMode || snapshotPath != "" || nowMode || eventsMode
	tui := !headless && !serveMode

	logger, closeLog, err := newLogger(cfg.Log, tui)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	reg, loc, err := resolveLocation(cfg.Location)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	clock, err := parseClock(atFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stateCfg := state.DefaultConfig()
	stateCfg.RefreshInterval = clampRefresh(cfg.Refresh)
	stateCfg.Clock = clock
	stateMgr := state.NewManager(stateCfg, reg, loc)

	logger.Info("starting", "version", version.Version, "location", loc.Name, "refresh", stateCfg.RefreshInterval)

	switch {
	case serveMode:
		if err := runServer(ctx, cfg, reg, clock, logger); err != nil {
			logger.Error("server failed", "error", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	case headless:
		runHeadless(ctx, stateMgr, logger)
		return
	}

	model := ui.New(stateMgr, logger)
	p := tea.NewProgram(model, tea.WithAltScreen())

	go runTickLoop(ctx, stateMgr, p, logger)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// applyFlags lets explicitly set flags override the loaded configuration.
func applyFlags(cfg *config.Config, location string, lat, lon float64, refresh time.Duration, logLevel string) error {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["location"] {
		cfg.Location.Name = location
		cfg.Location.Lat, cfg.Location.Lon = nil, nil
	}
	if set["lat"] || set["lon"] {
		if !set["lat"] || !set["lon"] {
			return errors.New("--lat and --lon must be given together")
		}
		cfg.Location.Lat, cfg.Location.Lon = &lat, &lon
	}
	if set["refresh"] {
		cfg.Refresh = refresh
	}
	if set["log-level"] {
		cfg.Log.Level = logLevel
	}
	return cfg.Validate()
}

// newLogger builds the logger. The TUI owns the terminal, so it logs to
// the configured file or nowhere.
func newLogger(cfg config.LogConfig, tui bool) (*logging.Logger, func(), error) {
	level := logging.ParseLevel(cfg.Level)
	format := logging.Format(cfg.Format)

	if cfg.File == "" {
		if tui {
			return logging.Discard(), func() {}, nil
		}
		return logging.NewWithFormat(level, format, os.Stderr), func() {}, nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return logging.NewWithFormat(level, format, f), func() { _ = f.Close() }, nil
}

// resolveLocation loads the registry and picks the observer. Explicit
// coordinates win over a name.
func resolveLocation(cfg config.LocationConfig) (*locations.Registry, locations.Location, error) {
	reg := locations.Default()
	if cfg.File != "" {
		var err error
		if reg, err = locations.Load(cfg.File); err != nil {
			return nil, locations.Location{}, err
		}
	}

	if coord, ok := cfg.Coordinate(); ok {
		loc, err := locations.Custom(cfg.Label, coord.LatDeg, coord.LonDeg)
		return reg, loc, err
	}
	loc, err := reg.Lookup(cfg.Name)
	return reg, loc, err
}

// parseClock returns a fixed clock for an RFC 3339 instant, or the system
// clock when at is empty.
func parseClock(at string) (state.Clock, error) {
	if at == "" {
		return state.SystemClock{}, nil
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return nil, fmt.Errorf("--at: %w", err)
	}
	return state.NewFixedClock(t), nil
}

func clampRefresh(d time.Duration) time.Duration {
	if d < minRefresh {
		return minRefresh
	}
	if d > maxRefresh {
		return maxRefresh
	}
	return d
}

// advance moves a fixed clock forward so frozen-time runs still animate.
func advance(clock state.Clock, d time.Duration) {
	if fc, ok := clock.(*state.FixedClock); ok {
		fc.Advance(d)
	}
}

func runTickLoop(ctx context.Context, stateMgr *state.Manager, p *tea.Program, logger *logging.Logger) {
	doTick(stateMgr, p, logger)

	ticker := time.NewTicker(stateMgr.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("tick loop shutting down")
			p.Quit()
			return
		case <-ticker.C:
			advance(stateMgr.Clock(), stateMgr.RefreshInterval())
			doTick(stateMgr, p, logger)
		}
	}
}

func doTick(stateMgr *state.Manager, p *tea.Program, logger *logging.Logger) {
	snap := stateMgr.Tick()
	logger.Debug("frame computed", "location", snap.Location.Name, "duration", snap.ComputeDuration)
	p.Send(ui.FrameMsg{Snapshot: snap})
}

// runHeadless handles all headless modes without starting the TUI.
func runHeadless(ctx context.Context, stateMgr *state.Manager, logger *logging.Logger) {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	var lastEvent time.Time

	outputOnce := func() error {
		snap := stateMgr.Tick()
		return writeOutputs(os.Stdout, snap, isTTY, &lastEvent)
	}

	if watchInterval == 0 {
		if err := outputOnce(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := outputOnce(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("watch loop shutting down")
			return
		case <-ticker.C:
			advance(stateMgr.Clock(), watchInterval)
			if !nowMode {
				fmt.Println()
			}
			if err := outputOnce(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}
}

// writeOutputs renders every requested headless output for one snapshot.
// lastEvent tracks the newest event already announced by --beep.
func writeOutputs(w io.Writer, snap state.Snapshot, isTTY bool, lastEvent *time.Time) error {
	if nowMode {
		report.WriteNowLine(w, snap)
	}

	if snapshotPath != "" {
		export := report.ExportSnapshot(snap, snap.LastTick)
		if snapshotPath == "-" {
			if err := export.WriteJSON(w); err != nil {
				return fmt.Errorf("write JSON to stdout: %w", err)
			}
		} else {
			f, err := os.Create(snapshotPath)
			if err != nil {
				return fmt.Errorf("create snapshot file: %w", err)
			}
			defer f.Close()
			if err := export.WriteJSON(f); err != nil {
				return fmt.Errorf("write JSON to file: %w", err)
			}
		}
	}

	if summaryMode {
		report.WriteSummaryTable(w, snap)
	}

	if eventsMode {
		fmt.Fprintln(w)
		report.WriteEvents(w, snap.Events, 10)
	}

	if beepMode && isTTY {
		for _, e := range snap.Events {
			if e.Timestamp.After(*lastEvent) {
				fmt.Fprint(w, "\a")
				break
			}
		}
	}
	if n := len(snap.Events); n > 0 {
		*lastEvent = snap.Events[n-1].Timestamp
	}
	return nil
}

func runServer(ctx context.Context, cfg *config.Config, reg *locations.Registry, clock state.Clock, logger *logging.Logger) error {
	streamHandler := stream.NewHandler(ctx, stream.Config{
		Interval:          cfg.Stream.Interval,
		ConnectsPerMinute: cfg.Stream.ConnectsPerMinute,
		Burst:             cfg.Stream.Burst,
		MaxPerIP:          cfg.Stream.MaxPerIP,
		TrustProxy:        cfg.HTTP.TrustProxy,
	}, reg, clock, logger)

	router := api.NewRouter(api.NewHandler(reg, clock, logger), streamHandler, logger, cfg.HTTP.TrustProxy)
	srv := api.NewServer(cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTP.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
