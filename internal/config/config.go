// Package config loads runtime settings from defaults, an optional YAML file
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/litescript/ls-daynight/internal/astro"
)

// EnvConfigPath names the variable holding the config file path.
const EnvConfigPath = "LS_DAYNIGHT_CONFIG"

// DefaultPath is read when no path is given and the file exists.
const DefaultPath = "ls-daynight.yaml"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config aggregates runtime configuration.
type Config struct {
	Location LocationConfig `yaml:"location"`
	Refresh  time.Duration  `yaml:"refresh"`
	Log      LogConfig      `yaml:"log"`
	HTTP     HTTPConfig     `yaml:"http"`
	Stream   StreamConfig   `yaml:"stream"`
}

// LocationConfig picks the observer. Explicit coordinates win over a name.
type LocationConfig struct {
	Name  string   `yaml:"name"`
	Lat   *float64 `yaml:"lat"`
	Lon   *float64 `yaml:"lon"`
	File  string   `yaml:"file"`
	Label string   `yaml:"label"`
}

// Coordinate returns the explicit coordinate if both parts are set.
func (l LocationConfig) Coordinate() (astro.GeoCoordinate, bool) {
	if l.Lat == nil || l.Lon == nil {
		return astro.GeoCoordinate{}, false
	}
	return astro.GeoCoordinate{LatDeg: *l.Lat, LonDeg: *l.Lon}, true
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// HTTPConfig controls the API server.
type HTTPConfig struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	TrustProxy   bool          `yaml:"trustProxy"`
}

// StreamConfig controls the websocket frame stream.
type StreamConfig struct {
	Interval          time.Duration `yaml:"interval"`
	ConnectsPerMinute int           `yaml:"connectsPerMinute"`
	Burst             int           `yaml:"burst"`
	MaxPerIP          int           `yaml:"maxPerIP"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Location: LocationConfig{Name: "London"},
		Refresh:  time.Second,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Stream: StreamConfig{
			Interval:          time.Second,
			ConnectsPerMinute: 30,
			Burst:             5,
			MaxPerIP:          4,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (or
// $LS_DAYNIGHT_CONFIG, or DefaultPath if present), then environment
// overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(DefaultPath); err == nil {
		if err := hydrateFromFile(cfg, DefaultPath); err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LS_DAYNIGHT_LOCATION"); v != "" {
		cfg.Location.Name = v
	}
	if v := os.Getenv("LS_DAYNIGHT_LOCATIONS_FILE"); v != "" {
		cfg.Location.File = v
	}
	if v := os.Getenv("LS_DAYNIGHT_LAT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("LS_DAYNIGHT_LAT: %w", err)
		}
		cfg.Location.Lat = &f
	}
	if v := os.Getenv("LS_DAYNIGHT_LON"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("LS_DAYNIGHT_LON: %w", err)
		}
		cfg.Location.Lon = &f
	}
	if v := os.Getenv("LS_DAYNIGHT_REFRESH"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Refresh = d
		}
	}
	if v := os.Getenv("LS_DAYNIGHT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LS_DAYNIGHT_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("LS_DAYNIGHT_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("LS_DAYNIGHT_HTTP_ADDR"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("LS_DAYNIGHT_TRUST_PROXY"); v != "" {
		cfg.HTTP.TrustProxy = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("LS_DAYNIGHT_STREAM_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Stream.Interval = d
		}
	}
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if (c.Location.Lat == nil) != (c.Location.Lon == nil) {
		return fmt.Errorf("%w: location.lat and location.lon must be set together", ErrInvalidConfig)
	}
	if coord, ok := c.Location.Coordinate(); ok {
		if err := coord.Validate(); err != nil {
			return fmt.Errorf("%w: location: %w", ErrInvalidConfig, err)
		}
	} else if strings.TrimSpace(c.Location.Name) == "" {
		return fmt.Errorf("%w: location.name or location.lat/lon is required", ErrInvalidConfig)
	}
	if c.Refresh < 100*time.Millisecond {
		return fmt.Errorf("%w: refresh must be at least 100ms", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format must be text or json", ErrInvalidConfig)
	}
	if c.HTTP.Address == "" {
		return fmt.Errorf("%w: http.address cannot be empty", ErrInvalidConfig)
	}
	if c.Stream.Interval < 100*time.Millisecond {
		return fmt.Errorf("%w: stream.interval must be at least 100ms", ErrInvalidConfig)
	}
	if c.Stream.ConnectsPerMinute <= 0 || c.Stream.Burst <= 0 || c.Stream.MaxPerIP <= 0 {
		return fmt.Errorf("%w: stream limits must be positive", ErrInvalidConfig)
	}
	return nil
}
