// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - HTTP API, websocket frame stream, Prometheus metrics, YAML config
// 0.2.0 - Moon rise/set with compass directions, phase ring, star field on the dial
// 0.1.0 - Initial release: day/night dial, orbit ring, moon disc, headless modes
