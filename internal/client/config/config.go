package config

import "time"

// Config holds runtime settings for the sync client.
//
// Fields:
//   - ServerURL: base URL of the sync server.
//   - DatabasePath: SQLite file of the local replica.
//   - AccessToken: bearer token sent to the server.
//   - SyncSchedule: cron spec of background sync cycles (robfig/cron syntax,
//     descriptors such as "@every 5m" included).
//   - RequestTimeout: upper bound for one server call.
//   - Plan, TimeZone: used by the local export and analysis gates. Sync is
//     always metered by the server.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerURL      string
	DatabasePath   string
	AccessToken    string
	SyncSchedule   string
	RequestTimeout time.Duration
	Plan           string
	TimeZone       string
	LogLevel       string
}

// Flags lists the command-line flags owned by this package, so command
// parsers can ignore them.
var Flags = []string{"-c", "-config", "-a", "-d", "-k", "-s", "-w", "-p", "-z", "-l"}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DatabasePath = "tasksync.db"
	c.SyncSchedule = "@every 5m"
	c.RequestTimeout = 10 * time.Second
	c.Plan = "free"
	c.TimeZone = "UTC"
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
