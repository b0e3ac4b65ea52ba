package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/tasksync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string     server URL
//	-d string     local database path
//	-k string     access token
//	-s string     sync schedule (cron spec)
//	-w duration   request timeout (e.g., "10s")
//	-p string     plan for the local quota gate
//	-z string     IANA time zone for quota windows
//	-l string     log level
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, so subcommands and their flags pass through.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], Flags[2:])

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "server URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.AccessToken, "k", cfg.AccessToken, "access token")
	fs.StringVar(&cfg.SyncSchedule, "s", cfg.SyncSchedule, "sync schedule (cron spec)")
	fs.DurationVar(&cfg.RequestTimeout, "w", cfg.RequestTimeout, "request timeout")
	fs.StringVar(&cfg.Plan, "p", cfg.Plan, "plan")
	fs.StringVar(&cfg.TimeZone, "z", cfg.TimeZone, "time zone")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
