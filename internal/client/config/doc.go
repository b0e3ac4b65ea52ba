// Package config loads runtime configuration for the sync client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c, -config or the
//     TASKSYNC_CONFIG environment variable.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "10s" or
// integer nanoseconds:
//
//	{
//	  "server_url": "https://sync.example.com",
//	  "database_path": "data/replica.db",
//	  "access_token": "...",
//	  "sync_schedule": "@every 5m",
//	  "request_timeout": "10s",
//	  "plan": "tier2",
//	  "time_zone": "Europe/Paris",
//	  "log_level": "info"
//	}
package config
