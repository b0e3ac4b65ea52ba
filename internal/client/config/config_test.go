package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerURL)
	assert.Equal(t, "@every 5m", c.SyncSchedule)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, "free", c.Plan)
	assert.Equal(t, "UTC", c.TimeZone)
}

func TestLoadConfig_SubcommandArgsPassThrough(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Setenv("TASKSYNC_CONFIG", "")

	os.Args = []string{"tasksync", "-k", "tok", "add", "Buy milk", "--priority", "high"}
	cfg := LoadConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, "tok", cfg.AccessToken)
	assert.Equal(t, "tasksync.db", cfg.DatabasePath)
}
