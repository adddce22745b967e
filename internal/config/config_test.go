package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadNavigator_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadNavigator(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultNavigator(), cfg)
}

func TestLoadNavigator_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navd.yaml")
	body := `
log_level: debug
world_source: database
refresh_interval: 250ms
query_limit: 80
check_contracts: true
ignored_locations: ["^Temp"]
database:
  host: db
  port: 6543
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadNavigator(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, SourceDatabase, cfg.WorldSource)
	assert.Equal(t, 250*time.Millisecond, cfg.RefreshInterval)
	assert.InDelta(t, 80.0, cfg.QueryLimit, 0)
	assert.True(t, cfg.CheckContracts)
	assert.Equal(t, []string{"^Temp"}, cfg.IgnoredLocations)
	assert.Equal(t, "postgres://wayfinder:wayfinder@db:6543/wayfinder?sslmode=disable", cfg.Database.DSN())
	// untouched keys keep defaults
	assert.Equal(t, 4, cfg.PrewarmWorkers)
}

func TestLoadNavigator_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "log_level: [x"},
		{"unknown source", "world_source: ftp"},
		{"zero refresh", "refresh_interval: 0s"},
		{"negative limit", "query_limit: -1"},
		{"no world dir", "world_dir: \"\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "navd.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o600))
			_, err := LoadNavigator(path)
			assert.Error(t, err)
		})
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv(EnvPath, "")
	assert.Equal(t, "flag.yaml", ResolvePath("flag.yaml"))

	t.Setenv(EnvPath, "env.yaml")
	assert.Equal(t, "env.yaml", ResolvePath("flag.yaml"))
}
