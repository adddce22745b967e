package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPath overrides the config path given on the command line.
const EnvPath = "WAYFINDER_CONFIG"

// World sources.
const (
	SourceFiles    = "files"
	SourceDatabase = "database"
)

// Navigator holds all configuration for the navigation daemon.
type Navigator struct {
	LogLevel string `yaml:"log_level"`

	// World
	WorldSource string         `yaml:"world_source"` // files | database
	WorldDir    string         `yaml:"world_dir"`
	Database    DatabaseConfig `yaml:"database"`

	// Overlay
	ListenAddress string `yaml:"listen_address"`

	// Graph
	RefreshInterval      time.Duration `yaml:"refresh_interval"`
	ResolveIntervalTicks uint64        `yaml:"resolve_interval_ticks"`
	QueryLimit           float64       `yaml:"query_limit"` // 0 = unbounded
	CheckContracts       bool          `yaml:"check_contracts"`
	PrewarmWorkers       int           `yaml:"prewarm_workers"`
	IgnoredLocations     []string      `yaml:"ignored_locations"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultNavigator returns Navigator config with sensible defaults.
func DefaultNavigator() Navigator {
	return Navigator{
		LogLevel:             "info",
		WorldSource:          SourceFiles,
		WorldDir:             "data/locations",
		ListenAddress:        "127.0.0.1:7780",
		RefreshInterval:      time.Second,
		ResolveIntervalTicks: 60,
		PrewarmWorkers:       4,
		IgnoredLocations: []string{
			`^UndergroundMine\d+$`,
			`^VolcanoDungeon\d+$`,
			`^Dungeon\d+$`,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "wayfinder",
			Password: "wayfinder",
			DBName:   "wayfinder",
			SSLMode:  "disable",
		},
	}
}

// Validate reports settings the daemon cannot start with.
func (n Navigator) Validate() error {
	switch n.WorldSource {
	case SourceFiles:
		if n.WorldDir == "" {
			return fmt.Errorf("world_dir is required for world_source %q", n.WorldSource)
		}
	case SourceDatabase:
	default:
		return fmt.Errorf("unknown world_source %q", n.WorldSource)
	}
	if n.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive, got %s", n.RefreshInterval)
	}
	if n.QueryLimit < 0 {
		return fmt.Errorf("query_limit must not be negative, got %g", n.QueryLimit)
	}
	if n.PrewarmWorkers < 0 {
		return fmt.Errorf("prewarm_workers must not be negative, got %d", n.PrewarmWorkers)
	}
	return nil
}

// ResolvePath returns the config path from the environment when set.
func ResolvePath(flagPath string) string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return flagPath
}

// LoadNavigator loads navigator config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadNavigator(path string) (Navigator, error) {
	cfg := DefaultNavigator()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}
