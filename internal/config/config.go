// Package config reads the typed application settings out of viper.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/Veraticus/tally/internal/common"
)

// Configuration keys.
const (
	KeyDatabasePath   = "database.path"
	KeyLogLevel       = "logging.level"
	KeyLogFormat      = "logging.format"
	KeyCatchUpLimit   = "planned.catch_up_limit"
	KeyAutoCheckpoint = "checkpoint.auto"
	KeyUpcomingDays   = "upcoming.days"
)

// Config holds every setting the CLI reads.
type Config struct {
	DatabasePath   string
	LogLevel       string
	LogFormat      string
	CatchUpLimit   int
	UpcomingDays   int
	AutoCheckpoint bool
}

// SetDefaults registers the default for every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyCatchUpLimit, 60)
	v.SetDefault(KeyAutoCheckpoint, true)
	v.SetDefault(KeyUpcomingDays, 30)
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	cfg := Config{
		DatabasePath:   ExpandPath(v.GetString(KeyDatabasePath)),
		LogLevel:       v.GetString(KeyLogLevel),
		LogFormat:      v.GetString(KeyLogFormat),
		CatchUpLimit:   v.GetInt(KeyCatchUpLimit),
		UpcomingDays:   v.GetInt(KeyUpcomingDays),
		AutoCheckpoint: v.GetBool(KeyAutoCheckpoint),
	}

	if cfg.DatabasePath == "" {
		return Config{}, fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyDatabasePath)
	}
	if _, err := common.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		return Config{}, fmt.Errorf("%w: log format %q", common.ErrInvalidConfig, cfg.LogFormat)
	}
	if cfg.CatchUpLimit < 1 {
		return Config{}, fmt.Errorf("%w: %s must be at least 1", common.ErrInvalidConfig, KeyCatchUpLimit)
	}
	if cfg.UpcomingDays < 0 {
		return Config{}, fmt.Errorf("%w: %s cannot be negative", common.ErrInvalidConfig, KeyUpcomingDays)
	}
	return cfg, nil
}
