package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envOverrides lists the settings that may be overridden from the
// environment. Unset variables leave the pointer nil.
type envOverrides struct {
	DBPath          *string  `env:"CITY_HUB_DB_PATH"`
	IndexPath       *string  `env:"CITY_HUB_INDEX_PATH"`
	ProfileBackend  *string  `env:"CITY_HUB_PROFILE_BACKEND"`
	ProfileDir      *string  `env:"CITY_HUB_PROFILE_DIR"`
	ProfileKey      *string  `env:"CITY_HUB_PROFILE_KEY"`
	HTTPAddr        *string  `env:"CITY_HUB_HTTP_ADDR"`
	MetricsEnabled  *bool    `env:"CITY_HUB_METRICS"`
	RetentionDays   *int     `env:"CITY_HUB_RETENTION_DAYS"`
	CallTimeoutMs   *int     `env:"CITY_HUB_CALL_TIMEOUT_MS"`
	Seed            *int64   `env:"CITY_HUB_SEED"`
	DecayRate       *float64 `env:"CITY_HUB_DECAY_RATE"`
	InterestMinimum *float64 `env:"CITY_HUB_ASSISTANT_THRESHOLD"`
	LogLevel        *string  `env:"CITY_HUB_LOG_LEVEL"`
	LogFormat       *string  `env:"CITY_HUB_LOG_FORMAT"`
}

// applyEnv parses CITY_HUB_* variables onto cfg.
func applyEnv(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	setString(&cfg.Storage.DBPath, o.DBPath)
	setString(&cfg.Storage.IndexPath, o.IndexPath)
	setString(&cfg.Storage.ProfileBackend, o.ProfileBackend)
	setString(&cfg.Storage.ProfileDir, o.ProfileDir)
	setString(&cfg.Storage.ProfileKey, o.ProfileKey)
	setString(&cfg.Server.HTTPAddr, o.HTTPAddr)
	setString(&cfg.Logging.Level, o.LogLevel)
	setString(&cfg.Logging.Format, o.LogFormat)

	if o.MetricsEnabled != nil {
		cfg.Server.MetricsEnabled = *o.MetricsEnabled
	}
	if o.RetentionDays != nil {
		cfg.Server.RetentionDays = *o.RetentionDays
	}
	if o.CallTimeoutMs != nil {
		cfg.Recommend.CallTimeoutMs = *o.CallTimeoutMs
	}
	if o.Seed != nil {
		cfg.Recommend.Seed = *o.Seed
	}
	if o.DecayRate != nil {
		cfg.Profile.DecayRate = *o.DecayRate
	}
	if o.InterestMinimum != nil {
		cfg.Assistant.InterestThreshold = *o.InterestMinimum
	}

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
