/*
Package config handles loading, saving, and validating city-hub configuration.

Configuration is stored in ~/.city-hub.json. Every section has defaults, so a
missing file or a partial file is valid; environment variables prefixed with
CITY_HUB_ override file values.

Schema (abridged):

	{
	  "storage":   {"dbPath": "...", "profileBackend": "file", "profileKey": "city-hub:profile"},
	  "profile":   {"decayRate": 0.05, "evictBelow": 0.1, "archetypeThreshold": 10},
	  "recommend": {"targetCount": 10, "windowDays": 30, "callTimeoutMs": 3000},
	  "showcase":  {"targetSections": 5, "categories": [{"category": "market_vehicles", "typeKey": "vehicle_type"}]},
	  "assistant": {"interestThreshold": 2},
	  "server":    {"httpAddr": ":8080"},
	  "logging":   {"level": "info", "format": "console"}
	}
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/khanglvm/city-hub/internal/profile"
)

// Config represents the root configuration structure.
type Config struct {
	Storage   StorageConfig   `json:"storage"`
	Profile   ProfileConfig   `json:"profile"`
	Recommend RecommendConfig `json:"recommend"`
	Showcase  ShowcaseConfig  `json:"showcase"`
	Assistant AssistantConfig `json:"assistant"`
	Server    ServerConfig    `json:"server"`
	Logging   LoggingConfig   `json:"logging"`
}

// StorageConfig locates the catalog database, search index and profile store.
type StorageConfig struct {
	// DBPath is the SQLite database holding items and user events.
	DBPath string `json:"dbPath" validate:"required"`

	// IndexPath is the on-disk bleve index. Empty means in-memory.
	IndexPath string `json:"indexPath,omitempty"`

	// ProfileBackend selects where interest profiles live.
	ProfileBackend string `json:"profileBackend" validate:"oneof=file badger memory"`

	// ProfileDir is the directory used by the file and badger backends.
	ProfileDir string `json:"profileDir"`

	// ProfileKey is the fixed key the interest profile is stored under.
	ProfileKey string `json:"profileKey" validate:"required"`
}

// ProfileConfig tunes the client-side interest profile.
type ProfileConfig struct {
	DecayRate          float64             `json:"decayRate" validate:"gte=0,lt=1"`
	EvictBelow         float64             `json:"evictBelow" validate:"gte=0"`
	MaxViewedPlaces    int                 `json:"maxViewedPlaces" validate:"min=1"`
	ArchetypeThreshold float64             `json:"archetypeThreshold" validate:"gte=0"`
	Archetypes         map[string][]string `json:"archetypes,omitempty"`
}

// RecommendConfig tunes the recommendation composer.
type RecommendConfig struct {
	TargetCount      int                `json:"targetCount" validate:"min=1"`
	SpecializedLimit int                `json:"specializedLimit" validate:"min=1"`
	WindowDays       int                `json:"windowDays" validate:"min=1"`
	EventLimit       int                `json:"eventLimit" validate:"min=1"`
	TopCategories    int                `json:"topCategories" validate:"min=0"`
	TopSearchTerms   int                `json:"topSearchTerms" validate:"min=0"`
	MinTermLength    int                `json:"minTermLength" validate:"min=1"`
	CallTimeoutMs    int                `json:"callTimeoutMs" validate:"min=1"`
	EventWeights     map[string]float64 `json:"eventWeights,omitempty"`

	// Seed fixes the shuffle order; zero seeds from the clock.
	Seed int64 `json:"seed,omitempty"`
}

// ShowcaseCategory is one candidate merchandising section.
type ShowcaseCategory struct {
	Category string `json:"category" validate:"required"`
	Title    string `json:"title,omitempty"`

	// TypeKey is the attribute whose values specialise the section.
	TypeKey string `json:"typeKey,omitempty"`
}

// ShowcaseConfig tunes the showcase composer.
type ShowcaseConfig struct {
	TargetSections  int                `json:"targetSections" validate:"min=1"`
	SampleSize      int                `json:"sampleSize" validate:"min=1"`
	ItemsPerSection int                `json:"itemsPerSection" validate:"min=1"`
	Concurrency     int                `json:"concurrency" validate:"min=1"`
	Categories      []ShowcaseCategory `json:"categories" validate:"dive"`
}

// AssistantConfig tunes the suggestion presenter.
type AssistantConfig struct {
	InterestThreshold float64 `json:"interestThreshold" validate:"gte=0"`
	TriggerDelayMs    int     `json:"triggerDelayMs" validate:"min=0"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	HTTPAddr       string `json:"httpAddr" validate:"required"`
	MetricsEnabled bool   `json:"metricsEnabled"`
	RetentionDays  int    `json:"retentionDays" validate:"min=1"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `json:"level" validate:"omitempty,oneof=trace debug info warn error disabled"`
	Format string `json:"format" validate:"omitempty,oneof=json console"`
}

// DefaultShowcaseCategories is the stock set of marketplace sections.
func DefaultShowcaseCategories() []ShowcaseCategory {
	return []ShowcaseCategory{
		{Category: "market_vehicles", Title: "Vehicles", TypeKey: "vehicle_type"},
		{Category: "market_real_estate", Title: "Real Estate", TypeKey: "property_type"},
		{Category: "market_electronics", Title: "Electronics", TypeKey: "device_type"},
		{Category: "market_home", Title: "Home & Garden", TypeKey: "item_type"},
		{Category: "market_fashion", Title: "Fashion", TypeKey: "gender"},
		{Category: "market_jobs", Title: "Jobs", TypeKey: "employment_type"},
		{Category: "market_services", Title: "Services"},
	}
}

// NewConfig creates a configuration populated with defaults.
func NewConfig() *Config {
	dataDir := defaultDataDir()

	return &Config{
		Storage: StorageConfig{
			DBPath:         filepath.Join(dataDir, "city.db"),
			ProfileBackend: "file",
			ProfileDir:     filepath.Join(dataDir, "profiles"),
			ProfileKey:     "city-hub:profile",
		},
		Profile: ProfileConfig{
			DecayRate:          0.05,
			EvictBelow:         0.1,
			MaxViewedPlaces:    20,
			ArchetypeThreshold: 10,
			Archetypes:         profile.DefaultArchetypes(),
		},
		Recommend: RecommendConfig{
			TargetCount:      10,
			SpecializedLimit: 15,
			WindowDays:       30,
			EventLimit:       100,
			TopCategories:    3,
			TopSearchTerms:   3,
			MinTermLength:    3,
			CallTimeoutMs:    3000,
			EventWeights: map[string]float64{
				"contact":  5,
				"favorite": 5,
				"view":     2,
			},
		},
		Showcase: ShowcaseConfig{
			TargetSections:  5,
			SampleSize:      20,
			ItemsPerSection: 7,
			Concurrency:     3,
			Categories:      DefaultShowcaseCategories(),
		},
		Assistant: AssistantConfig{
			InterestThreshold: 2,
			TriggerDelayMs:    3000,
		},
		Server: ServerConfig{
			HTTPAddr:       ":8080",
			MetricsEnabled: true,
			RetentionDays:  90,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// CallTimeout returns the per-call data access timeout.
func (c RecommendConfig) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutMs) * time.Millisecond
}

// Window returns the event lookback window.
func (c RecommendConfig) Window() time.Duration {
	return time.Duration(c.WindowDays) * 24 * time.Hour
}

// TriggerDelay returns the assistant trigger's initial hidden period.
func (c AssistantConfig) TriggerDelay() time.Duration {
	return time.Duration(c.TriggerDelayMs) * time.Millisecond
}

// Retention returns how long user events are kept.
func (c ServerConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// GetDefaultConfigPath returns the path to ~/.city-hub.json
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".city-hub.json"), nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".city-hub"
	}
	return filepath.Join(home, ".city-hub")
}

// Load reads the configuration from the default path.
func Load() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadOrCreate reads the default config, falling back to defaults (plus
// environment overrides) when no file exists yet.
func LoadOrCreate() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadOrDefault(configPath)
}

// LoadOrDefault is LoadOrCreate for an explicit path.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := LoadFrom(path)
	if err == nil {
		return cfg, nil
	}

	if !IsNotFound(err) {
		return nil, err
	}

	cfg = NewConfig()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
