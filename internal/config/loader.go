package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/goccy/go-json"
)

// LoadFrom reads the config file at path.
//
// File values are decoded over NewConfig defaults, then environment overrides
// are applied and the result is validated. Failures come back as
// ConfigNotFoundError, PermissionError or InvalidConfigError so callers can
// print the attached hint.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return nil, &ConfigNotFoundError{
			Path: path,
			Hint: "Run 'city-hub verify --init' to create a default configuration",
		}
	case os.IsPermission(err):
		return nil, &PermissionError{
			Path:    path,
			Op:      "read",
			Fix:     readFix(path),
			Details: modeDetails(path),
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, &InvalidConfigError{
			Path:    path,
			Message: fmt.Sprintf("JSON parse error: %v", err),
			Hint:    "Restore from the .bak file next to it, or delete it to use defaults",
			Err:     err,
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, &InvalidConfigError{
			Path:    path,
			Message: err.Error(),
			Hint:    "Fix the listed fields or delete them to fall back to defaults",
			Err:     err,
		}
	}

	return cfg, nil
}

func readFix(path string) string {
	if runtime.GOOS == "windows" {
		return fmt.Sprintf("Right-click %s → Properties → Security → Edit permissions", path)
	}
	return fmt.Sprintf("Run: chmod 644 %s", path)
}

// modeDetails reports the current mode bits on unix-like systems.
func modeDetails(path string) string {
	if runtime.GOOS == "windows" {
		return ""
	}
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("Current permissions: %04o", info.Mode().Perm())
}
