package config

import (
	"fmt"

	"github.com/khanglvm/city-hub/internal/validation"
)

// Validate checks field rules and cross-field constraints.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if c.Storage.ProfileBackend != "memory" && c.Storage.ProfileDir == "" {
		return fmt.Errorf("storage.profileDir is required for the %q profile backend", c.Storage.ProfileBackend)
	}

	if c.Recommend.SpecializedLimit < c.Recommend.TargetCount {
		return fmt.Errorf("recommend.specializedLimit (%d) must not be below recommend.targetCount (%d)",
			c.Recommend.SpecializedLimit, c.Recommend.TargetCount)
	}

	seen := make(map[string]bool, len(c.Showcase.Categories))
	for _, sc := range c.Showcase.Categories {
		if seen[sc.Category] {
			return fmt.Errorf("showcase category %q listed twice", sc.Category)
		}
		seen[sc.Category] = true
	}

	return nil
}
