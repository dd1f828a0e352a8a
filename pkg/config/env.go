package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// LoadFromEnv overrides values from the YAML file with any environment
// variables that are set. Unset variables leave the current value alone.
func (c *Config) LoadFromEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
