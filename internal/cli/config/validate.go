package config

import (
	"fmt"

	"github.com/qraqras/leukocyte-sub000/internal/cli/output"
)

// Validate checks the settings for values no command can use.
func (c *Config) Validate() error {
	if _, err := output.ParseMode(c.OutputFormat); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.InheritCacheSize < 0 {
		return fmt.Errorf("inherit_cache_size must not be negative, got %d", c.InheritCacheSize)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	return nil
}
