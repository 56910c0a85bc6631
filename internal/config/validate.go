package config

import (
	"fmt"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"text": true,
	"json": true,
}

// Validate checks every field and returns the first problem found
func (c *Config) Validate() error {
	if err := validatePacks(c.Packs); err != nil {
		return err
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers cannot be negative, got %d", c.Workers)
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("unsupported log level '%s': supported levels are debug, info, warn, error", c.LogLevel)
	}

	if !validLogFormats[strings.ToLower(c.LogFormat)] {
		return fmt.Errorf("unsupported log format '%s': supported formats are text, json", c.LogFormat)
	}

	return nil
}

// validatePacks rejects empty and repeated pack paths. Order is kept since
// later packs shadow earlier ones.
func validatePacks(packs []string) error {
	seen := make(map[string]bool, len(packs))
	for i, p := range packs {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("pack path %d cannot be empty", i)
		}
		if seen[p] {
			return fmt.Errorf("pack '%s' is listed more than once", p)
		}
		seen[p] = true
	}
	return nil
}
