package config

import "fmt"

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	switch c.Archive.ChecksumAlgorithm {
	case "sha512", "sha256":
	default:
		return fmt.Errorf("archive.checksum_algorithm must be sha512 or sha256, got %q", c.Archive.ChecksumAlgorithm)
	}

	if c.Derive.MinFreeGiB < 0 {
		return fmt.Errorf("derive.min_free_gib must not be negative, got %d", c.Derive.MinFreeGiB)
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
