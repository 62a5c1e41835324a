package config

import "strings"

const (
	defaultArchiveName = "odeum"
	defaultChecksum    = "sha512"
	defaultMinFreeGiB  = 1
	defaultFFprobe     = "ffprobe"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Archive: Archive{
			Name:              defaultArchiveName,
			ChecksumAlgorithm: defaultChecksum,
		},
		Derive: Derive{
			MinFreeGiB: defaultMinFreeGiB,
		},
		Index: Index{
			Enabled: true,
		},
		Probe: Probe{
			FFprobe: defaultFFprobe,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func (c *Config) normalize() {
	c.Archive.Name = strings.TrimSpace(c.Archive.Name)
	if c.Archive.Name == "" {
		c.Archive.Name = defaultArchiveName
	}
	c.Archive.URL = strings.TrimSpace(c.Archive.URL)
	c.Archive.ChecksumAlgorithm = strings.ToLower(strings.TrimSpace(c.Archive.ChecksumAlgorithm))
	if c.Archive.ChecksumAlgorithm == "" {
		c.Archive.ChecksumAlgorithm = defaultChecksum
	}

	c.Probe.FFprobe = strings.TrimSpace(c.Probe.FFprobe)
	if c.Probe.FFprobe == "" {
		c.Probe.FFprobe = defaultFFprobe
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
