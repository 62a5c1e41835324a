// Package config loads and validates the toolkit configuration. Settings
// come from a TOML file resolved from an explicit path, the user config
// directory, or a project-local odea.toml, in that order; every value has a
// working default so a missing file is not an error.
package config
