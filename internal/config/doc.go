// Package config loads and validates storyforge configuration from TOML.
//
// Load resolves the config path (explicit flag, then the default location
// under ~/.config/storyforge), decodes the file over repository defaults,
// expands ~ in path fields, and validates the result. Use EnsureDirectories
// before opening the store so the data and log directories exist.
package config
