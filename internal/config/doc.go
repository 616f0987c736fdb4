// Package config loads, normalizes and validates asana's TOML configuration.
//
// Values are resolved in order: built-in defaults, the config file, then
// ASANA_* environment variables.
package config
