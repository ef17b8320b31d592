// Package config loads and validates application configuration from
// environment variables (MARKETCLI_ prefix), an optional YAML file, and a
// local .env file. Every analysis knob has a default; a fresh checkout runs
// without any configuration at all.
package config
