// Package config loads application configuration from STOCKROOM_ prefixed
// environment variables with sensible local-development defaults.
package config
