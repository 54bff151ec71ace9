// Package config handles configuration loading, parsing, and validation
// from environment variables, an optional .env file and an optional
// config.yaml. Environment variables use the GRAMS_ prefix and take
// precedence over file values.
package config
