// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional YAML file. Environment variables
// use the WORDS_ prefix and take precedence over file values.
package config
