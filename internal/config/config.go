package config

import "time"

// Config holds all client configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	API   APIConfig   `mapstructure:"api" validate:"required"`
	Store StoreConfig `mapstructure:"store" validate:"required"`
	Log   LogConfig   `mapstructure:"log" validate:"required"`
}

// APIConfig contains settings for reaching the vocabulary service.
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url" validate:"required,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"required,min=1,max=300"`
	// JWTSecret enables signed credentials on every request when set.
	JWTSecret            string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,max=1440"`
}

// Timeout returns the per-call timeout as a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TokenLifetime returns the credential lifetime as a duration.
func (c APIConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMinutes) * time.Minute
}

// StoreConfig contains local persistence settings.
type StoreConfig struct {
	// Path is the SQLite database file, or ":memory:".
	Path string `mapstructure:"path" validate:"required"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}
