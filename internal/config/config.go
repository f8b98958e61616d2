package config

import "time"

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	Store  StoreConfig  `mapstructure:"store"  validate:"required"`
	Seed   SeedConfig   `mapstructure:"seed"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	// PublicURL is the externally reachable base URL, used in share links.
	PublicURL string `mapstructure:"public_url" validate:"required,url"`
}

// StoreConfig selects and configures the deck store backend.
type StoreConfig struct {
	Backend        string `mapstructure:"backend"          validate:"required,oneof=memory postgres sqlite"`
	DatabaseURL    string `mapstructure:"database_url"     validate:"required_unless=Backend memory"`
	MaxOpenConns   int    `mapstructure:"max_open_conns"   validate:"gte=1"`
	MigrateOnStart bool   `mapstructure:"migrate_on_start"`
}

// SeedConfig controls the decks a store is populated with at startup.
type SeedConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// File is a YAML seed file. When empty the built-in starter deck is used.
	File string `mapstructure:"file"`
}
