// Package config handles configuration loading, parsing, and validation
// from environment variables, an optional .env file and an optional config
// file. Environment variables use the SCRY_ prefix, with nested keys joined
// by underscores (SCRY_STORE_BACKEND for store.backend).
package config
