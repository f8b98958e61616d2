// Package store defines the capability interface for deck and card
// persistence together with the error taxonomy every implementation reports.
// Implementations live under internal/platform: an in-memory store guarded
// by a single lock, and SQL stores for PostgreSQL and SQLite.
package store
