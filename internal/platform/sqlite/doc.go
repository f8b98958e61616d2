// Package sqlite provides the SQLite backend for store.DeckStore using the
// pure-Go modernc.org/sqlite driver, with embedded goose migrations.
package sqlite
