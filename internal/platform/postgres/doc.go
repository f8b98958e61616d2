// Package postgres provides the PostgreSQL backend for store.DeckStore:
// the pgx driver connection, embedded goose migrations, and the mapping of
// PostgreSQL error codes onto store errors. Query code is shared with the
// SQLite backend through the sqlstore package.
package postgres
