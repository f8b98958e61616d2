// Package sqlstore implements store.DeckStore on top of database/sql.
//
// Queries are written once with ? placeholders and rebound per
// store.Dialect, so the same code serves the postgres and sqlite packages,
// which supply the driver, migrations, and driver-specific error mapping.
//
// Deck and card IDs are claimed from counters stored in the database
// (deck_counter.next_id and decks.next_card_id), which gives the same ID
// rules as the in-memory store: IDs are never reused, and card IDs are
// scoped to their deck.
package sqlstore
