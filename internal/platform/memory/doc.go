// Package memory provides an in-process implementation of store.DeckStore.
//
// All decks and cards live in a single collection guarded by one mutex.
// Every operation holds the lock for its whole read-check-mutate span, so
// operations are linearizable, and no reference into the collection ever
// escapes: callers always receive deep copies.
//
// Go mutexes do not poison. To keep a half-applied mutation from being
// observed, a panic raised while the lock is held marks the store as
// poisoned; that operation and every later one fail with
// store.ErrStoreUnavailable.
package memory
