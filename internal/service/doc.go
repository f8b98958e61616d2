// Package service implements the application operations on decks and cards.
//
// DeckService sits between the HTTP layer and a store.DeckStore. It cleans
// and validates user input, logs each operation with the request logger,
// and publishes an events.DeckEvent after every successful change.
package service
