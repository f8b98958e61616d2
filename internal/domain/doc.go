// Package domain contains the core entities of the application: decks and
// the cards they own, together with the payloads used to create and edit
// them. It is independent of any storage or delivery mechanism.
package domain
