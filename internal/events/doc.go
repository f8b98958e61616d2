// Package events lets the service layer announce deck and card changes
// without knowing who listens.
//
// The primary components are:
// - DeckEvent: a change to a deck or one of its cards
// - EventHandler: interface for components that react to events
// - EventEmitter: interface for components that publish events
// - AuditLogHandler: writes every event to a structured logger
package events
