package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/scry-decks/internal/events"
)

// RecordingEmitter implements events.EventEmitter and keeps every event
// it receives. EmitErr, if set, is returned from every EmitEvent call.
type RecordingEmitter struct {
	EmitErr error

	mu     sync.Mutex
	events []*events.DeckEvent
}

// EmitEvent implements events.EventEmitter.EmitEvent
func (e *RecordingEmitter) EmitEvent(ctx context.Context, event *events.DeckEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return e.EmitErr
}

// Events returns the events emitted so far.
func (e *RecordingEmitter) Events() []*events.DeckEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*events.DeckEvent(nil), e.events...)
}

// Types returns the type of each emitted event, in order.
func (e *RecordingEmitter) Types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	types := make([]string, len(e.events))
	for i, ev := range e.events {
		types[i] = ev.Type
	}
	return types
}
