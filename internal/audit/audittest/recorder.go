// Package audittest records audit events in memory for tests.
package audittest

import (
	"context"
	"sync"

	"taskhub/backend/internal/audit"
)

// Recorder is an audit.AuditLogger that keeps every event.
type Recorder struct {
	mu     sync.Mutex
	events []audit.Event
}

// LogEvent implements audit.AuditLogger.
func (r *Recorder) LogEvent(ctx context.Context, e audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]audit.Event(nil), r.events...)
}

// Actions returns the action of each recorded event in order.
func (r *Recorder) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Action
	}
	return out
}
