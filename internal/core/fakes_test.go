package core

import (
	"fmt"
	"sync"
	"time"
)

// seqIDs hands out ids with a fixed prefix and an increasing counter.
type seqIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

func newSeqIDs(prefix string) *seqIDs {
	return &seqIDs{prefix: prefix}
}

func (g *seqIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s%d", g.prefix, g.n)
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

type recordedEvent struct {
	Type string
	Data map[string]any
}

// recordingEvents implements EventLogger for testing.
type recordingEvents struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recordingEvents) LogEvent(eventType string, data map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Type: eventType, Data: data})
	return nil
}

func (r *recordingEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}
