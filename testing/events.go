// Package testing provides test utilities for sprout.
package testing

import (
	"context"
	"sync"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/sprout"
)

// CapturedEvent represents an event captured during testing.
type CapturedEvent struct {
	Signal    capitan.Signal
	Fields    []capitan.Field
	Timestamp time.Time
}

// hooked holds the drain and close operations of one capitan listener.
type hooked struct {
	drain func(ctx context.Context)
	close func()
}

// EventCapture captures sprout events for verification in tests.
type EventCapture struct {
	events    []CapturedEvent
	listeners []hooked
	mu        sync.Mutex
}

// NewEventCapture creates a new event capture utility.
func NewEventCapture() *EventCapture {
	return &EventCapture{
		events: make([]CapturedEvent, 0),
	}
}

// AllSignals lists every signal sprout emits.
var AllSignals = []capitan.Signal{
	sprout.IndexExists,
	sprout.IndexCreated,
	sprout.IndexReady,
	sprout.IndexAbsent,
	sprout.IndexDeleted,
	sprout.IndexActionInvalid,
	sprout.IndexFailed,
	sprout.EmbedCompleted,
	sprout.EmbedFailed,
	sprout.VectorStored,
	sprout.VectorFailed,
	sprout.StoreCompleted,
	sprout.QueryCompleted,
	sprout.QueryFailed,
}

// Listen hooks the capture to each signal. Pass no signals to hook AllSignals.
func (c *EventCapture) Listen(signals ...capitan.Signal) *EventCapture {
	if len(signals) == 0 {
		signals = AllSignals
	}
	handler := c.Handler()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sig := range signals {
		l := capitan.Hook(sig, handler)
		c.listeners = append(c.listeners, hooked{
			drain: func(ctx context.Context) { _ = l.Drain(ctx) },
			close: func() { l.Close() },
		})
	}
	return c
}

// Drain waits for queued events on every hooked listener to be delivered.
func (c *EventCapture) Drain(ctx context.Context) {
	c.mu.Lock()
	listeners := append([]hooked(nil), c.listeners...)
	c.mu.Unlock()

	for _, l := range listeners {
		l.drain(ctx)
	}
}

// Close drains and detaches every hooked listener.
func (c *EventCapture) Close(ctx context.Context) {
	c.Drain(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.listeners {
		l.close()
	}
	c.listeners = nil
}

// Handler returns a capitan.EventCallback that captures events.
func (c *EventCapture) Handler() capitan.EventCallback {
	return func(_ context.Context, e *capitan.Event) {
		c.mu.Lock()
		defer c.mu.Unlock()

		c.events = append(c.events, CapturedEvent{
			Signal:    e.Signal(),
			Fields:    e.Fields(),
			Timestamp: time.Now(),
		})
	}
}

// Events returns a copy of all captured events.
func (c *EventCapture) Events() []CapturedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]CapturedEvent, len(c.events))
	copy(result, c.events)
	return result
}

// Count returns the number of captured events.
func (c *EventCapture) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.events)
}

// Reset clears all captured events.
func (c *EventCapture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = make([]CapturedEvent, 0)
}

// WaitForCount blocks until the specified number of events are captured or timeout.
func (c *EventCapture) WaitForCount(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if c.Count() >= n {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return c.Count() >= n
}

// EventsBySignal returns events filtered by signal.
func (c *EventCapture) EventsBySignal(sig capitan.Signal) []CapturedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]CapturedEvent, 0)
	for _, e := range c.events {
		if e.Signal == sig {
			result = append(result, e)
		}
	}
	return result
}

// IDs returns the FieldID value of every event with the given signal.
func (c *EventCapture) IDs(sig capitan.Signal) []string {
	events := c.EventsBySignal(sig)
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, sprout.FieldID.ExtractFromFields(e.Fields))
	}
	return ids
}
