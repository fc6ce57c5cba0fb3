// sim/eventstream.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"

	"github.com/blueboat-sim/blueboat/log"
	"github.com/blueboat-sim/blueboat/nav"
)

// EventStream provides a basic pub/sub interface for guidance events: the
// boat posts to the stream and any number of subscribers (the logger,
// track recorder, terminal viewer) consume from it at their own pace.
// Posting to a stream with no subscribers discards the event.
type EventStream struct {
	mu            sync.Mutex
	events        []nav.Event
	subscriptions map[*EventsSubscription]any
	lg            *log.Logger
}

type EventsSubscription struct {
	stream *EventStream
	// offset is offset in the EventStream stream array up to which the
	// subscriber has consumed events so far.
	offset int
	source string
}

func (e *EventsSubscription) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("offset", e.offset),
		slog.String("source", e.source))
}

// NewEventStream returns an empty stream. lg may be nil.
func NewEventStream(lg *log.Logger) *EventStream {
	return &EventStream{
		subscriptions: make(map[*EventsSubscription]any),
		lg:            lg,
	}
}

// Subscribe registers a new subscriber to the stream. Events posted
// before the call are never reported to it.
func (e *EventStream) Subscribe() *EventsSubscription {
	// Record the subscriber's callsite, so that we can more easily debug
	// subscribers that aren't consuming events.
	_, fn, line, _ := runtime.Caller(1)

	e.mu.Lock()
	defer e.mu.Unlock()

	sub := &EventsSubscription{
		stream: e,
		offset: len(e.events),
		source: fmt.Sprintf("%s:%d", fn, line),
	}
	e.subscriptions[sub] = nil
	return sub
}

// Unsubscribe removes a subscriber from the subscriber list
func (e *EventsSubscription) Unsubscribe() {
	if e.stream == nil {
		return
	}

	e.stream.mu.Lock()
	defer e.stream.mu.Unlock()

	if _, ok := e.stream.subscriptions[e]; !ok {
		e.stream.lg.Errorf("Attempted to unsubscribe invalid subscription: %+v", e)
	}
	delete(e.stream.subscriptions, e)
	e.stream.compact()
	e.stream = nil
}

// Post adds an event to the event stream.
func (e *EventStream) Post(event nav.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lg.Debug("posted event", slog.Any("event", event))

	// Ignore the event if no one's paying attention.
	if len(e.subscriptions) > 0 {
		e.events = append(e.events, event)
	}
}

// PostEvent implements nav.EventSink.
func (e *EventStream) PostEvent(event nav.Event) {
	e.Post(event)
}

// Get returns all of the events from the stream since the last time Get
// was called with the given subscription.
func (e *EventsSubscription) Get() []nav.Event {
	if e.stream == nil {
		return nil
	}

	e.stream.mu.Lock()
	defer e.stream.mu.Unlock()

	if _, ok := e.stream.subscriptions[e]; !ok {
		e.stream.lg.Errorf("Attempted to get with unregistered subscription: %+v", e)
		return nil
	}

	events := slices.Clone(e.stream.events[e.offset:])
	e.offset = len(e.stream.events)

	e.stream.compact()

	return events
}

// compact reclaims storage for events that all subscribers have seen.
func (e *EventStream) compact() {
	minOffset := len(e.events)
	for sub := range e.subscriptions {
		minOffset = min(minOffset, sub.offset)
	}

	if minOffset == len(e.events) {
		e.events = e.events[:0]
		for sub := range e.subscriptions {
			sub.offset = 0
		}
	} else if minOffset > cap(e.events)/2 {
		n := len(e.events) - minOffset

		copy(e.events, e.events[minOffset:])
		e.events = e.events[:n]

		for sub := range e.subscriptions {
			sub.offset -= minOffset
		}
	}
}

// implements slog.LogValuer
func (e *EventStream) LogValue() slog.Value {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := []slog.Attr{
		slog.Int("len", len(e.events)),
		slog.Int("cap", cap(e.events)),
		slog.Int("subscriptions", len(e.subscriptions)),
	}
	if len(e.events) > 0 {
		items = append(items, slog.Any("last_element", e.events[len(e.events)-1]))
	}
	return slog.GroupValue(items...)
}
