// Package bus is a small in-process event dispatcher. Publishers fire named
// events; subscribers either register a persistent handler or claim events
// with Listen/Await. A claim consumes the event: it short-circuits dispatch
// so persistent handlers never see a claimed event, which is what makes
// request/reply over the bus work.
package bus

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Handler processes one published event. It reports whether it handled the
// event; the first handler that does stops dispatch and its result becomes
// the Publish return value.
type Handler func(event string, payload any) (handled bool, result any)

// Delivery is one claimed event handed to a Listen channel.
type Delivery struct {
	Event   string
	Payload any
}

// TimeoutError is returned by Await when no matching event arrived in time.
type TimeoutError struct {
	Events []string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for events %v", e.Events)
}

type subscription struct {
	id int
	fn Handler
}

type claim struct {
	id     int
	events []string
	ch     chan Delivery
}

// Bus dispatches events to claims and handlers in registration order.
// The zero value is not usable; use New.
type Bus struct {
	mu     sync.Mutex
	subs   []subscription
	claims []*claim
	nextID int
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers a persistent handler. The returned cancel func removes
// it; cancel is idempotent.
func (b *Bus) Subscribe(fn Handler) (cancel func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscription{id: id, fn: fn})
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.subs = slices.DeleteFunc(b.subs, func(s subscription) bool {
			return s.id == id
		})
	}
}

// Listen claims future events with any of the given names. Claimed events
// are delivered on the returned channel and withheld from handlers. The
// channel is buffered; a full buffer drops the delivery rather than blocking
// the publisher. cancel releases the claim.
func (b *Bus) Listen(events ...string) (<-chan Delivery, func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	c := &claim{id: id, events: slices.Clone(events), ch: make(chan Delivery, 16)}
	b.claims = append(b.claims, c)
	b.mu.Unlock()
	return c.ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.claims = slices.DeleteFunc(b.claims, func(cl *claim) bool {
			return cl.id == id
		})
	}
}

// Await blocks until an event with one of the given names is published, the
// timeout elapses, or ctx is done. A timeout of zero means no timeout.
func (b *Bus) Await(ctx context.Context, timeout time.Duration, events ...string) (Delivery, error) {
	ch, cancel := b.Listen(events...)
	defer cancel()

	var expire <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expire = t.C
	}
	select {
	case d := <-ch:
		return d, nil
	case <-expire:
		return Delivery{}, &TimeoutError{Events: slices.Clone(events)}
	case <-ctx.Done():
		return Delivery{}, ctx.Err()
	}
}

// Publish dispatches one event. Matching claims consume it: every matching
// claim receives the delivery and handlers are skipped. Broadcasting to all
// matching claims, rather than just the first, keeps concurrent waiters on
// the same event (two awaitSessionPhase calls parked on one phase change)
// from starving each other. With no claim, handlers run in registration
// order until one reports handled, and that handler's result is returned.
func (b *Bus) Publish(event string, payload any) any {
	b.mu.Lock()
	var matched []*claim
	for _, c := range b.claims {
		if slices.Contains(c.events, event) {
			matched = append(matched, c)
		}
	}
	subs := slices.Clone(b.subs)
	b.mu.Unlock()

	if len(matched) > 0 {
		for _, c := range matched {
			select {
			case c.ch <- Delivery{Event: event, Payload: payload}:
			default:
			}
		}
		return nil
	}
	for _, s := range subs {
		if handled, result := s.fn(event, payload); handled {
			return result
		}
	}
	return nil
}
