/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package request

import (
	"sync"

	liberr "github.com/nabbar/netreq/errors"
)

// Event is the canonical observer payload (spec §9 Design Notes:
// "Collapse to one closure shape per event"). It exposes every field an
// observer might need; which fields are meaningful depends on which
// family fired it.
type Event struct {
	UUID      string
	Status    Status
	BytesRead uint64
	Error     liberr.CodeError
	Response  *Response
}

// Handler is the single observer shape every event family uses.
type Handler func(ev *Event)

// Handle is returned by every registration call; dropping interest in an
// event stream is done by calling Unsubscribe, the Go-idiomatic stand-in
// for the source's weak-reference member-pointer observers (spec §9
// Design Notes).
type Handle struct {
	unsubscribe func()
}

// Unsubscribe removes the observer. Safe to call more than once.
func (h *Handle) Unsubscribe() {
	if h != nil && h.unsubscribe != nil {
		h.unsubscribe()
	}
}

type observerEntry struct {
	id uint64
	fn Handler
}

// observerList is an append-only, registration-ordered subscriber list
// (spec §3: "all append-only, fired in registration order").
type observerList struct {
	mu   sync.Mutex
	next uint64
	subs []observerEntry
}

func (l *observerList) subscribe(fn Handler) *Handle {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.next
	l.next++
	l.subs = append(l.subs, observerEntry{id: id, fn: fn})

	return &Handle{unsubscribe: func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, e := range l.subs {
			if e.id == id {
				l.subs = append(l.subs[:i], l.subs[i+1:]...)
				return
			}
		}
	}}
}

// fire invokes every currently-registered observer, in registration
// order, synchronously on the calling (driver) goroutine (spec §5:
// "Observer callbacks ... fire in program-order").
func (l *observerList) fire(ev *Event) {
	l.mu.Lock()
	subs := make([]observerEntry, len(l.subs))
	copy(subs, l.subs)
	l.mu.Unlock()

	for _, e := range subs {
		e.fn(ev)
	}
}

// OnUUID adapts the canonical Handler shape to a callback that only wants
// the request's UUID — one of the four legacy call shapes collapsed per
// spec §9 Design Notes, kept as a free convenience wrapper.
func OnUUID(fn func(uuid string)) Handler {
	return func(ev *Event) { fn(ev.UUID) }
}

// OnPayload adapts the canonical Handler shape to a callback that only
// wants the event-specific payload (Status, *Response, or error code,
// depending on which family it was registered on).
func OnPayload(fn func(payload any)) Handler {
	return func(ev *Event) { fn(eventPayload(ev)) }
}

// OnUUIDPayload adapts the canonical Handler shape to a callback wanting
// both the UUID and the event-specific payload.
func OnUUIDPayload(fn func(uuid string, payload any)) Handler {
	return func(ev *Event) { fn(ev.UUID, eventPayload(ev)) }
}

func eventPayload(ev *Event) any {
	switch {
	case ev.Response != nil:
		return ev.Response
	case ev.Error != liberr.UnknownError:
		return ev.Error
	default:
		return ev.Status
	}
}
