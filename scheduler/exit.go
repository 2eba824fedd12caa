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

package scheduler

import "sync"

// ExitFunc is called once, in registration order, when the run loop exits
// (spec §4.5: "When working becomes false, invoke every exit-callback in
// registration order"). The source's three callback shapes (owning
// pointer+member, weak handle+member, free functor) collapse to this one
// closure shape plus Unsubscribe(), the Go-idiomatic replacement for a
// weak handle silently skipping a dead reference.
type ExitFunc func()

// ExitHandle lets a caller cancel a previously registered exit callback
// before it ever fires.
type ExitHandle struct {
	unsubscribe func()
}

// Unsubscribe removes the callback. Safe to call more than once.
func (h *ExitHandle) Unsubscribe() {
	if h != nil && h.unsubscribe != nil {
		h.unsubscribe()
	}
}

type exitEntry struct {
	id uint64
	fn ExitFunc
}

type exitList struct {
	mu   sync.Mutex
	next uint64
	subs []exitEntry
}

func (l *exitList) subscribe(fn ExitFunc) *ExitHandle {
	l.mu.Lock()
	id := l.next
	l.next++
	l.subs = append(l.subs, exitEntry{id: id, fn: fn})
	l.mu.Unlock()

	return &ExitHandle{unsubscribe: func() {
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

func (l *exitList) fire() {
	l.mu.Lock()
	subs := make([]exitEntry, len(l.subs))
	copy(subs, l.subs)
	l.mu.Unlock()

	for _, e := range subs {
		e.fn()
	}
}
