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

import "github.com/nabbar/netreq/hdr"

// Pair is one (name, value) header entry, preserved in insertion order.
type Pair struct {
	Name  string
	Value string
}

// Headers is an ordered, duplicate-preserving header list (spec §3):
// lookup is case-insensitive and returns the first match.
type Headers struct {
	items []Pair
}

// NewHeaders returns an empty Headers list.
func NewHeaders() *Headers {
	return &Headers{}
}

// Add appends name/value, preserving any existing entries with the same
// name (spec §3: "Duplicate names are preserved in order").
func (h *Headers) Add(name, value string) *Headers {
	h.items = append(h.items, Pair{Name: hdr.Lower(name), Value: value})
	return h
}

// Get returns the value of the first header matching name, case
// insensitively, and whether it was found (spec §8 invariant 7).
func (h *Headers) Get(name string) (string, bool) {
	lname := hdr.Lower(name)
	for _, p := range h.items {
		if p.Name == lname {
			return p.Value, true
		}
	}
	return "", false
}

// Has reports whether any header with the given name is present.
func (h *Headers) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// All returns the ordered list of pairs. The returned slice must not be
// mutated by the caller.
func (h *Headers) All() []Pair {
	return h.items
}

// Len returns the number of header entries.
func (h *Headers) Len() int {
	return len(h.items)
}
