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

// Package hdr is the header-name catalog collaborator described in spec §6:
// a small set of canonical HTTP header names used by the request framer.
// It deliberately does not attempt to be a full header-name registry.
package hdr

import "strings"

// Canonical header names the framer composes or inspects.
const (
	Host             = "Host"
	ContentLength    = "Content-Length"
	ContentType      = "Content-Type"
	TransferEncoding = "Transfer-Encoding"
	Connection       = "Connection"
)

// ContentTypeFormURLEncoded is the single content-type value the framer
// special-cases for percent-encoded form bodies (spec §4.3 / S6).
const ContentTypeFormURLEncoded = "application/x-www-form-urlencoded"

// ChunkedEncoding is the transfer-encoding token signaling chunked bodies.
const ChunkedEncoding = "chunked"

// Equal reports whether two header names are the same under the
// case-insensitive comparison the wire format requires (spec §3: "Headers
// — header-name lookup is case-insensitive").
func Equal(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Lower returns the lowercased form a Headers list stores names as.
func Lower(name string) string {
	return strings.ToLower(name)
}
