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
	"fmt"
	"strings"

	liberr "github.com/nabbar/netreq/errors"
	"github.com/nabbar/netreq/hdr"
)

// FormParams is an ordered list of parameters merged into the URL query
// (GET) or percent-encoded into the body (POST/PUT with
// application/x-www-form-urlencoded), per spec §4.3.
func (r *Request) SetFormParams(params []Pair) liberr.Error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkNotSubmitted(); err != nil {
		return err
	}
	r.params = params
	return nil
}

// Compose serializes the request into wire bytes exactly once per
// request (spec §4.3: "memoized"); subsequent calls return the same
// slice (spec §8 invariant 8: "compose(R) called twice yields identical
// byte vectors").
func (r *Request) Compose() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.composed != nil {
		return r.composed
	}

	switch r.kind {
	case HttpGet, HttpPost, HttpPut:
		r.composed = r.composeHTTP()
	default:
		r.composed = r.body
	}

	return r.composed
}

func (r *Request) composeHTTP() []byte {
	path := "/"
	if r.target != nil && r.target.Path != "" {
		path = r.target.Path
	}

	query := r.queryString()

	var b strings.Builder
	b.WriteString(r.kind.Method())
	b.WriteByte(' ')
	b.WriteString(path)
	if query != "" {
		b.WriteByte('?')
		b.WriteString(query)
	}
	b.WriteString(" HTTP/1.1\r\n")

	body := r.bodyBytes()

	host := ""
	if r.target != nil {
		host = r.target.Host
	}
	b.WriteString(fmt.Sprintf("%s: %s\r\n", hdr.Host, host))

	for _, p := range r.headers.All() {
		b.WriteString(fmt.Sprintf("%s: %s\r\n", p.Name, p.Value))
	}

	if r.contentType != "" {
		b.WriteString(fmt.Sprintf("%s: %s\r\n", hdr.ContentType, r.contentType))
	}

	if r.kind == HttpPost || r.kind == HttpPut {
		b.WriteString(fmt.Sprintf("%s: %d\r\n", hdr.ContentLength, len(body)))
	}

	b.WriteString("\r\n")

	out := []byte(b.String())
	if r.kind == HttpPost || r.kind == HttpPut {
		out = append(out, body...)
	}

	return out
}

// queryString merges the request's form params into the target URL's
// existing query, joined with '&' (spec §4.3). Used for GET; for
// POST/PUT the same params instead form the body (bodyBytes).
func (r *Request) queryString() string {
	if r.kind == HttpPost || r.kind == HttpPut {
		if r.target != nil {
			return r.target.Query
		}
		return ""
	}

	parts := make([]string, 0, len(r.params)+1)
	if r.target != nil && r.target.Query != "" {
		parts = append(parts, r.target.Query)
	}
	for _, p := range r.params {
		parts = append(parts, percentEncode(p.Name)+"="+percentEncode(p.Value))
	}

	return strings.Join(parts, "&")
}

// bodyBytes returns the POST/PUT body: the explicit body if set, else the
// percent-encoded form params when Content-Type is
// application/x-www-form-urlencoded (spec §4.3, S6).
func (r *Request) bodyBytes() []byte {
	if len(r.body) > 0 {
		return r.body
	}

	if strings.EqualFold(r.contentType, hdr.ContentTypeFormURLEncoded) && len(r.params) > 0 {
		parts := make([]string, 0, len(r.params))
		for _, p := range r.params {
			parts = append(parts, percentEncode(p.Name)+"="+percentEncode(p.Value))
		}
		return []byte(strings.Join(parts, "&"))
	}

	return nil
}

// percentEncodeTable is the documented escape set of spec §8 invariant 9.
var percentEncodeTable = map[byte]string{
	' ':  "%20",
	'!':  "%21",
	'@':  "%40",
	'#':  "%23",
	'$':  "%24",
	'%':  "%25",
	'&':  "%26",
	'*':  "%2A",
	'(':  "%28",
	')':  "%29",
	'+':  "%2B",
	'=':  "%3D",
	'[':  "%5B",
	']':  "%5D",
	':':  "%3A",
	';':  "%3B",
	'\'': "%27",
	',':  "%2C",
	'/':  "%2F",
	'?':  "%3F",
}

// percentEncode escapes a value for inclusion in a urlencoded query or
// form body, per the documented table of spec §8 invariant 9. Unreserved
// characters (letters, digits, '-', '_', '.', '~') pass through
// unescaped; anything else not in the table is escaped byte-by-byte.
func percentEncode(s string) string {
	var b strings.Builder

	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		if esc, ok := percentEncodeTable[c]; ok {
			b.WriteString(esc)
			continue
		}
		b.WriteString(fmt.Sprintf("%%%02X", c))
	}

	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == '.' || c == '~':
		return true
	default:
		return false
	}
}
