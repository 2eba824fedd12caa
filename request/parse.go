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
	"strconv"
	"strings"

	liberr "github.com/nabbar/netreq/errors"
	"github.com/nabbar/netreq/hdr"
)

// BodyMode is the body-framing decision of spec §4.3.
type BodyMode uint8

const (
	// NoBody means the status was not 200 (spec §9 open question #4:
	// non-2xx ends directly at Done, no body read).
	NoBody BodyMode = iota
	BodyContentLength
	BodyChunked
)

// ParseHeadBlock parses the bytes accumulated by read_until("\r\n\r\n")
// (spec §4.3): the status line and headers. block must include the
// trailing "\r\n\r\n".
func ParseHeadBlock(block []byte) (status int, headers *Headers, err liberr.Error) {
	text := string(block)
	lines := strings.Split(strings.TrimSuffix(text, "\r\n\r\n"), "\r\n")
	if len(lines) == 0 {
		return 0, nil, ErrorBadResponseFormat.Errorf()
	}

	statusLine := lines[0]
	if !strings.HasPrefix(statusLine, "HTTP/1.1") {
		return 0, nil, ErrorBadResponseFormat.Errorf()
	}

	// The three-digit status integer starts at byte 9 (spec §4.3):
	// "HTTP/1.1" (8 bytes) + one space = index 9.
	if len(statusLine) < 12 {
		return 0, nil, ErrorBadResponseFormat.Errorf()
	}

	code, convErr := strconv.Atoi(statusLine[9:12])
	if convErr != nil {
		return 0, nil, ErrorBadResponseFormat.Error(convErr)
	}

	h := NewHeaders()
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			// malformed line (no ':'): skipped and parsing continues; no
			// warning is logged for it.
			continue
		}
		name := strings.ToLower(strings.TrimSpace(line[:idx]))
		value := strings.TrimPrefix(line[idx+1:], " ")
		h.Add(name, value)
	}

	return code, h, nil
}

// DetermineBodyFraming implements spec §4.3's body-framing decision tree:
// non-200 status reads no body; else Content-Length if present; else
// chunked if Transfer-Encoding contains "chunked"; else
// HTTP_RESPONSE_SIZE_ERROR (spec §9 open question #3).
func DetermineBodyFraming(status int, headers *Headers) (mode BodyMode, length uint64, err liberr.Error) {
	if status != 200 {
		return NoBody, 0, nil
	}

	if cl, ok := headers.Get(hdr.ContentLength); ok {
		n, convErr := strconv.ParseUint(strings.TrimSpace(cl), 10, 64)
		if convErr != nil {
			return NoBody, 0, ErrorBadResponseFormat.Error(convErr)
		}
		return BodyContentLength, n, nil
	}

	if te, ok := headers.Get(hdr.TransferEncoding); ok && strings.Contains(strings.ToLower(te), hdr.ChunkedEncoding) {
		return BodyChunked, 0, nil
	}

	return NoBody, 0, ErrorResponseSizeUnknown.Errorf()
}

// ParseChunkSize parses a chunk-size line (spec §4.3: "trim optional
// ';...' suffix -> parse hex size").
func ParseChunkSize(line string) (uint64, liberr.Error) {
	line = strings.TrimSpace(line)
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}

	n, err := strconv.ParseUint(line, 16, 64)
	if err != nil {
		return 0, ErrorBadResponseFormat.Error(err)
	}

	return n, nil
}
